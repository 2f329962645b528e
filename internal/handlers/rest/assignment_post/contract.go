//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=assignment_post_test
package assignment_post

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	Offer(ctx context.Context, orderID, courierID string) (*entities.Assignment, error)
}
