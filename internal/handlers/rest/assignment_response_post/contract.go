//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=assignment_response_post_test
package assignment_response_post

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
	Respond(ctx context.Context, assignmentID, courierID string, decision entities.Decision) (*entities.Assignment, error)
}
