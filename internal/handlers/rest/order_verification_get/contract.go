//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_verification_get_test
package order_verification_get

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
	Verification(ctx context.Context, orderID string) (*entities.VerificationRecord, error)
}
