//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_item_proof_put_test
package order_item_proof_put

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
	MarkItem(ctx context.Context, orderID, courierID string, index int, proofRef string) (*entities.VerificationItem, error)
}
