//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=verification_test
package verification

import (
	"context"

	"dispatch/internal/entities"
)

type Repository interface {
	Init(ctx context.Context, orderID string, itemCount int) error
	MarkItem(ctx context.Context, item entities.VerificationItem) (*entities.VerificationItem, error)
	Get(ctx context.Context, orderID string) (*entities.VerificationRecord, error)
	SaveDeliveryProof(ctx context.Context, proof entities.DeliveryProof) (bool, error)
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Order, error)
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
