//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=fulfillment_test
package fulfillment

import (
	"context"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/service/assignment"
	"dispatch/pkg/logger"
)

type Repository interface {
	Create(ctx context.Context, order *entities.Order) (*entities.Order, error)
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Order, error)
	Update(ctx context.Context, modify entities.OrderModify) (*entities.Order, error)
}

type AssignmentRepository interface {
	GetCurrentByOrder(ctx context.Context, orderID, claimToken string) (*entities.Assignment, error)
}

// Ledger - гейты доказательств из VerificationLedger.
type Ledger interface {
	Init(ctx context.Context, orderID string, itemCount int) error
	PickupGate(ctx context.Context, order *entities.Order) error
	MarkDelivery(ctx context.Context, order *entities.Order, proof entities.DeliveryProof) (bool, error)
}

// Coordinator - процедура освобождения курьера из AssignmentCoordinator.
type Coordinator interface {
	ReleaseTx(ctx context.Context, order *entities.Order, cause entities.ReleaseCause) (*assignment.Released, error)
	CompleteTx(ctx context.Context, order *entities.Order) (*assignment.Released, error)
	Apply(ctx context.Context, released *assignment.Released)
}

type OrderPublisher interface {
	PublishOrder(order *entities.Order)
}

type EventEmitter interface {
	Notify(ctx context.Context, notification entities.Notification)
	Audit(ctx context.Context, event entities.AuditEvent)
}

type DeadlineFactory interface {
	SLADeadline(atomic bool, createdAt time.Time) time.Time
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
