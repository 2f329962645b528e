//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=assignment_test
package assignment

import (
	"context"
	"time"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

type OrderRepository interface {
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Order, error)
	Claim(ctx context.Context, claim entities.OrderClaim) (*entities.Order, error)
	Update(ctx context.Context, modify entities.OrderModify) (*entities.Order, error)
	List(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, error)
}

type CourierRepository interface {
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Courier, error)
	Update(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error)
}

type Repository interface {
	Create(ctx context.Context, assignment entities.Assignment) (*entities.Assignment, error)
	GetByID(ctx context.Context, id string) (*entities.Assignment, error)
	GetCurrentByOrder(ctx context.Context, orderID, claimToken string) (*entities.Assignment, error)
	Update(ctx context.Context, modify entities.AssignmentModify) (*entities.Assignment, error)
	ListOverdue(ctx context.Context, now time.Time, limit uint64) ([]entities.Assignment, error)
}

// Fleet - живое состояние курьеров в CourierLocationStore.
type Fleet interface {
	ApplyCourier(courier entities.Courier)
	Silent(timeout time.Duration) []entities.Courier
}

type OrderPublisher interface {
	PublishOrder(order *entities.Order)
}

// EventEmitter - fire-and-forget уведомления и аудит; не блокирует и не возвращает ошибок.
type EventEmitter interface {
	Notify(ctx context.Context, notification entities.Notification)
	Audit(ctx context.Context, event entities.AuditEvent)
}

type DeadlineFactory interface {
	AcceptDeadline(atomic bool, offeredAt time.Time) time.Time
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
