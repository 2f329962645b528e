//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=dispatch_test
package dispatch

import (
	"context"
	"time"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

type Coordinator interface {
	Offer(ctx context.Context, orderID, courierID string) (*entities.Assignment, error)
	Respond(ctx context.Context, assignmentID, courierID string, decision entities.Decision) (*entities.Assignment, error)
	ListUnassigned(ctx context.Context, limit uint64) ([]entities.Order, error)
}

type Fulfillment interface {
	CreateOrder(ctx context.Context, create entities.OrderCreate) (*entities.Order, error)
	ConfirmPickup(ctx context.Context, orderID, courierID string) (*entities.Order, error)
	ConfirmDelivery(ctx context.Context, orderID, courierID string, input entities.DeliveryProofInput) (*entities.Order, error)
	Cancel(ctx context.Context, orderID, actor, reason string) (*entities.Order, error)
	Get(ctx context.Context, orderID string) (*entities.Order, error)
}

type Ledger interface {
	MarkItem(ctx context.Context, orderID, courierID string, index int, proofRef string) (*entities.VerificationItem, error)
	Get(ctx context.Context, orderID string) (*entities.VerificationRecord, error)
}

type Locations interface {
	UpdateLocation(ctx context.Context, courierID string, coordinate entities.Coordinate, ts time.Time) (entities.CourierPosition, error)
	SetAvailability(ctx context.Context, courierID string, status entities.CourierStatusType) (*entities.Courier, error)
	GetLocation(courierID string) (*entities.Coordinate, bool)
	CourierSnapshot(courierID string) (entities.CourierSnapshot, bool)
	Snapshot(filter entities.CourierFilter) []entities.CourierSnapshot
	ApplyCourier(courier entities.Courier)
}

type Matcher interface {
	FindNearby(ctx context.Context, origin entities.Coordinate, radiusKm float64, limit int) ([]entities.Candidate, error)
}

type CourierRegistry interface {
	CreateCourier(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error)
	UpdateCourier(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error)
	GetCourier(ctx context.Context, id string) (*entities.Courier, error)
}

type Broadcaster interface {
	PublishOrder(order *entities.Order)
	PublishOrderLocation(orderID string, coordinate entities.Coordinate)
	SubscribeOrder(ctx context.Context, orderID string) <-chan entities.OrderSnapshot
	SubscribeCouriers(ctx context.Context) <-chan entities.CourierSnapshot
}

type Retrier interface {
	ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
