//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=location_test
package location

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

type CourierRepository interface {
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Courier, error)
	Update(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error)
}

// Registry находит курьера, при необходимости регистрируя его по профилю fleet-домена.
type Registry interface {
	Ensure(ctx context.Context, id string) (*entities.Courier, error)
}

type Publisher interface {
	PublishCourier(snapshot entities.CourierSnapshot, version int64)
	PublishOrderLocation(orderID string, coordinate entities.Coordinate)
}

type PingLimiter interface {
	Allow(key string) bool
	Forget(key string)
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
