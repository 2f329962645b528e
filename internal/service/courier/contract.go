//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=courier_test
package courier

import (
	"context"

	"dispatch/internal/entities"
)

type Repository interface {
	Create(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error)
	GetByID(ctx context.Context, id string) (*entities.Courier, error)
	List(ctx context.Context, filter entities.CourierFilter) ([]entities.Courier, error)
	Update(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error)
}

// FleetGateway - внешний fleet-домен, владелец профиля курьера.
type FleetGateway interface {
	GetCourierProfile(ctx context.Context, courierID string) (*entities.CourierProfile, error)
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
