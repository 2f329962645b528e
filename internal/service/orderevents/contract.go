//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=orderevents_test
package orderevents

import (
	"context"

	"dispatch/internal/entities"
)

// StateMachine - переходы заказа, которые приходят событиями от checkout и вендора.
type StateMachine interface {
	CreateOrder(ctx context.Context, create entities.OrderCreate) (*entities.Order, error)
	Accept(ctx context.Context, orderID string) (*entities.Order, error)
	StartPacking(ctx context.Context, orderID string) (*entities.Order, error)
	MarkReady(ctx context.Context, orderID string) (*entities.Order, error)
	Cancel(ctx context.Context, orderID, actor, reason string) (*entities.Order, error)
	Get(ctx context.Context, orderID string) (*entities.Order, error)
}

type (
	ExecuteFn      func(ctx context.Context, event Event) (*entities.Order, error)
	HandlerFactory interface {
		GetHandler(status EventStatus) (ExecuteFn, error)
	}
)
