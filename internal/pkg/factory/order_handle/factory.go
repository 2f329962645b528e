package order_handle

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/entities"
	"dispatch/internal/service/orderevents"
)

type StatusHandlerFactory struct {
	machine orderevents.StateMachine
}

func NewStatusHandlerFactory(machine orderevents.StateMachine) *StatusHandlerFactory {
	return &StatusHandlerFactory{
		machine: machine,
	}
}

func (f *StatusHandlerFactory) GetHandler(status orderevents.EventStatus) (orderevents.ExecuteFn, error) {
	switch status {
	case orderevents.EventCreated:
		return f.createdHandler, nil
	case orderevents.EventAccepted:
		return f.step(f.machine.Accept), nil
	case orderevents.EventPacking:
		return f.step(f.machine.StartPacking), nil
	case orderevents.EventReady:
		return f.step(f.machine.MarkReady), nil
	case orderevents.EventCancelled:
		return f.cancelledHandler, nil
	default:
		return nil, fmt.Errorf("%w: %s", orderevents.ErrUndefinedStatus, status)
	}
}

// createdHandler - повтор события о создании отдаёт уже сохранённый заказ.
func (f *StatusHandlerFactory) createdHandler(ctx context.Context, event orderevents.Event) (*entities.Order, error) {
	if event.Create == nil {
		return nil, orderevents.ErrMissingPayload
	}

	create := *event.Create
	create.ID = &event.OrderID

	order, err := f.machine.CreateOrder(ctx, create)
	if errors.Is(err, entities.ErrConflict) {
		return f.machine.Get(ctx, event.OrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (f *StatusHandlerFactory) step(
	transition func(ctx context.Context, orderID string) (*entities.Order, error),
) orderevents.ExecuteFn {
	return func(ctx context.Context, event orderevents.Event) (*entities.Order, error) {
		return transition(ctx, event.OrderID)
	}
}

func (f *StatusHandlerFactory) cancelledHandler(ctx context.Context, event orderevents.Event) (*entities.Order, error) {
	actor := event.Actor
	if actor == "" {
		actor = entities.ActorVendor
	}
	order, err := f.machine.Cancel(ctx, event.OrderID, actor, event.Reason)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	return order, nil
}
