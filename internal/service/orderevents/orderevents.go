package orderevents

import (
	"context"
	"fmt"
	"strings"

	"dispatch/internal/entities"
)

// Service применяет события checkout и вендора к заказам. Доставка событий как минимум
// однократная, поэтому каждый переход идемпотентен.
type Service struct {
	statusFactory HandlerFactory
}

func New(statusFactory HandlerFactory) *Service {
	return &Service{
		statusFactory: statusFactory,
	}
}

func (s *Service) Process(ctx context.Context, event Event) (*entities.Order, error) {
	if strings.TrimSpace(event.OrderID) == "" {
		return nil, ErrMissingOrderID
	}

	executeFn, err := s.statusFactory.GetHandler(event.Status)
	if err != nil {
		return nil, err
	}

	order, err := executeFn(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("process %s event for order %s: %w", event.Status, event.OrderID, err)
	}
	return order, nil
}
