package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
	"github.com/google/uuid"
)

// Gateway - граница диспетчеризации для диспетчера, курьерского приложения и клиента.
// Инфраструктурные сбои повторяются через retrier, бизнес-исходы возвращаются как есть.
type Gateway struct {
	log         handlerLogger
	coordinator Coordinator
	fulfillment Fulfillment
	ledger      Ledger
	locations   Locations
	matcher     Matcher
	couriers    CourierRegistry
	broadcaster Broadcaster
	retrier     Retrier
}

func New(
	log handlerLogger,
	coordinator Coordinator,
	fulfillment Fulfillment,
	ledger Ledger,
	locations Locations,
	matcher Matcher,
	couriers CourierRegistry,
	broadcaster Broadcaster,
	retrier Retrier,
) *Gateway {
	return &Gateway{
		log:         log,
		coordinator: coordinator,
		fulfillment: fulfillment,
		ledger:      ledger,
		locations:   locations,
		matcher:     matcher,
		couriers:    couriers,
		broadcaster: broadcaster,
		retrier:     retrier,
	}
}

// RequestPickup бронирует доставку от имени клиента: заказ продукта instant delivery в PENDING.
// Id заказа выбирается до первой попытки, поэтому повтор после потерянного ответа не создаёт дубль.
func (g *Gateway) RequestPickup(ctx context.Context, customerID string, req entities.PickupRequest) (*entities.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidCustomerID
	}

	orderID := uuid.NewString()
	create := entities.OrderCreate{
		ID:          pointer.To(orderID),
		CustomerID:  customerID,
		Product:     entities.ProductInstantDelivery,
		Items:       req.Items,
		DeliveryFee: req.DeliveryFee,
		Currency:    req.Currency,
		Pickup:      req.Pickup,
		Dropoff:     req.Dropoff,
		Atomic:      req.Atomic,
	}

	attempt := 0
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Order, error) {
		attempt++
		order, err := g.fulfillment.CreateOrder(ctx, create)
		if attempt > 1 && errors.Is(err, entities.ErrConflict) {
			if existing, getErr := g.fulfillment.Get(ctx, orderID); getErr == nil && existing.CustomerID == customerID {
				return existing, nil
			}
		}
		return order, err
	})
}

func (g *Gateway) Offer(ctx context.Context, orderID, courierID string) (*entities.Assignment, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Assignment, error) {
		return g.coordinator.Offer(ctx, orderID, courierID)
	})
}

func (g *Gateway) Respond(
	ctx context.Context,
	assignmentID, courierID string,
	decision entities.Decision,
) (*entities.Assignment, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Assignment, error) {
		return g.coordinator.Respond(ctx, assignmentID, courierID, decision)
	})
}

func (g *Gateway) ListUnassigned(ctx context.Context, limit uint64) ([]entities.OrderSnapshot, error) {
	orders, err := withRetry(ctx, g.retrier, func(ctx context.Context) ([]entities.Order, error) {
		return g.coordinator.ListUnassigned(ctx, limit)
	})
	if err != nil {
		return nil, err
	}

	dispatcher := entities.Viewer{Role: entities.ViewerDispatcher}
	result := make([]entities.OrderSnapshot, 0, len(orders))
	for i := range orders {
		result = append(result, entities.NewOrderSnapshot(&orders[i]).For(dispatcher))
	}
	return result, nil
}

func (g *Gateway) MarkItem(
	ctx context.Context,
	orderID, courierID string,
	index int,
	proofRef string,
) (*entities.VerificationItem, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.VerificationItem, error) {
		return g.ledger.MarkItem(ctx, orderID, courierID, index, proofRef)
	})
}

func (g *Gateway) Verification(ctx context.Context, orderID string) (*entities.VerificationRecord, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.VerificationRecord, error) {
		return g.ledger.Get(ctx, orderID)
	})
}

func (g *Gateway) ConfirmPickup(ctx context.Context, orderID, courierID string) (*entities.Order, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Order, error) {
		return g.fulfillment.ConfirmPickup(ctx, orderID, courierID)
	})
}

func (g *Gateway) ConfirmDelivery(
	ctx context.Context,
	orderID, courierID string,
	input entities.DeliveryProofInput,
) (*entities.Order, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Order, error) {
		return g.fulfillment.ConfirmDelivery(ctx, orderID, courierID, input)
	})
}

func (g *Gateway) CancelOrder(ctx context.Context, orderID, actor, reason string) (*entities.Order, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Order, error) {
		return g.fulfillment.Cancel(ctx, orderID, actor, reason)
	})
}

// GetOrder - снимок заказа глазами зрителя. В SHIPPED дополняется координатой курьера.
func (g *Gateway) GetOrder(ctx context.Context, orderID string, viewer entities.Viewer) (entities.OrderSnapshot, error) {
	order, err := withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Order, error) {
		return g.fulfillment.Get(ctx, orderID)
	})
	if err != nil {
		return entities.OrderSnapshot{}, err
	}

	snapshot := entities.NewOrderSnapshot(order)
	if coordinate, ok := g.liveCoordinate(order); ok {
		snapshot = snapshot.WithCoordinate(*coordinate)
	}
	return snapshot.For(viewer), nil
}

func (g *Gateway) UpdateLocation(
	ctx context.Context,
	courierID string,
	coordinate entities.Coordinate,
	ts time.Time,
) (entities.CourierPosition, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (entities.CourierPosition, error) {
		return g.locations.UpdateLocation(ctx, courierID, coordinate, ts)
	})
}

func (g *Gateway) SetAvailability(
	ctx context.Context,
	courierID string,
	status entities.CourierStatusType,
) (*entities.Courier, error) {
	return withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Courier, error) {
		return g.locations.SetAvailability(ctx, courierID, status)
	})
}

func (g *Gateway) FindNearby(
	ctx context.Context,
	origin entities.Coordinate,
	radiusKm float64,
	limit int,
) ([]entities.Candidate, error) {
	return g.matcher.FindNearby(ctx, origin, radiusKm, limit)
}

// RegisterCourier заводит курьера и сразу кладёт его в живой срез парка.
func (g *Gateway) RegisterCourier(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error) {
	courier, err := withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Courier, error) {
		return g.couriers.CreateCourier(ctx, courierModify)
	})
	if err != nil {
		return nil, err
	}
	g.locations.ApplyCourier(*courier)
	return courier, nil
}

func (g *Gateway) UpdateCourierProfile(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error) {
	courier, err := withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Courier, error) {
		return g.couriers.UpdateCourier(ctx, courierModify)
	})
	if err != nil {
		return nil, err
	}
	g.locations.ApplyCourier(*courier)
	return courier, nil
}

// GetCourier отдаёт живой снимок, а для курьера, которого ещё нет в срезе, - снимок из хранилища.
func (g *Gateway) GetCourier(ctx context.Context, courierID string) (entities.CourierSnapshot, error) {
	if snapshot, ok := g.locations.CourierSnapshot(courierID); ok {
		return snapshot, nil
	}

	courier, err := withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Courier, error) {
		return g.couriers.GetCourier(ctx, courierID)
	})
	if err != nil {
		return entities.CourierSnapshot{}, err
	}
	return entities.NewCourierSnapshot(courier), nil
}

func (g *Gateway) ListCouriers(filter entities.CourierFilter) []entities.CourierSnapshot {
	return g.locations.Snapshot(filter)
}

func (g *Gateway) liveCoordinate(order *entities.Order) (*entities.Coordinate, bool) {
	if order.Status != entities.OrderShipped || order.CourierID == nil {
		return nil, false
	}
	return g.locations.GetLocation(*order.CourierID)
}

func (g *Gateway) logFailure(msg string, err error, fields ...logger.Field) {
	if entities.IsBusinessOutcome(err) {
		return
	}
	g.log.Error(msg, append(fields, logger.NewField("error", err))...)
}

func viewerOK(viewer entities.Viewer) error {
	switch viewer.Role {
	case entities.ViewerDispatcher:
		return nil
	case entities.ViewerCustomer, entities.ViewerCourier:
		if strings.TrimSpace(viewer.ID) == "" {
			return fmt.Errorf("%w: %s without id", ErrInvalidViewer, viewer.Role)
		}
		return nil
	default:
		return fmt.Errorf("%w: role %q", ErrInvalidViewer, viewer.Role)
	}
}
