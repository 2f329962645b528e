package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/metrics"
	"dispatch/pkg/logger"
)

const (
	subscriptionOrder = "order"
	subscriptionFleet = "fleet"
)

// SubscribeOrder - поток снимков заказа: сначала текущее состояние, затем обновления.
// Доставка как минимум один раз; промежуточные состояния медленному читателю могут не прийти,
// последнее закоммиченное приходит всегда. Канал закрывается после отмены ctx.
func (g *Gateway) SubscribeOrder(
	ctx context.Context,
	orderID string,
	viewer entities.Viewer,
) (<-chan entities.OrderSnapshot, error) {
	if err := viewerOK(viewer); err != nil {
		return nil, err
	}

	// подписка раньше чтения: хаб отдаст прочитанное состояние или более новое
	subCtx, cancel := context.WithCancel(ctx)
	src := g.broadcaster.SubscribeOrder(subCtx, orderID)

	order, err := withRetry(ctx, g.retrier, func(ctx context.Context) (*entities.Order, error) {
		return g.fulfillment.Get(ctx, orderID)
	})
	if err != nil {
		cancel()
		g.logFailure("subscribe order", err, logger.NewField("order_id", orderID))
		return nil, fmt.Errorf("subscribe order %s: %w", orderID, err)
	}

	g.broadcaster.PublishOrder(order)
	if coordinate, ok := g.liveCoordinate(order); ok {
		g.broadcaster.PublishOrderLocation(orderID, *coordinate)
	}

	out := make(chan entities.OrderSnapshot)

	gauge := metrics.SubscriptionsActive.WithLabelValues(subscriptionOrder)
	gauge.Inc()
	go func() {
		defer gauge.Dec()
		defer close(out)
		defer cancel()

		for snapshot := range src {
			select {
			case out <- snapshot.For(viewer):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// SubscribeCourierFleet - поток среза парка по фильтру. Каждое сообщение - полный срез,
// заменяющий предыдущий; непрочитанный срез вытесняется более свежим.
func (g *Gateway) SubscribeCourierFleet(
	ctx context.Context,
	filter entities.CourierFilter,
) (<-chan []entities.CourierSnapshot, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, status)
		}
	}

	// подписка раньше среза: изменение между ними не потеряется
	src := g.broadcaster.SubscribeCouriers(ctx)

	fleet := make(map[string]entities.CourierSnapshot)
	for _, snapshot := range g.locations.Snapshot(filter) {
		fleet[snapshot.CourierID] = snapshot
	}

	out := make(chan []entities.CourierSnapshot, 1)
	out <- sortedFleet(fleet)

	gauge := metrics.SubscriptionsActive.WithLabelValues(subscriptionFleet)
	gauge.Inc()
	go func() {
		defer gauge.Dec()
		defer close(out)

		for snapshot := range src {
			_, known := fleet[snapshot.CourierID]
			match := filter.MatchSnapshot(snapshot)
			if !match && !known {
				continue
			}
			if match {
				fleet[snapshot.CourierID] = snapshot
			} else {
				delete(fleet, snapshot.CourierID)
			}
			replaceLatest(out, sortedFleet(fleet))
		}
	}()

	return out, nil
}

func sortedFleet(fleet map[string]entities.CourierSnapshot) []entities.CourierSnapshot {
	result := make([]entities.CourierSnapshot, 0, len(fleet))
	for _, snapshot := range fleet {
		result = append(result, snapshot)
	}
	slices.SortFunc(result, func(a, b entities.CourierSnapshot) int {
		return strings.Compare(a.CourierID, b.CourierID)
	})
	return result
}

// replaceLatest кладёт значение в канал с буфером 1, вытесняя непрочитанное.
func replaceLatest[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
