package broadcast

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/pubsub"
)

// Broadcaster публикует закоммиченные изменения заказов и курьеров подписчикам.
// Топик заказа - его id, версия - версия строки заказа. Топик доставленного или
// отменённого заказа забывается, когда от него отписывается последний читатель.
type Broadcaster struct {
	orders   *pubsub.Hub[entities.OrderSnapshot]
	couriers *pubsub.Hub[entities.CourierSnapshot]
}

func New(buffer int) *Broadcaster {
	finished := func(s entities.OrderSnapshot) bool {
		return s.Status.IsTerminal()
	}
	return &Broadcaster{
		orders:   pubsub.New(buffer, pubsub.WithRetire(finished)),
		couriers: pubsub.New[entities.CourierSnapshot](buffer),
	}
}

func (b *Broadcaster) PublishOrder(order *entities.Order) {
	b.orders.Publish(order.ID, order.Version, entities.NewOrderSnapshot(order))
}

// PublishOrderLocation дополняет последний снимок заказа координатой курьера.
// Вне SHIPPED координата клиенту не показывается.
func (b *Broadcaster) PublishOrderLocation(orderID string, coordinate entities.Coordinate) {
	latest, ok := b.orders.Latest(orderID)
	if !ok || latest.Status != entities.OrderShipped {
		return
	}
	b.orders.Publish(orderID, latest.Version, latest.WithCoordinate(coordinate))
}

func (b *Broadcaster) PublishCourier(snapshot entities.CourierSnapshot, version int64) {
	b.couriers.Publish(snapshot.CourierID, version, snapshot)
}

func (b *Broadcaster) LatestOrder(orderID string) (entities.OrderSnapshot, bool) {
	return b.orders.Latest(orderID)
}

func (b *Broadcaster) SubscribeOrder(ctx context.Context, orderID string) <-chan entities.OrderSnapshot {
	return b.orders.Subscribe(ctx, orderID)
}

// OrderTopics - число заказов, чьи снимки хаб держит в памяти.
func (b *Broadcaster) OrderTopics() int {
	return b.orders.Topics()
}

func (b *Broadcaster) SubscribeCouriers(ctx context.Context) <-chan entities.CourierSnapshot {
	return b.couriers.SubscribeAll(ctx)
}
