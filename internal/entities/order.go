package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatusType string

const (
	OrderPending        OrderStatusType = "pending"
	OrderAccepted       OrderStatusType = "accepted"
	OrderPacking        OrderStatusType = "packing"
	OrderReadyForPickup OrderStatusType = "ready_for_pickup"
	OrderAssigned       OrderStatusType = "assigned"
	OrderPickedUp       OrderStatusType = "picked_up"
	OrderShipped        OrderStatusType = "shipped"
	OrderDelivered      OrderStatusType = "delivered"
	OrderCancelled      OrderStatusType = "cancelled"
)

// порядок статусов в линейном жизненном цикле; CANCELLED вне линии
var orderStatusRank = map[OrderStatusType]int{
	OrderPending:        1,
	OrderAccepted:       2,
	OrderPacking:        3,
	OrderReadyForPickup: 4,
	OrderAssigned:       5,
	OrderPickedUp:       6,
	OrderShipped:        7,
	OrderDelivered:      8,
}

func (s OrderStatusType) String() string {
	return string(s)
}

func (s OrderStatusType) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderCancelled
}

func (s OrderStatusType) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// IsActiveDelivery - статусы, в которых заказ удерживает курьера (ASSIGNED..SHIPPED).
func (s OrderStatusType) IsActiveDelivery() bool {
	return s == OrderAssigned || s == OrderPickedUp || s == OrderShipped
}

// Cancellable - отмена разрешена от PENDING до ASSIGNED включительно.
func (s OrderStatusType) Cancellable() bool {
	rank, ok := orderStatusRank[s]
	return ok && rank <= orderStatusRank[OrderAssigned]
}

// CanAdvanceTo проверяет шаг вперёд по линии. Единственный откат READY <- ASSIGNED
// делает AssignmentCoordinator через отдельную процедуру освобождения.
func (s OrderStatusType) CanAdvanceTo(next OrderStatusType) bool {
	if next == OrderCancelled {
		return s.Cancellable()
	}
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// AtOrBeyond - заказ уже достиг статуса target (повторный переход - no-op).
func (s OrderStatusType) AtOrBeyond(target OrderStatusType) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[target]
	if !ok {
		return false
	}
	return from >= to
}

type LineItem struct {
	ProductRef   string
	Quantity     int
	UnitPrice    decimal.Decimal
	VariantLabel string
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderTimeline struct {
	CreatedAt   time.Time
	AcceptedAt  *time.Time
	PackingAt   *time.Time
	ReadyAt     *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// Stamp проставляет время перехода в статус.
func (t *OrderTimeline) Stamp(status OrderStatusType, at time.Time) {
	ts := at
	switch status {
	case OrderPending:
		t.CreatedAt = at
	case OrderAccepted:
		t.AcceptedAt = &ts
	case OrderPacking:
		t.PackingAt = &ts
	case OrderReadyForPickup:
		t.ReadyAt = &ts
	case OrderAssigned:
		t.AssignedAt = &ts
	case OrderPickedUp:
		t.PickedUpAt = &ts
	case OrderShipped:
		t.ShippedAt = &ts
	case OrderDelivered:
		t.DeliveredAt = &ts
	case OrderCancelled:
		t.CancelledAt = &ts
	}
}

type Order struct {
	ID          string
	Number      string
	CustomerID  string
	VendorID    string
	Product     string
	Items       []LineItem
	Total       decimal.Decimal
	DeliveryFee decimal.Decimal
	Currency    string
	Pickup      Address
	Dropoff     Address
	CourierID   *string
	ClaimToken  *string
	Status      OrderStatusType
	DeliveryPIN string
	Atomic      bool
	SLADeadline time.Time

	FailedPINAttempts int
	CancelReason      string

	Timeline  OrderTimeline
	UpdatedAt time.Time
	// Version растёт на каждом коммите; подписчики отбрасывают снимки с меньшей версией.
	Version int64
}

func (o *Order) AssignedTo(courierID string) bool {
	return o.CourierID != nil && *o.CourierID == courierID
}

const ProductInstantDelivery = "instant_delivery"

// OrderCreate - полностью рассчитанный заказ от checkout.
type OrderCreate struct {
	ID          *string
	Number      *string
	CustomerID  string
	VendorID    string
	Product     string
	Items       []LineItem
	DeliveryFee decimal.Decimal
	Currency    string
	Pickup      Address
	Dropoff     Address
	Atomic      bool
}

// PickupRequest - бронирование доставки клиентом (продукт instant delivery).
type PickupRequest struct {
	Pickup      Address
	Dropoff     Address
	Items       []LineItem
	DeliveryFee decimal.Decimal
	Currency    string
	Atomic      bool
}

type OrderFilter struct {
	Statuses []OrderStatusType
	Limit    uint64
}

// OrderModify - частичное обновление заказа; nil-поля не трогаются.
// Status вместе с At проставляет время перехода в таймлайне.
type OrderModify struct {
	ID                string
	Status            *OrderStatusType
	At                time.Time
	CourierID         **string
	ClaimToken        **string
	FailedPINAttempts *int
	CancelReason      *string
}

// OrderClaim - атомарный захват заказа: READY_FOR_PICKUP без токена -> ASSIGNED.
type OrderClaim struct {
	OrderID   string
	CourierID string
	Token     string
	At        time.Time
}
