package entities

import "time"

type NotificationType string

const (
	NotificationOrderAssigned            NotificationType = "OrderAssigned"
	NotificationOrderPickedUp            NotificationType = "OrderPickedUp"
	NotificationOrderDelivered           NotificationType = "OrderDelivered"
	NotificationAssignmentExpired        NotificationType = "AssignmentExpired"
	NotificationDeliveryDisputeSuspected NotificationType = "DeliveryDisputeSuspected"
	NotificationCourierNeedsAttention    NotificationType = "CourierNeedsAttention"
)

// Notification - fire-and-forget событие для внешнего нотификатора.
type Notification struct {
	Type       NotificationType  `json:"type"`
	OrderID    string            `json:"order_id,omitempty"`
	CourierID  string            `json:"courier_id,omitempty"`
	CustomerID string            `json:"customer_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// AuditEvent - неизменяемая запись для внешнего append-only журнала.
type AuditEvent struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	OrderID    string    `json:"order_id,omitempty"`
	CourierID  string    `json:"courier_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	ActorSystem     = "system"
	ActorDispatcher = "dispatcher"
	ActorVendor     = "vendor"
)

const (
	ActorCourier  = "courier"
	ActorCustomer = "customer"
)
