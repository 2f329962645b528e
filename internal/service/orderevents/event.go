package orderevents

import "dispatch/internal/entities"

// EventStatus - статус во входящем событии checkout/вендора.
type EventStatus string

const (
	EventCreated   EventStatus = "created"
	EventAccepted  EventStatus = "accepted"
	EventPacking   EventStatus = "packing"
	EventReady     EventStatus = "ready_for_pickup"
	EventCancelled EventStatus = "cancelled"
)

type Event struct {
	OrderID string
	Status  EventStatus
	Actor   string
	Reason  string
	// Create заполнен только для EventCreated.
	Create *entities.OrderCreate
}
