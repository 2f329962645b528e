package entities

import "time"

type ViewerRole string

const (
	ViewerCustomer   ViewerRole = "customer"
	ViewerCourier    ViewerRole = "courier"
	ViewerDispatcher ViewerRole = "dispatcher"
)

type Viewer struct {
	Role ViewerRole
	ID   string
}

type OrderSnapshot struct {
	OrderID     string          `json:"order_id"`
	Number      string          `json:"number"`
	Status      OrderStatusType `json:"status"`
	CourierID   *string         `json:"courier_id,omitempty"`
	Coordinate  *Coordinate     `json:"coordinate,omitempty"`
	DeliveryPIN string          `json:"delivery_pin,omitempty"`
	Atomic      bool            `json:"atomic"`
	SLADeadline time.Time       `json:"sla_deadline"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int64           `json:"version"`

	customerID string
}

func NewOrderSnapshot(o *Order) OrderSnapshot {
	return OrderSnapshot{
		OrderID:     o.ID,
		Number:      o.Number,
		Status:      o.Status,
		CourierID:   o.CourierID,
		DeliveryPIN: o.DeliveryPIN,
		Atomic:      o.Atomic,
		SLADeadline: o.SLADeadline,
		UpdatedAt:   o.UpdatedAt,
		Version:     o.Version,
		customerID:  o.CustomerID,
	}
}

// For возвращает копию снимка для конкретного зрителя: PIN видит только клиент этого заказа.
func (s OrderSnapshot) For(viewer Viewer) OrderSnapshot {
	out := s
	if viewer.Role != ViewerCustomer || viewer.ID != s.customerID {
		out.DeliveryPIN = ""
	}
	return out
}

// WithCoordinate дополняет снимок живой координатой курьера - только в SHIPPED.
func (s OrderSnapshot) WithCoordinate(c Coordinate) OrderSnapshot {
	out := s
	if s.Status == OrderShipped {
		out.Coordinate = &c
	}
	return out
}

type CourierSnapshot struct {
	CourierID      string            `json:"courier_id"`
	Name           string            `json:"name"`
	TransportType  string            `json:"transport_type"`
	Hub            string            `json:"hub"`
	Status         CourierStatusType `json:"status"`
	ActiveOrderID  *string           `json:"active_order_id,omitempty"`
	Coordinate     *Coordinate       `json:"coordinate,omitempty"`
	LastPingAt     *time.Time        `json:"last_ping_at,omitempty"`
	NeedsAttention bool              `json:"needs_attention"`
}

func NewCourierSnapshot(c *Courier) CourierSnapshot {
	return CourierSnapshot{
		CourierID:      c.ID,
		Name:           c.Name,
		TransportType:  c.TransportType.String(),
		Hub:            c.Hub,
		Status:         c.Status,
		ActiveOrderID:  c.ActiveOrderID,
		NeedsAttention: c.NeedsAttention,
	}
}
