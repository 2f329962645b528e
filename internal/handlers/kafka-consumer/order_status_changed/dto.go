package order_status_changed

import (
	"dispatch/internal/entities"
	"dispatch/internal/service/orderevents"

	"github.com/shopspring/decimal"
)

type statusChangedEvent struct {
	OrderID string        `json:"order_id"`
	Status  string        `json:"status"`
	Actor   string        `json:"actor,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Order   *orderPayload `json:"order,omitempty"`
}

type orderPayload struct {
	Number      string          `json:"number,omitempty"`
	CustomerID  string          `json:"customer_id"`
	VendorID    string          `json:"vendor_id"`
	Product     string          `json:"product,omitempty"`
	Items       []itemPayload   `json:"items"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Currency    string          `json:"currency"`
	Pickup      addressPayload  `json:"pickup"`
	Dropoff     addressPayload  `json:"dropoff"`
	Atomic      bool            `json:"atomic"`
}

type itemPayload struct {
	ProductRef   string          `json:"product_ref"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VariantLabel string          `json:"variant_label,omitempty"`
}

type addressPayload struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

func (e statusChangedEvent) toDomain() orderevents.Event {
	event := orderevents.Event{
		OrderID: e.OrderID,
		Status:  orderevents.EventStatus(e.Status),
		Actor:   e.Actor,
		Reason:  e.Reason,
	}
	if e.Order == nil {
		return event
	}

	create := &entities.OrderCreate{
		CustomerID:  e.Order.CustomerID,
		VendorID:    e.Order.VendorID,
		Product:     e.Order.Product,
		DeliveryFee: e.Order.DeliveryFee,
		Currency:    e.Order.Currency,
		Pickup:      e.Order.Pickup.toDomain(),
		Dropoff:     e.Order.Dropoff.toDomain(),
		Atomic:      e.Order.Atomic,
	}
	if e.Order.Number != "" {
		create.Number = &e.Order.Number
	}
	for _, item := range e.Order.Items {
		create.Items = append(create.Items, entities.LineItem{
			ProductRef:   item.ProductRef,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			VariantLabel: item.VariantLabel,
		})
	}
	event.Create = create
	return event
}

func (a addressPayload) toDomain() entities.Address {
	return entities.Address{
		Label:      a.Label,
		Coordinate: entities.Coordinate{Lat: a.Lat, Lon: a.Lon},
	}
}
