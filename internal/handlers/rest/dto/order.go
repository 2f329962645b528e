package dto

import (
	"time"

	"dispatch/internal/entities"

	"github.com/shopspring/decimal"
)

type Address struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

func (a Address) ToDomain() entities.Address {
	return entities.Address{
		Label:      a.Label,
		Coordinate: entities.Coordinate{Lat: a.Lat, Lon: a.Lon},
	}
}

type LineItem struct {
	ProductRef   string          `json:"product_ref"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VariantLabel string          `json:"variant_label,omitempty"`
}

type PickupRequest struct {
	CustomerID  string          `json:"customer_id"`
	Pickup      Address         `json:"pickup"`
	Dropoff     Address         `json:"dropoff"`
	Items       []LineItem      `json:"items"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Currency    string          `json:"currency"`
	Atomic      bool            `json:"atomic"`
}

func (p PickupRequest) ToDomain() entities.PickupRequest {
	items := make([]entities.LineItem, len(p.Items))
	for i, item := range p.Items {
		items[i] = entities.LineItem{
			ProductRef:   item.ProductRef,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			VariantLabel: item.VariantLabel,
		}
	}
	return entities.PickupRequest{
		Pickup:      p.Pickup.ToDomain(),
		Dropoff:     p.Dropoff.ToDomain(),
		Items:       items,
		DeliveryFee: p.DeliveryFee,
		Currency:    p.Currency,
		Atomic:      p.Atomic,
	}
}

// Order - полный заказ для того, кто его создал.
type Order struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	CustomerID  string          `json:"customer_id"`
	Product     string          `json:"product"`
	Status      string          `json:"status"`
	Items       []LineItem      `json:"items"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	Pickup      Address         `json:"pickup"`
	Dropoff     Address         `json:"dropoff"`
	DeliveryPIN string          `json:"delivery_pin"`
	Atomic      bool            `json:"atomic"`
	SLADeadline time.Time       `json:"sla_deadline"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewOrder(o *entities.Order) Order {
	items := make([]LineItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItem{
			ProductRef:   item.ProductRef,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			VariantLabel: item.VariantLabel,
		}
	}
	return Order{
		ID:          o.ID,
		Number:      o.Number,
		CustomerID:  o.CustomerID,
		Product:     o.Product,
		Status:      o.Status.String(),
		Items:       items,
		DeliveryFee: o.DeliveryFee,
		Total:       o.Total,
		Currency:    o.Currency,
		Pickup:      newAddress(o.Pickup),
		Dropoff:     newAddress(o.Dropoff),
		DeliveryPIN: o.DeliveryPIN,
		Atomic:      o.Atomic,
		SLADeadline: o.SLADeadline,
		CreatedAt:   o.Timeline.CreatedAt,
	}
}

func newAddress(a entities.Address) Address {
	return Address{Label: a.Label, Lat: a.Coordinate.Lat, Lon: a.Coordinate.Lon}
}

type CourierAction struct {
	CourierID string `json:"courier_id"`
}

type DeliveryConfirm struct {
	CourierID string `json:"courier_id"`
	PIN       string `json:"pin,omitempty"`
	PhotoRef  string `json:"photo_ref,omitempty"`
}

type CancelRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}
