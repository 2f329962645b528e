package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type lineItemDB struct {
	ProductRef   string          `json:"product_ref"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VariantLabel string          `json:"variant_label,omitempty"`
}

type OrderDB struct {
	ID                string
	Number            string
	CustomerID        string
	VendorID          string
	Product           string
	LineItems         []lineItemDB
	Total             decimal.Decimal
	DeliveryFee       decimal.Decimal
	Currency          string
	PickupLabel       string
	PickupLat         float64
	PickupLon         float64
	DropoffLabel      string
	DropoffLat        float64
	DropoffLon        float64
	CourierID         *string
	ClaimToken        *string
	Status            string
	DeliveryPIN       string
	Atomic            bool
	SLADeadline       time.Time
	FailedPINAttempts int
	CancelReason      string
	CreatedAt         time.Time
	AcceptedAt        *time.Time
	PackingAt         *time.Time
	ReadyAt           *time.Time
	AssignedAt        *time.Time
	PickedUpAt        *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	UpdatedAt         time.Time
	Version           int64
}

var orderColumns = []string{
	"id", "number", "customer_id", "vendor_id", "product", "line_items", "total", "delivery_fee", "currency",
	"pickup_label", "pickup_lat", "pickup_lon", "dropoff_label", "dropoff_lat", "dropoff_lon",
	"courier_id", "claim_token", "status", "delivery_pin", "atomic", "sla_deadline",
	"failed_pin_attempts", "cancel_reason",
	"created_at", "accepted_at", "packing_at", "ready_at", "assigned_at", "picked_up_at", "shipped_at",
	"delivered_at", "cancelled_at", "updated_at", "version",
}

// колонка таймлайна для статуса
var statusStampColumn = map[string]string{
	"accepted":         "accepted_at",
	"packing":          "packing_at",
	"ready_for_pickup": "ready_at",
	"assigned":         "assigned_at",
	"picked_up":        "picked_up_at",
	"shipped":          "shipped_at",
	"delivered":        "delivered_at",
	"cancelled":        "cancelled_at",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (OrderDB, error) {
	var o OrderDB
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.VendorID, &o.Product, &o.LineItems, &o.Total, &o.DeliveryFee, &o.Currency,
		&o.PickupLabel, &o.PickupLat, &o.PickupLon, &o.DropoffLabel, &o.DropoffLat, &o.DropoffLon,
		&o.CourierID, &o.ClaimToken, &o.Status, &o.DeliveryPIN, &o.Atomic, &o.SLADeadline,
		&o.FailedPINAttempts, &o.CancelReason,
		&o.CreatedAt, &o.AcceptedAt, &o.PackingAt, &o.ReadyAt, &o.AssignedAt, &o.PickedUpAt, &o.ShippedAt,
		&o.DeliveredAt, &o.CancelledAt, &o.UpdatedAt, &o.Version,
	)
	return o, err
}
