package dto

import (
	"time"

	"dispatch/internal/entities"
)

type ItemProof struct {
	CourierID string `json:"courier_id"`
	ProofRef  string `json:"proof_ref"`
}

type VerificationItem struct {
	Index    int        `json:"index"`
	Checked  bool       `json:"checked"`
	ProofRef string     `json:"proof_ref,omitempty"`
	MarkedBy string     `json:"marked_by,omitempty"`
	MarkedAt *time.Time `json:"marked_at,omitempty"`
}

func NewVerificationItem(item *entities.VerificationItem) VerificationItem {
	return VerificationItem{
		Index:    item.LineIndex,
		Checked:  item.Checked,
		ProofRef: item.ProofRef,
		MarkedBy: item.MarkedBy,
		MarkedAt: item.MarkedAt,
	}
}

type DeliveryProof struct {
	Method    string    `json:"method"`
	CourierID string    `json:"courier_id"`
	PhotoRef  string    `json:"photo_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Verification struct {
	OrderID        string             `json:"order_id"`
	Items          []VerificationItem `json:"items"`
	Checked        int                `json:"checked"`
	Total          int                `json:"total"`
	PickupComplete bool               `json:"pickup_complete"`
	Delivery       *DeliveryProof     `json:"delivery,omitempty"`
}

func NewVerification(record *entities.VerificationRecord) Verification {
	items := make([]VerificationItem, len(record.Items))
	for i := range record.Items {
		items[i] = NewVerificationItem(&record.Items[i])
	}

	result := Verification{
		OrderID:        record.OrderID,
		Items:          items,
		Checked:        len(record.Items) - record.Missing(),
		Total:          len(record.Items),
		PickupComplete: record.PickupComplete(),
	}
	if record.Delivery != nil {
		result.Delivery = &DeliveryProof{
			Method:    string(record.Delivery.Method),
			CourierID: record.Delivery.CourierID,
			PhotoRef:  record.Delivery.PhotoRef,
			CreatedAt: record.Delivery.CreatedAt,
		}
	}
	return result
}
