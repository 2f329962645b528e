package entities

import "time"

type VerificationItem struct {
	OrderID   string
	LineIndex int
	Checked   bool
	ProofRef  string
	MarkedBy  string
	MarkedAt  *time.Time
}

// Complete - позиция отмечена и несёт непустую ссылку на артефакт.
func (i VerificationItem) Complete() bool {
	return i.Checked && i.ProofRef != ""
}

type DeliveryProofMethod string

const (
	ProofPIN   DeliveryProofMethod = "pin"
	ProofPhoto DeliveryProofMethod = "photo"
)

type DeliveryProof struct {
	OrderID   string
	CourierID string
	Method    DeliveryProofMethod
	PhotoRef  string
	CreatedAt time.Time
}

// DeliveryProofInput - то, что курьер присылает на точке выдачи.
type DeliveryProofInput struct {
	PIN      string
	PhotoRef string
}

type VerificationRecord struct {
	OrderID  string
	Items    []VerificationItem
	Delivery *DeliveryProof
}

func (r *VerificationRecord) Missing() int {
	missing := 0
	for _, item := range r.Items {
		if !item.Complete() {
			missing++
		}
	}
	return missing
}

func (r *VerificationRecord) PickupComplete() bool {
	return len(r.Items) > 0 && r.Missing() == 0
}
