package dto

import (
	"time"

	"dispatch/internal/entities"
)

type OfferRequest struct {
	OrderID   string `json:"order_id"`
	CourierID string `json:"courier_id"`
}

type OfferResponse struct {
	CourierID string `json:"courier_id"`
	Decision  string `json:"decision"`
}

type Assignment struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	CourierID   string     `json:"courier_id"`
	Status      string     `json:"status"`
	Cause       *string    `json:"cause,omitempty"`
	OfferedAt   time.Time  `json:"offered_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func NewAssignment(a *entities.Assignment) Assignment {
	result := Assignment{
		ID:          a.ID,
		OrderID:     a.OrderID,
		CourierID:   a.CourierID,
		Status:      a.Status.String(),
		OfferedAt:   a.OfferedAt,
		ExpiresAt:   a.ExpiresAt,
		RespondedAt: a.RespondedAt,
	}
	if a.Cause != nil {
		cause := string(*a.Cause)
		result.Cause = &cause
	}
	return result
}
