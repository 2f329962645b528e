package assignment

import (
	"time"

	"dispatch/internal/entities"
)

type AssignmentDB struct {
	ID          string
	OrderID     string
	CourierID   string
	ClaimToken  string
	Status      string
	Cause       *string
	OfferedAt   time.Time
	ExpiresAt   time.Time
	RespondedAt *time.Time
}

const assignmentColumns = "id, order_id, courier_id, claim_token, status, cause, offered_at, expires_at, responded_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row scanner) (AssignmentDB, error) {
	var a AssignmentDB
	err := row.Scan(
		&a.ID,
		&a.OrderID,
		&a.CourierID,
		&a.ClaimToken,
		&a.Status,
		&a.Cause,
		&a.OfferedAt,
		&a.ExpiresAt,
		&a.RespondedAt,
	)
	return a, err
}

func ToDomain(a *AssignmentDB) *entities.Assignment {
	if a == nil {
		return nil
	}

	out := &entities.Assignment{
		ID:          a.ID,
		OrderID:     a.OrderID,
		CourierID:   a.CourierID,
		ClaimToken:  a.ClaimToken,
		Status:      entities.AssignmentStatusType(a.Status),
		OfferedAt:   a.OfferedAt,
		ExpiresAt:   a.ExpiresAt,
		RespondedAt: a.RespondedAt,
	}
	if a.Cause != nil {
		cause := entities.ReleaseCause(*a.Cause)
		out.Cause = &cause
	}
	return out
}
