package entities

import "time"

type AssignmentStatusType string

const (
	AssignmentPendingAccept AssignmentStatusType = "pending_accept"
	AssignmentAccepted      AssignmentStatusType = "accepted"
	AssignmentRejected      AssignmentStatusType = "rejected"
	AssignmentExpired       AssignmentStatusType = "expired"
	AssignmentCancelled     AssignmentStatusType = "cancelled"
)

func (s AssignmentStatusType) String() string {
	return string(s)
}

// IsTerminal - PENDING_ACCEPT единственный нетерминальный статус.
func (s AssignmentStatusType) IsTerminal() bool {
	return s != AssignmentPendingAccept
}

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// ReleaseCause - причина освобождения заказа и курьера. Все причины сходятся в одну процедуру.
type ReleaseCause string

const (
	ReleaseRejected      ReleaseCause = "rejected"
	ReleaseExpired       ReleaseCause = "expired"
	ReleaseHeartbeatLost ReleaseCause = "heartbeat_lost"
	ReleaseCancelled     ReleaseCause = "cancelled"
)

func (c ReleaseCause) AssignmentStatus() AssignmentStatusType {
	switch c {
	case ReleaseRejected:
		return AssignmentRejected
	case ReleaseCancelled:
		return AssignmentCancelled
	default:
		return AssignmentExpired
	}
}

type Assignment struct {
	ID          string
	OrderID     string
	CourierID   string
	ClaimToken  string
	Status      AssignmentStatusType
	Cause       *ReleaseCause
	OfferedAt   time.Time
	ExpiresAt   time.Time
	RespondedAt *time.Time
}

func (a *Assignment) Overdue(now time.Time) bool {
	return a.Status == AssignmentPendingAccept && !now.Before(a.ExpiresAt)
}

type AssignmentModify struct {
	ID          string
	Status      *AssignmentStatusType
	Cause       *ReleaseCause
	RespondedAt *time.Time
}
