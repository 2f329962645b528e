package memory

import (
	"context"
	"slices"
	"time"

	"dispatch/internal/entities"
)

type Assignments struct {
	s *Store
}

func (r *Assignments) Create(ctx context.Context, a entities.Assignment) (*entities.Assignment, error) {
	defer r.s.lock(ctx)()

	for _, existing := range r.s.assignments {
		if existing.OrderID == a.OrderID && existing.Status == entities.AssignmentPendingAccept {
			return nil, entities.ErrAlreadyClaimed
		}
	}
	r.s.assignments[a.ID] = a

	return &a, nil
}

func (r *Assignments) GetByID(ctx context.Context, id string) (*entities.Assignment, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, entities.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r *Assignments) GetCurrentByOrder(ctx context.Context, orderID, claimToken string) (*entities.Assignment, error) {
	defer r.s.lock(ctx)()

	for _, a := range r.s.assignments {
		if a.OrderID == orderID && a.ClaimToken == claimToken {
			return &a, nil
		}
	}
	return nil, entities.ErrAssignmentNotFound
}

func (r *Assignments) Update(ctx context.Context, m entities.AssignmentModify) (*entities.Assignment, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.assignments[m.ID]
	if !ok {
		return nil, entities.ErrAssignmentNotFound
	}
	if m.Status != nil {
		a.Status = *m.Status
	}
	if m.Cause != nil {
		cause := *m.Cause
		a.Cause = &cause
	}
	if m.RespondedAt != nil {
		at := *m.RespondedAt
		a.RespondedAt = &at
	}
	r.s.assignments[a.ID] = a

	return &a, nil
}

func (r *Assignments) ListOverdue(ctx context.Context, now time.Time, limit uint64) ([]entities.Assignment, error) {
	defer r.s.lock(ctx)()

	var result []entities.Assignment
	for _, a := range r.s.assignments {
		if a.Overdue(now) {
			result = append(result, a)
		}
	}
	slices.SortFunc(result, func(a, b entities.Assignment) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	if limit > 0 && uint64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}
