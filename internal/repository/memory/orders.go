package memory

import (
	"cmp"
	"context"
	"slices"

	"dispatch/internal/entities"
)

type Orders struct {
	s *Store
}

func (r *Orders) Create(ctx context.Context, o *entities.Order) (*entities.Order, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.orders[o.ID]; ok {
		return nil, entities.ErrConflict
	}
	for _, existing := range r.s.orders {
		if existing.Number == o.Number {
			return nil, entities.ErrConflict
		}
	}

	stored := cloneOrder(*o)
	stored.Version = 1
	stored.UpdatedAt = stored.Timeline.CreatedAt
	r.s.orders[stored.ID] = stored

	out := cloneOrder(stored)
	return &out, nil
}

func (r *Orders) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, entities.ErrOrderNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *Orders) GetByIDForUpdate(ctx context.Context, id string) (*entities.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *Orders) Claim(ctx context.Context, claim entities.OrderClaim) (*entities.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.orders[claim.OrderID]
	if !ok {
		return nil, entities.ErrOrderNotFound
	}
	if o.ClaimToken != nil || o.Status.IsActiveDelivery() {
		return nil, entities.ErrAlreadyClaimed
	}
	if o.Status != entities.OrderReadyForPickup {
		return nil, entities.ErrOrderNotReady
	}

	token := claim.Token
	courierID := claim.CourierID
	o.ClaimToken = &token
	o.CourierID = &courierID
	o.Status = entities.OrderAssigned
	o.Timeline.Stamp(entities.OrderAssigned, claim.At)
	o.UpdatedAt = claim.At
	o.Version++
	r.s.orders[o.ID] = o

	out := cloneOrder(o)
	return &out, nil
}

func (r *Orders) Update(ctx context.Context, m entities.OrderModify) (*entities.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.orders[m.ID]
	if !ok {
		return nil, entities.ErrOrderNotFound
	}

	if m.Status != nil {
		o.Status = *m.Status
		o.Timeline.Stamp(*m.Status, m.At)
	}
	if m.CourierID != nil {
		o.CourierID = *m.CourierID
	}
	if m.ClaimToken != nil {
		o.ClaimToken = *m.ClaimToken
	}
	if m.FailedPINAttempts != nil {
		o.FailedPINAttempts = *m.FailedPINAttempts
	}
	if m.CancelReason != nil {
		o.CancelReason = *m.CancelReason
	}
	o.UpdatedAt = m.At
	o.Version++
	r.s.orders[o.ID] = o

	out := cloneOrder(o)
	return &out, nil
}

func (r *Orders) List(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, error) {
	defer r.s.lock(ctx)()

	result := make([]entities.Order, 0)
	for _, o := range r.s.orders {
		if len(filter.Statuses) == 0 || slices.Contains(filter.Statuses, o.Status) {
			result = append(result, cloneOrder(o))
		}
	}

	slices.SortFunc(result, compareQueue)
	if filter.Limit > 0 && uint64(len(result)) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// compareQueue повторяет ORDER BY очереди в postgres: atomic DESC, sla_deadline, ready_at NULLS LAST, id.
func compareQueue(a, b entities.Order) int {
	if a.Atomic != b.Atomic {
		if a.Atomic {
			return -1
		}
		return 1
	}
	if c := a.SLADeadline.Compare(b.SLADeadline); c != 0 {
		return c
	}
	switch {
	case a.Timeline.ReadyAt == nil && b.Timeline.ReadyAt != nil:
		return 1
	case a.Timeline.ReadyAt != nil && b.Timeline.ReadyAt == nil:
		return -1
	case a.Timeline.ReadyAt != nil && b.Timeline.ReadyAt != nil:
		if c := a.Timeline.ReadyAt.Compare(*b.Timeline.ReadyAt); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

func cloneOrder(o entities.Order) entities.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
