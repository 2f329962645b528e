package memory

import (
	"context"
	"slices"

	"dispatch/internal/entities"
)

type Verification struct {
	s *Store
}

func (r *Verification) Init(ctx context.Context, orderID string, itemCount int) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.items[orderID]; ok {
		return nil
	}
	items := make([]entities.VerificationItem, itemCount)
	for i := range items {
		items[i] = entities.VerificationItem{OrderID: orderID, LineIndex: i}
	}
	r.s.items[orderID] = items
	return nil
}

func (r *Verification) MarkItem(ctx context.Context, item entities.VerificationItem) (*entities.VerificationItem, error) {
	defer r.s.lock(ctx)()

	items, ok := r.s.items[item.OrderID]
	if !ok || item.LineIndex < 0 || item.LineIndex >= len(items) {
		return nil, entities.ErrLineItemOutOfRange
	}

	// копия: снимок транзакции держит старый срез
	items = slices.Clone(items)
	item.Checked = true
	items[item.LineIndex] = item
	r.s.items[item.OrderID] = items

	return &item, nil
}

func (r *Verification) Get(ctx context.Context, orderID string) (*entities.VerificationRecord, error) {
	defer r.s.lock(ctx)()

	record := &entities.VerificationRecord{
		OrderID: orderID,
		Items:   slices.Clone(r.s.items[orderID]),
	}
	if proof, ok := r.s.proofs[orderID]; ok {
		record.Delivery = &proof
	}
	return record, nil
}

func (r *Verification) SaveDeliveryProof(ctx context.Context, proof entities.DeliveryProof) (bool, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.proofs[proof.OrderID]; ok {
		return false, nil
	}
	r.s.proofs[proof.OrderID] = proof
	return true, nil
}
