package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"dispatch/internal/entities"
)

type Couriers struct {
	s *Store
}

func (r *Couriers) Create(ctx context.Context, m entities.CourierModify) (*entities.Courier, error) {
	defer r.s.lock(ctx)()

	if m.ID == nil || m.Name == nil || m.Phone == nil {
		return nil, fmt.Errorf("memory couriers create: id, name and phone are required")
	}
	if _, ok := r.s.couriers[*m.ID]; ok {
		return nil, entities.ErrConflict
	}
	for _, c := range r.s.couriers {
		if *m.Phone != "" && c.Phone == *m.Phone {
			return nil, entities.ErrConflict
		}
	}

	now := time.Now()
	c := entities.Courier{
		ID:            *m.ID,
		TransportType: entities.DefaultTransportType,
		Status:        entities.DefaultStatusType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	applyCourierModify(&c, m)
	r.s.couriers[c.ID] = c

	return &c, nil
}

func (r *Couriers) Update(ctx context.Context, m entities.CourierModify) (*entities.Courier, error) {
	defer r.s.lock(ctx)()

	if m.ID == nil {
		return nil, entities.ErrCourierNotFound
	}
	c, ok := r.s.couriers[*m.ID]
	if !ok {
		return nil, entities.ErrCourierNotFound
	}
	if m.Phone != nil {
		for id, other := range r.s.couriers {
			if *m.Phone != "" && id != c.ID && other.Phone == *m.Phone {
				return nil, entities.ErrConflict
			}
		}
	}

	applyCourierModify(&c, m)
	// то же ограничение, что и в схеме postgres
	if (c.Status == entities.CourierBusy) != (c.ActiveOrderID != nil) {
		return nil, entities.ErrInvalidTransition
	}
	c.UpdatedAt = time.Now()
	r.s.couriers[c.ID] = c

	return &c, nil
}

func (r *Couriers) GetByID(ctx context.Context, id string) (*entities.Courier, error) {
	defer r.s.lock(ctx)()

	c, ok := r.s.couriers[id]
	if !ok {
		return nil, entities.ErrCourierNotFound
	}
	return &c, nil
}

func (r *Couriers) GetByIDForUpdate(ctx context.Context, id string) (*entities.Courier, error) {
	return r.GetByID(ctx, id)
}

func (r *Couriers) List(ctx context.Context, filter entities.CourierFilter) ([]entities.Courier, error) {
	defer r.s.lock(ctx)()

	result := make([]entities.Courier, 0, len(r.s.couriers))
	for _, c := range r.s.couriers {
		if filter.Match(&c) {
			result = append(result, c)
		}
	}
	slices.SortFunc(result, func(a, b entities.Courier) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func applyCourierModify(c *entities.Courier, m entities.CourierModify) {
	if m.Name != nil {
		c.Name = *m.Name
	}
	if m.Phone != nil {
		c.Phone = *m.Phone
	}
	if m.TransportType != nil {
		c.TransportType = *m.TransportType
	}
	if m.Plate != nil {
		c.Plate = *m.Plate
	}
	if m.Hub != nil {
		c.Hub = *m.Hub
	}
	if m.Status != nil {
		c.Status = *m.Status
	}
	if m.ActiveOrderID != nil {
		c.ActiveOrderID = *m.ActiveOrderID
	}
	if m.PendingOffline != nil {
		c.PendingOffline = *m.PendingOffline
	}
	if m.NeedsAttention != nil {
		c.NeedsAttention = *m.NeedsAttention
	}
}
