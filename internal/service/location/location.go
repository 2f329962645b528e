package location

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/metrics"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
)

type Store struct {
	log       handlerLogger
	couriers  CourierRepository
	registry  Registry
	publisher Publisher
	limiter   PingLimiter
	txManager TxManager
	maxSkew   time.Duration
	now       func() time.Time
	startedAt time.Time

	mu    sync.RWMutex
	cells map[string]*cell
}

func New(
	log handlerLogger,
	couriers CourierRepository,
	registry Registry,
	publisher Publisher,
	limiter PingLimiter,
	txManager TxManager,
	maxSkew time.Duration,
) *Store {
	return &Store{
		log:       log,
		couriers:  couriers,
		registry:  registry,
		publisher: publisher,
		limiter:   limiter,
		txManager: txManager,
		maxSkew:   maxSkew,
		now:       time.Now,
		startedAt: time.Now(),
		cells:     make(map[string]*cell),
	}
}

// UpdateLocation принимает пинг курьера. Пинги разных курьеров обрабатываются
// параллельно, запись одного курьера - CAS в его ячейке.
//
// Время устройства упорядочивает пинги и не может опережать сервер больше чем на maxSkew.
// Живость курьера считается по времени приёма.
func (s *Store) UpdateLocation(
	ctx context.Context,
	courierID string,
	coordinate entities.Coordinate,
	ts time.Time,
) (entities.CourierPosition, error) {
	if err := coordinate.Validate(); err != nil {
		metrics.LocationPingsTotal.WithLabelValues("invalid").Inc()
		return entities.CourierPosition{}, err
	}
	receivedAt := s.now()
	if s.maxSkew > 0 && ts.After(receivedAt.Add(s.maxSkew)) {
		metrics.LocationPingsTotal.WithLabelValues("invalid").Inc()
		return entities.CourierPosition{}, fmt.Errorf("%w: %s ahead of server time",
			entities.ErrInvalidTimestamp, ts.Sub(receivedAt).Round(time.Second))
	}
	if s.limiter != nil && !s.limiter.Allow(courierID) {
		metrics.LocationPingsTotal.WithLabelValues("rate_limited").Inc()
		return entities.CourierPosition{}, ErrPingRateLimited
	}

	c, err := s.resolve(ctx, courierID)
	if err != nil {
		metrics.LocationPingsTotal.WithLabelValues("unknown_courier").Inc()
		return entities.CourierPosition{}, err
	}

	c.touch(receivedAt)
	stored, err := c.storePosition(entities.CourierPosition{
		CourierID:  courierID,
		Coordinate: coordinate,
		PingAt:     ts,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		metrics.LocationPingsTotal.WithLabelValues("stale").Inc()
		return stored, err
	}
	metrics.LocationPingsTotal.WithLabelValues("ok").Inc()

	s.publish(c)
	if courier := c.courier.Load(); courier != nil && courier.ActiveOrderID != nil {
		s.publisher.PublishOrderLocation(*courier.ActiveOrderID, coordinate)
	}

	return stored, nil
}

func (s *Store) GetLocation(courierID string) (*entities.Coordinate, bool) {
	pos, ok := s.Position(courierID)
	if !ok {
		return nil, false
	}
	return &pos.Coordinate, true
}

func (s *Store) Position(courierID string) (entities.CourierPosition, bool) {
	c := s.lookup(courierID)
	if c == nil {
		return entities.CourierPosition{}, false
	}
	pos := c.position.Load()
	if pos == nil {
		return entities.CourierPosition{}, false
	}
	return *pos, true
}

// SetAvailability меняет доступность курьера.
//
// ONLINE запрещён, пока курьер держит заказ, и из SUSPENDED (выход только в OFFLINE).
// OFFLINE во время доставки не снимает заказ: курьер остаётся BUSY с флагом для
// диспетчера, а OFFLINE применяется при освобождении. BUSY напрямую не ставится.
func (s *Store) SetAvailability(
	ctx context.Context,
	courierID string,
	status entities.CourierStatusType,
) (*entities.Courier, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if status == entities.CourierBusy {
		return nil, fmt.Errorf("%w: busy is set only by assignment", entities.ErrInvalidTransition)
	}

	if _, err := s.registry.Ensure(ctx, courierID); err != nil {
		return nil, err
	}

	var updated *entities.Courier
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.couriers.GetByIDForUpdate(ctx, courierID)
		if err != nil {
			return err
		}

		modify, err := availabilityModify(current, status)
		if err != nil {
			return err
		}
		if modify == nil {
			updated = current
			return nil
		}

		updated, err = s.couriers.Update(ctx, *modify)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}

	if status == entities.CourierOffline && s.limiter != nil {
		s.limiter.Forget(courierID)
	}
	s.ApplyCourier(*updated)

	s.log.Info("courier availability changed",
		logger.NewField("courier_id", courierID),
		logger.NewField("requested", status),
		logger.NewField("status", updated.Status),
		logger.NewField("pending_offline", updated.PendingOffline),
	)
	return updated, nil
}

func availabilityModify(current *entities.Courier, target entities.CourierStatusType) (*entities.CourierModify, error) {
	holdsOrder := current.ActiveOrderID != nil
	modify := &entities.CourierModify{ID: pointer.To(current.ID)}

	switch target {
	case entities.CourierOnline:
		if holdsOrder {
			return nil, fmt.Errorf("%w: courier holds order %s", entities.ErrInvalidTransition, *current.ActiveOrderID)
		}
		if current.Status == entities.CourierSuspended {
			return nil, fmt.Errorf("%w: suspended courier must go offline first", entities.ErrInvalidTransition)
		}
		if current.Status == entities.CourierOnline {
			return nil, nil
		}
		modify.Status = pointer.To(entities.CourierOnline)
		modify.NeedsAttention = pointer.To(false)

	case entities.CourierOffline:
		if holdsOrder {
			if current.PendingOffline {
				return nil, nil
			}
			modify.PendingOffline = pointer.To(true)
			modify.NeedsAttention = pointer.To(true)
			return modify, nil
		}
		if current.Status == entities.CourierOffline {
			return nil, nil
		}
		modify.Status = pointer.To(entities.CourierOffline)

	case entities.CourierSuspended:
		if holdsOrder {
			return nil, fmt.Errorf("%w: courier holds order %s", entities.ErrInvalidTransition, *current.ActiveOrderID)
		}
		if current.Status == entities.CourierSuspended {
			return nil, nil
		}
		modify.Status = pointer.To(entities.CourierSuspended)
	}

	return modify, nil
}

// ApplyCourier зеркалит закоммиченное состояние курьера в ячейку и публикует снимок.
// Вызовы после коммита могут прийти не в порядке коммитов: более старое состояние
// ячейку не откатывает.
func (s *Store) ApplyCourier(courier entities.Courier) {
	s.ReconcileCourier(courier)
}

// ReconcileCourier применяет состояние из хранилища, если оно не старше состояния в ячейке.
func (s *Store) ReconcileCourier(courier entities.Courier) bool {
	c := s.cellFor(courier.ID)
	if !c.storeCourier(&courier) {
		return false
	}
	s.publish(c)
	return true
}

// Snapshot - срез парка по фильтру, отсортированный по id.
func (s *Store) Snapshot(filter entities.CourierFilter) []entities.CourierSnapshot {
	s.mu.RLock()
	cells := make([]*cell, 0, len(s.cells))
	for _, c := range s.cells {
		cells = append(cells, c)
	}
	s.mu.RUnlock()

	result := make([]entities.CourierSnapshot, 0, len(cells))
	for _, c := range cells {
		courier := c.courier.Load()
		if courier == nil || !filter.Match(courier) {
			continue
		}
		if snap, ok := c.snapshot(); ok {
			result = append(result, snap)
		}
	}

	slices.SortFunc(result, func(a, b entities.CourierSnapshot) int {
		return strings.Compare(a.CourierID, b.CourierID)
	})
	return result
}

// CourierSnapshot - снимок одного курьера из живой ячейки.
func (s *Store) CourierSnapshot(courierID string) (entities.CourierSnapshot, bool) {
	c := s.lookup(courierID)
	if c == nil {
		return entities.CourierSnapshot{}, false
	}
	return c.snapshot()
}

// Silent - курьеры в ONLINE/BUSY, от которых сервер не получал пингов дольше timeout.
// До первого пинга отсчёт идёт от старта процесса: позиции не переживают рестарт.
func (s *Store) Silent(timeout time.Duration) []entities.Courier {
	deadline := s.now().Add(-timeout)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []entities.Courier
	for _, c := range s.cells {
		courier := c.courier.Load()
		if courier == nil {
			continue
		}
		if courier.Status != entities.CourierOnline && courier.Status != entities.CourierBusy {
			continue
		}
		if c.lastSeen(s.startedAt).Before(deadline) {
			result = append(result, *courier)
		}
	}
	return result
}

func (s *Store) resolve(ctx context.Context, courierID string) (*cell, error) {
	if c := s.lookup(courierID); c != nil && c.courier.Load() != nil {
		return c, nil
	}

	courier, err := s.registry.Ensure(ctx, courierID)
	if err != nil {
		return nil, err
	}

	c := s.cellFor(courierID)
	c.courier.CompareAndSwap(nil, courier)
	return c, nil
}

func (s *Store) lookup(courierID string) *cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cells[courierID]
}

func (s *Store) cellFor(courierID string) *cell {
	if c := s.lookup(courierID); c != nil {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cells[courierID]
	if !ok {
		c = &cell{}
		s.cells[courierID] = c
	}
	return c
}

// publish берёт номер версии до сборки снимка: снимок с наибольшей версией
// собран после всех записей с меньшими версиями.
func (s *Store) publish(c *cell) {
	version := c.seq.Add(1)
	snap, ok := c.snapshot()
	if !ok {
		return
	}
	s.publisher.PublishCourier(snap, version)
}
