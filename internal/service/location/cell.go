package location

import (
	"sync/atomic"
	"time"

	"dispatch/internal/entities"
)

// cell - живая ячейка курьера. Координата и состояние лежат в атомарных указателях
// на неизменяемые значения: читатели не берут блокировок, писатель делает CAS.
type cell struct {
	position atomic.Pointer[entities.CourierPosition]
	courier  atomic.Pointer[entities.Courier]
	seq      atomic.Int64
	// seen - время приёма последнего пинга в UnixNano, включая отклонённые как устаревшие
	seen atomic.Int64
}

// storePosition - last-write-wins по времени пинга. Более старый пинг отклоняется,
// повтор того же пинга возвращает сохранённую позицию.
func (c *cell) storePosition(next entities.CourierPosition) (entities.CourierPosition, error) {
	for {
		current := c.position.Load()
		if current != nil {
			if next.PingAt.Before(current.PingAt) {
				return *current, entities.ErrStaleUpdate
			}
			if next.PingAt.Equal(current.PingAt) {
				if next.Coordinate == current.Coordinate {
					return *current, nil
				}
				return *current, entities.ErrStaleUpdate
			}
		}

		if c.position.CompareAndSwap(current, &next) {
			return next, nil
		}
	}
}

func (c *cell) snapshot() (entities.CourierSnapshot, bool) {
	courier := c.courier.Load()
	if courier == nil {
		return entities.CourierSnapshot{}, false
	}

	s := entities.NewCourierSnapshot(courier)
	if pos := c.position.Load(); pos != nil {
		coord := pos.Coordinate
		pingAt := pos.PingAt
		s.Coordinate = &coord
		s.LastPingAt = &pingAt
	}
	return s, true
}

// touch отмечает приём пинга. Часы устройства в этом не участвуют.
func (c *cell) touch(at time.Time) {
	nanos := at.UnixNano()
	for {
		current := c.seen.Load()
		if current >= nanos || c.seen.CompareAndSwap(current, nanos) {
			return
		}
	}
}

// lastSeen - время приёма последнего пинга или fallback, если курьер ещё не пинговал.
func (c *cell) lastSeen(fallback time.Time) time.Time {
	if nanos := c.seen.Load(); nanos != 0 {
		return time.Unix(0, nanos)
	}
	return fallback
}

// storeCourier применяет состояние курьера, если оно не старше состояния в ячейке.
func (c *cell) storeCourier(next *entities.Courier) bool {
	for {
		current := c.courier.Load()
		if current != nil && next.UpdatedAt.Before(current.UpdatedAt) {
			return false
		}
		if c.courier.CompareAndSwap(current, next) {
			return true
		}
	}
}
