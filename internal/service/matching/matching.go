package matching

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"dispatch/internal/entities"
)

const MaxLimit = 100

type Matcher struct {
	fleet Fleet
}

func New(fleet Fleet) *Matcher {
	return &Matcher{fleet: fleet}
}

// FindNearby возвращает ONLINE-курьеров в радиусе от точки: ближние первыми,
// при равном расстоянии - со свежим пингом. Ничего не резервирует.
func (m *Matcher) FindNearby(
	ctx context.Context,
	origin entities.Coordinate,
	radiusKm float64,
	limit int,
) ([]entities.Candidate, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radiusKm)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	limit = min(limit, MaxLimit)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fleet := m.fleet.Snapshot(entities.CourierFilter{
		Statuses: []entities.CourierStatusType{entities.CourierOnline},
	})

	candidates := make([]entities.Candidate, 0, len(fleet))
	for _, c := range fleet {
		// курьер без координаты ещё не пинговал, ранжировать его не по чему
		if c.Coordinate == nil || c.LastPingAt == nil {
			continue
		}
		distance := entities.DistanceKm(origin, *c.Coordinate)
		if distance > radiusKm {
			continue
		}
		candidates = append(candidates, entities.Candidate{
			CourierID:  c.CourierID,
			DistanceKm: distance,
			ETA:        eta(distance, entities.CourierTransportType(c.TransportType)),
			LastPingAt: *c.LastPingAt,
		})
	}

	slices.SortFunc(candidates, compareCandidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func compareCandidates(a, b entities.Candidate) int {
	if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
		return c
	}
	// свежий пинг выше
	if c := b.LastPingAt.Compare(a.LastPingAt); c != 0 {
		return c
	}
	return cmp.Compare(a.CourierID, b.CourierID)
}

func eta(distanceKm float64, transport entities.CourierTransportType) time.Duration {
	hours := distanceKm / transport.SpeedKmh()
	return time.Duration(hours * float64(time.Hour)).Round(time.Second)
}
