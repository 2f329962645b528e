package fleet_sync

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const syncConcurrency = 8

type Service interface {
	GetCouriers(ctx context.Context, filter entities.CourierFilter) ([]entities.Courier, error)
	SyncProfile(ctx context.Context, id string) (*entities.Courier, error)
}

type Store interface {
	ReconcileCourier(courier entities.Courier) bool
}

// FleetSync сверяет живые ячейки курьеров с хранилищем и, если подключён fleet-сервис,
// подтягивает из него изменения профилей.
type FleetSync struct {
	log          logger.Logger
	service      Service
	store        Store
	interval     time.Duration
	syncProfiles bool
}

func NewFleetSync(log logger.Logger, service Service, store Store, interval time.Duration, syncProfiles bool) *FleetSync {
	return &FleetSync{
		log:          log,
		service:      service,
		store:        store,
		interval:     interval,
		syncProfiles: syncProfiles,
	}
}

func (f *FleetSync) TTL() time.Duration {
	return f.interval
}

func (f *FleetSync) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, f.interval)
	defer cancel()

	couriers, err := f.service.GetCouriers(ctxWithTimeout, entities.CourierFilter{})
	if err != nil {
		return err
	}

	var stale, failed atomic.Int64

	group, groupCtx := errgroup.WithContext(ctxWithTimeout)
	group.SetLimit(syncConcurrency)
	for _, courier := range couriers {
		group.Go(func() error {
			if f.syncProfiles {
				updated, err := f.service.SyncProfile(groupCtx, courier.ID)
				switch {
				case err == nil:
					courier = *updated
				case errors.Is(err, entities.ErrCourierNotFound):
					// во fleet-домене курьера нет, остаётся локальный профиль
				case groupCtx.Err() != nil:
					return groupCtx.Err()
				default:
					failed.Add(1)
					f.log.Warn("courier profile sync failed",
						logger.NewField("courier_id", courier.ID),
						logger.NewField("error", err),
					)
				}
			}
			if !f.store.ReconcileCourier(courier) {
				stale.Add(1)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	if stale.Load() > 0 || failed.Load() > 0 {
		f.log.With(
			logger.NewField("couriers", len(couriers)),
			logger.NewField("stale_skipped", stale.Load()),
			logger.NewField("profile_failures", failed.Load()),
		).Info("fleet sync")
	}

	return nil
}

func (f *FleetSync) Info() string {
	return "fleet sync"
}
