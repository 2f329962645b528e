package heartbeat_monitor

import (
	"context"
	"time"

	"dispatch/pkg/logger"
)

type Service interface {
	ReleaseSilentCouriers(ctx context.Context) (int, error)
}

// HeartbeatMonitor переводит в OFFLINE курьеров, переставших присылать пинги.
type HeartbeatMonitor struct {
	log      logger.Logger
	service  Service
	interval time.Duration
}

func NewHeartbeatMonitor(log logger.Logger, service Service, interval time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		log:      log,
		service:  service,
		interval: interval,
	}
}

func (h *HeartbeatMonitor) TTL() time.Duration {
	return h.interval
}

func (h *HeartbeatMonitor) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	released, err := h.service.ReleaseSilentCouriers(ctxWithTimeout)

	if released > 0 {
		h.log.With(
			logger.NewField("silent_couriers", released),
		).Info("heartbeat monitor")
	}

	return err
}

func (h *HeartbeatMonitor) Info() string {
	return "heartbeat monitor"
}
