package assignment_expiry

import (
	"context"
	"time"

	"dispatch/pkg/logger"
)

type Service interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// AssignmentExpiry добирает офферы, чей таймер не сработал: после рестарта процесса
// или если срабатывание потерялось на конфликте транзакции.
type AssignmentExpiry struct {
	log      logger.Logger
	service  Service
	interval time.Duration
}

func NewAssignmentExpiry(log logger.Logger, service Service, interval time.Duration) *AssignmentExpiry {
	return &AssignmentExpiry{
		log:      log,
		service:  service,
		interval: interval,
	}
}

func (a *AssignmentExpiry) TTL() time.Duration {
	return a.interval
}

func (a *AssignmentExpiry) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, a.interval)
	defer cancel()

	expired, err := a.service.ExpireOverdue(ctxWithTimeout)

	if expired > 0 {
		a.log.With(
			logger.NewField("expired_assignments", expired),
		).Info("assignment expiry")
	}

	return err
}

func (a *AssignmentExpiry) Info() string {
	return "assignment expiry"
}
