package sla_deadline

import (
	"time"

	"dispatch/internal/pkg/config"
)

type DeadlineFactory struct {
	slaStandard    time.Duration
	slaAtomic      time.Duration
	acceptStandard time.Duration
	acceptAtomic   time.Duration
}

func New(cfg *config.Dispatch) *DeadlineFactory {
	return &DeadlineFactory{
		slaStandard:    cfg.SLAStandard,
		slaAtomic:      cfg.SLAAtomic,
		acceptStandard: cfg.AcceptTimeout,
		acceptAtomic:   cfg.AtomicAcceptTimeout,
	}
}

// SLADeadline - крайний срок доставки; atomic-заказы живут под ужатым SLA.
func (f *DeadlineFactory) SLADeadline(atomic bool, createdAt time.Time) time.Time {
	if atomic {
		return createdAt.Add(f.slaAtomic)
	}
	return createdAt.Add(f.slaStandard)
}

// AcceptDeadline - до какого момента курьер должен ответить на предложение.
func (f *DeadlineFactory) AcceptDeadline(atomic bool, offeredAt time.Time) time.Time {
	if atomic && f.acceptAtomic > 0 {
		return offeredAt.Add(f.acceptAtomic)
	}
	return offeredAt.Add(f.acceptStandard)
}
