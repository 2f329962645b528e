package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/metrics"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
	"github.com/google/uuid"
)

const (
	expireTimeout   = 10 * time.Second
	overdueBatch    = 100
	defaultQueueCap = 50
)

// Coordinator - единственная точка захвата заказа курьером. Захват - CAS по claim-токену
// заказа внутри одной транзакции с созданием назначения и переводом курьера в BUSY.
type Coordinator struct {
	log         handlerLogger
	orders      OrderRepository
	couriers    CourierRepository
	assignments Repository
	fleet       Fleet
	publisher   OrderPublisher
	emitter     EventEmitter
	deadlines   DeadlineFactory
	txManager   TxManager
	timers      *TimerRegistry

	heartbeatTimeout time.Duration
	now              func() time.Time
}

func New(
	log handlerLogger,
	orders OrderRepository,
	couriers CourierRepository,
	assignments Repository,
	fleet Fleet,
	publisher OrderPublisher,
	emitter EventEmitter,
	deadlines DeadlineFactory,
	txManager TxManager,
	heartbeatTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		log:              log,
		orders:           orders,
		couriers:         couriers,
		assignments:      assignments,
		fleet:            fleet,
		publisher:        publisher,
		emitter:          emitter,
		deadlines:        deadlines,
		txManager:        txManager,
		timers:           NewTimerRegistry(),
		heartbeatTimeout: heartbeatTimeout,
		now:              time.Now,
	}
}

// Offer предлагает готовый заказ курьеру. Из двух конкурентных предложений одного
// заказа успешно ровно одно, второе получает ErrAlreadyClaimed.
func (s *Coordinator) Offer(ctx context.Context, orderID, courierID string) (*entities.Assignment, error) {
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(courierID) == "" {
		return nil, ErrInvalidID
	}

	now := s.now()
	var (
		assignment *entities.Assignment
		order      *entities.Order
		courier    *entities.Courier
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.Claim(ctx, entities.OrderClaim{
			OrderID:   orderID,
			CourierID: courierID,
			Token:     uuid.NewString(),
			At:        now,
		})
		if err != nil {
			return err
		}

		courier, err = s.couriers.GetByIDForUpdate(ctx, courierID)
		if err != nil {
			return err
		}
		if courier.Status != entities.CourierOnline {
			return fmt.Errorf("%w: courier %s is %s", entities.ErrCourierUnavailable, courierID, courier.Status)
		}

		assignment, err = s.assignments.Create(ctx, entities.Assignment{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			CourierID:  courierID,
			ClaimToken: *order.ClaimToken,
			Status:     entities.AssignmentPendingAccept,
			OfferedAt:  now,
			ExpiresAt:  s.deadlines.AcceptDeadline(order.Atomic, now),
		})
		if err != nil {
			return err
		}

		courier, err = s.couriers.Update(ctx, entities.CourierModify{
			ID:            pointer.To(courierID),
			Status:        pointer.To(entities.CourierBusy),
			ActiveOrderID: pointer.To(pointer.To(orderID)),
		})
		return err
	})
	metrics.OffersTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		if entities.IsBusinessOutcome(err) {
			s.log.Warn("offer refused",
				logger.NewField("order_id", orderID),
				logger.NewField("courier_id", courierID),
				logger.NewField("reason", entities.ErrorCode(err)),
			)
		}
		return nil, fmt.Errorf("offer order %s: %w", orderID, err)
	}

	s.scheduleExpiry(assignment)
	s.fleet.ApplyCourier(*courier)
	s.publisher.PublishOrder(order)

	s.emitter.Notify(ctx, entities.Notification{
		Type:       entities.NotificationOrderAssigned,
		OrderID:    orderID,
		CourierID:  courierID,
		CustomerID: order.CustomerID,
		Attributes: map[string]string{
			"assignment_id": assignment.ID,
			"expires_at":    assignment.ExpiresAt.UTC().Format(time.RFC3339),
		},
		OccurredAt: now,
	})
	s.emitter.Audit(ctx, entities.AuditEvent{
		Actor:      entities.ActorDispatcher,
		Action:     "assignment.offered",
		OrderID:    orderID,
		CourierID:  courierID,
		Detail:     assignment.ID,
		OccurredAt: now,
	})

	s.log.Info("order offered",
		logger.NewField("order_id", orderID),
		logger.NewField("courier_id", courierID),
		logger.NewField("assignment_id", assignment.ID),
		logger.NewField("expires_at", assignment.ExpiresAt),
	)
	return assignment, nil
}

// Respond принимает ответ курьера. Повторный ACCEPT и повторный REJECT - no-op.
// Ответ после истечения окна возвращает ErrAssignmentExpired и сам освобождает заказ.
func (s *Coordinator) Respond(
	ctx context.Context,
	assignmentID, courierID string,
	decision entities.Decision,
) (*entities.Assignment, error) {
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}

	now := s.now()
	var (
		assignment *entities.Assignment
		released   *Released
		late       bool
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		assignment, err = s.assignments.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.CourierID != courierID {
			return entities.ErrCourierMismatch
		}

		switch assignment.Status {
		case entities.AssignmentAccepted:
			if decision == entities.DecisionAccept {
				return nil
			}
			return fmt.Errorf("%w: assignment already accepted", entities.ErrInvalidTransition)
		case entities.AssignmentRejected:
			if decision == entities.DecisionReject {
				return nil
			}
			return entities.ErrAssignmentExpired
		case entities.AssignmentPendingAccept:
		default:
			return entities.ErrAssignmentExpired
		}

		if assignment.Overdue(now) {
			late = true
			released, err = s.releaseAssignment(ctx, assignment, entities.ReleaseExpired)
			return err
		}

		if decision == entities.DecisionReject {
			released, err = s.releaseAssignment(ctx, assignment, entities.ReleaseRejected)
			if err == nil {
				assignment = released.Assignment
			}
			return err
		}

		assignment, err = s.assignments.Update(ctx, entities.AssignmentModify{
			ID:          assignmentID,
			Status:      pointer.To(entities.AssignmentAccepted),
			RespondedAt: pointer.To(now),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("respond to assignment %s: %w", assignmentID, err)
	}

	if released != nil {
		s.Apply(ctx, released)
	}
	if late {
		return nil, fmt.Errorf("respond to assignment %s: %w", assignmentID, entities.ErrAssignmentExpired)
	}

	if decision == entities.DecisionAccept {
		s.timers.Cancel(assignmentID)
		s.emitter.Audit(ctx, entities.AuditEvent{
			Actor:      entities.ActorCourier,
			Action:     "assignment.accepted",
			OrderID:    assignment.OrderID,
			CourierID:  courierID,
			Detail:     assignmentID,
			OccurredAt: now,
		})
		s.log.Info("assignment accepted",
			logger.NewField("assignment_id", assignmentID),
			logger.NewField("order_id", assignment.OrderID),
			logger.NewField("courier_id", courierID),
		)
	}
	return assignment, nil
}

// Expire - колбэк таймера окна принятия. Уже отвеченное назначение не трогается.
func (s *Coordinator) Expire(ctx context.Context, assignmentID string) error {
	now := s.now()
	var released *Released
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		assignment, err := s.assignments.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.Status != entities.AssignmentPendingAccept {
			return nil
		}
		if !assignment.Overdue(now) {
			return errNotYetDue
		}

		released, err = s.releaseAssignment(ctx, assignment, entities.ReleaseExpired)
		return err
	})
	if errors.Is(err, errNotYetDue) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("expire assignment %s: %w", assignmentID, err)
	}

	if released != nil {
		s.Apply(ctx, released)
	}
	return nil
}

var errNotYetDue = errors.New("assignment is not yet due")

// ExpireOverdue снимает просроченные назначения, чьи таймеры потерялись (рестарт процесса).
func (s *Coordinator) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := s.assignments.ListOverdue(ctx, s.now(), overdueBatch)
	if err != nil {
		return 0, fmt.Errorf("list overdue assignments: %w", err)
	}

	var errs []error
	expired := 0
	for _, a := range overdue {
		if err := s.Expire(ctx, a.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		expired++
	}
	return expired, errors.Join(errs...)
}

// ListUnassigned - очередь заказов без курьера: atomic первыми, затем по SLA.
func (s *Coordinator) ListUnassigned(ctx context.Context, limit uint64) ([]entities.Order, error) {
	if limit == 0 {
		limit = defaultQueueCap
	}
	orders, err := s.orders.List(ctx, entities.OrderFilter{
		Statuses: []entities.OrderStatusType{entities.OrderReadyForPickup},
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list unassigned orders: %w", err)
	}
	return orders, nil
}

// Close снимает все таймеры. Незакрытые назначения подберёт ExpireOverdue после рестарта.
func (s *Coordinator) Close() {
	s.timers.Stop()
}

func (s *Coordinator) scheduleExpiry(a *entities.Assignment) {
	id := a.ID
	s.timers.Schedule(id, a.ExpiresAt.Sub(s.now()), func() {
		ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
		defer cancel()

		if err := s.Expire(ctx, id); err != nil {
			s.log.Error("assignment expiry failed",
				logger.NewField("assignment_id", id),
				logger.NewField("error", err),
			)
		}
	})
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := entities.ErrorCode(err); code != "" {
		return code
	}
	return "error"
}
