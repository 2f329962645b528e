package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/metrics"
	"dispatch/internal/service/assignment"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const numberAttempts = 3

// StateMachine ведёт заказ по линии PENDING -> ... -> DELIVERED и проверяет доказательства
// на гейтах PICKED_UP и DELIVERED.
type StateMachine struct {
	log         handlerLogger
	orders      Repository
	assignments AssignmentRepository
	ledger      Ledger
	coordinator Coordinator
	publisher   OrderPublisher
	emitter     EventEmitter
	deadlines   DeadlineFactory
	txManager   TxManager

	pinFailureThreshold int
	now                 func() time.Time
	newPIN              func() (string, error)
}

func New(
	log handlerLogger,
	orders Repository,
	assignments AssignmentRepository,
	ledger Ledger,
	coordinator Coordinator,
	publisher OrderPublisher,
	emitter EventEmitter,
	deadlines DeadlineFactory,
	txManager TxManager,
	pinFailureThreshold int,
) *StateMachine {
	return &StateMachine{
		log:                 log,
		orders:              orders,
		assignments:         assignments,
		ledger:              ledger,
		coordinator:         coordinator,
		publisher:           publisher,
		emitter:             emitter,
		deadlines:           deadlines,
		txManager:           txManager,
		pinFailureThreshold: pinFailureThreshold,
		now:                 time.Now,
		newPIN:              newDeliveryPIN,
	}
}

// CreateOrder принимает полностью рассчитанный заказ от checkout и сохраняет его в PENDING.
func (s *StateMachine) CreateOrder(ctx context.Context, create entities.OrderCreate) (*entities.Order, error) {
	if err := validateCreate(create); err != nil {
		return nil, err
	}

	now := s.now()
	pin, err := s.newPIN()
	if err != nil {
		return nil, err
	}

	order := &entities.Order{
		ID:          uuid.NewString(),
		CustomerID:  create.CustomerID,
		VendorID:    create.VendorID,
		Product:     create.Product,
		Items:       create.Items,
		Total:       orderTotal(create.Items, create.DeliveryFee),
		DeliveryFee: create.DeliveryFee,
		Currency:    create.Currency,
		Pickup:      create.Pickup,
		Dropoff:     create.Dropoff,
		Status:      entities.OrderPending,
		DeliveryPIN: pin,
		Atomic:      create.Atomic,
		SLADeadline: s.deadlines.SLADeadline(create.Atomic, now),
		Timeline:    entities.OrderTimeline{CreatedAt: now},
	}
	if create.ID != nil {
		order.ID = *create.ID
	}

	var created *entities.Order
	for attempt := 1; ; attempt++ {
		if create.Number != nil {
			order.Number = *create.Number
		} else if order.Number, err = newOrderNumber(now); err != nil {
			return nil, err
		}

		created, err = s.orders.Create(ctx, order)
		// сгенерированный номер мог совпасть, пробуем другой
		if errors.Is(err, entities.ErrConflict) && create.Number == nil && create.ID == nil && attempt < numberAttempts {
			order.ID = uuid.NewString()
			continue
		}
		break
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publisher.PublishOrder(created)
	s.emitter.Audit(ctx, entities.AuditEvent{
		Actor:      entities.ActorCustomer,
		Action:     "order.created",
		OrderID:    created.ID,
		Detail:     created.Number,
		OccurredAt: now,
	})
	s.log.Info("order created",
		logger.NewField("order_id", created.ID),
		logger.NewField("number", created.Number),
		logger.NewField("atomic", created.Atomic),
		logger.NewField("total", created.Total.StringFixed(2)),
	)
	return created, nil
}

// Accept - вендор принял заказ.
func (s *StateMachine) Accept(ctx context.Context, orderID string) (*entities.Order, error) {
	return s.advance(ctx, orderID, entities.OrderAccepted)
}

// StartPacking - вендор начал сборку; создаётся пустой чек-лист позиций.
func (s *StateMachine) StartPacking(ctx context.Context, orderID string) (*entities.Order, error) {
	return s.advance(ctx, orderID, entities.OrderPacking)
}

// MarkReady - заказ собран и попадает в очередь без курьера.
func (s *StateMachine) MarkReady(ctx context.Context, orderID string) (*entities.Order, error) {
	return s.advance(ctx, orderID, entities.OrderReadyForPickup)
}

// advance - вендорский шаг вперёд. Повтор уже достигнутого статуса - no-op:
// события вендора доставляются как минимум один раз.
func (s *StateMachine) advance(ctx context.Context, orderID string, target entities.OrderStatusType) (*entities.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrInvalidID
	}

	now := s.now()
	var (
		order   *entities.Order
		changed bool
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.AtOrBeyond(target) {
			return nil
		}
		if !order.Status.CanAdvanceTo(target) {
			return fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, target)
		}

		order, err = s.orders.Update(ctx, entities.OrderModify{
			ID:     orderID,
			Status: pointer.To(target),
			At:     now,
		})
		if err != nil {
			return err
		}
		changed = true

		if target == entities.OrderPacking || target == entities.OrderReadyForPickup {
			return s.ledger.Init(ctx, orderID, len(order.Items))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("move order %s to %s: %w", orderID, target, err)
	}

	if changed {
		s.afterTransition(ctx, order, entities.ActorVendor, now)
	}
	return order, nil
}

// ConfirmPickup - гейт ASSIGNED -> PICKED_UP: принятое назначение и все позиции с
// доказательством. В той же транзакции заказ уходит в SHIPPED. Повтор после успеха - no-op.
func (s *StateMachine) ConfirmPickup(ctx context.Context, orderID, courierID string) (*entities.Order, error) {
	now := s.now()
	var (
		order   *entities.Order
		changed bool
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.AssignedTo(courierID) {
			return entities.ErrCourierMismatch
		}
		if order.Status.AtOrBeyond(entities.OrderPickedUp) {
			return nil
		}
		if order.Status != entities.OrderAssigned {
			return fmt.Errorf("%w: pickup from %s", entities.ErrInvalidTransition, order.Status)
		}

		current, err := s.assignments.GetCurrentByOrder(ctx, orderID, pointer.Get(order.ClaimToken))
		if err != nil {
			return err
		}
		if current.Status != entities.AssignmentAccepted {
			return fmt.Errorf("%w: assignment is %s", entities.ErrInvalidTransition, current.Status)
		}

		if err := s.ledger.PickupGate(ctx, order); err != nil {
			return err
		}

		for _, status := range []entities.OrderStatusType{entities.OrderPickedUp, entities.OrderShipped} {
			order, err = s.orders.Update(ctx, entities.OrderModify{
				ID:     orderID,
				Status: pointer.To(status),
				At:     now,
			})
			if err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm pickup of order %s: %w", orderID, err)
	}

	if changed {
		s.emitter.Notify(ctx, entities.Notification{
			Type:       entities.NotificationOrderPickedUp,
			OrderID:    orderID,
			CourierID:  courierID,
			CustomerID: order.CustomerID,
			OccurredAt: now,
		})
		s.afterTransition(ctx, order, entities.ActorCourier, now)
	}
	return order, nil
}

// ConfirmDelivery - гейт SHIPPED -> DELIVERED: PIN клиента или фото вручения.
// Неверный PIN не меняет статус, но счётчик попыток фиксируется; на пороге
// диспетчер получает сигнал о возможном споре.
func (s *StateMachine) ConfirmDelivery(
	ctx context.Context,
	orderID, courierID string,
	input entities.DeliveryProofInput,
) (*entities.Order, error) {
	proof, err := deliveryProof(courierID, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		order    *entities.Order
		released *assignment.Released
		changed  bool
		failures int
	)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.AssignedTo(courierID) {
			return entities.ErrCourierMismatch
		}
		if order.Status == entities.OrderDelivered {
			return nil
		}
		if order.Status != entities.OrderShipped {
			return fmt.Errorf("%w: delivery from %s", entities.ErrInvalidTransition, order.Status)
		}

		if proof.Method == entities.ProofPIN && !pinMatches(order.DeliveryPIN, input.PIN) {
			failures = order.FailedPINAttempts + 1
			_, err = s.orders.Update(ctx, entities.OrderModify{
				ID:                orderID,
				At:                now,
				FailedPINAttempts: pointer.To(failures),
			})
			return err
		}

		if _, err := s.ledger.MarkDelivery(ctx, order, proof); err != nil {
			return err
		}

		order, err = s.orders.Update(ctx, entities.OrderModify{
			ID:     orderID,
			Status: pointer.To(entities.OrderDelivered),
			At:     now,
		})
		if err != nil {
			return err
		}

		released, err = s.coordinator.CompleteTx(ctx, order)
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("confirm delivery of order %s: %w", orderID, err)
	}

	if failures > 0 {
		s.wrongPIN(ctx, order, courierID, failures, now)
		return nil, fmt.Errorf("confirm delivery of order %s: %w: attempt %d",
			orderID, entities.ErrInvalidDeliveryProof, failures)
	}

	if changed {
		s.coordinator.Apply(ctx, released)
		s.emitter.Notify(ctx, entities.Notification{
			Type:       entities.NotificationOrderDelivered,
			OrderID:    orderID,
			CourierID:  courierID,
			CustomerID: order.CustomerID,
			Attributes: map[string]string{"proof": string(proof.Method)},
			OccurredAt: now,
		})
		s.afterTransition(ctx, order, entities.ActorCourier, now)
	}
	return order, nil
}

func (s *StateMachine) wrongPIN(ctx context.Context, order *entities.Order, courierID string, failures int, now time.Time) {
	metrics.DeliveryPINFailuresTotal.Inc()
	s.log.Warn("wrong delivery pin",
		logger.NewField("order_id", order.ID),
		logger.NewField("courier_id", courierID),
		logger.NewField("attempt", failures),
	)

	if s.pinFailureThreshold <= 0 || failures != s.pinFailureThreshold {
		return
	}
	s.emitter.Notify(ctx, entities.Notification{
		Type:       entities.NotificationDeliveryDisputeSuspected,
		OrderID:    order.ID,
		CourierID:  courierID,
		CustomerID: order.CustomerID,
		Attributes: map[string]string{"failed_pin_attempts": strconv.Itoa(failures)},
		OccurredAt: now,
	})
	s.emitter.Audit(ctx, entities.AuditEvent{
		Actor:      entities.ActorSystem,
		Action:     "delivery.dispute_suspected",
		OrderID:    order.ID,
		CourierID:  courierID,
		Detail:     strconv.Itoa(failures) + " failed pin attempts",
		OccurredAt: now,
	})
}

func deliveryProof(courierID string, input entities.DeliveryProofInput) (entities.DeliveryProof, error) {
	pin := strings.TrimSpace(input.PIN)
	photo := strings.TrimSpace(input.PhotoRef)

	switch {
	case pin != "":
		return entities.DeliveryProof{CourierID: courierID, Method: entities.ProofPIN, PhotoRef: photo}, nil
	case photo != "":
		return entities.DeliveryProof{CourierID: courierID, Method: entities.ProofPhoto, PhotoRef: photo}, nil
	default:
		return entities.DeliveryProof{}, fmt.Errorf("%w: pin or photo required", entities.ErrInvalidDeliveryProof)
	}
}

// Cancel - внешняя отмена от PENDING до ASSIGNED. Назначенный заказ освобождает курьера
// через общую процедуру освобождения. Повторная отмена - no-op.
func (s *StateMachine) Cancel(ctx context.Context, orderID, actor, reason string) (*entities.Order, error) {
	now := s.now()
	var (
		order    *entities.Order
		released *assignment.Released
		changed  bool
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == entities.OrderCancelled {
			return nil
		}
		if !order.Status.Cancellable() {
			return fmt.Errorf("%w: cannot cancel %s order", entities.ErrInvalidTransition, order.Status)
		}

		if order.Status == entities.OrderAssigned {
			released, err = s.coordinator.ReleaseTx(ctx, order, entities.ReleaseCancelled)
			if err != nil {
				return err
			}
		}

		order, err = s.orders.Update(ctx, entities.OrderModify{
			ID:           orderID,
			Status:       pointer.To(entities.OrderCancelled),
			At:           now,
			ClaimToken:   pointer.To[*string](nil),
			CancelReason: pointer.To(reason),
		})
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	if released != nil {
		s.coordinator.Apply(ctx, released)
	}
	if changed {
		s.afterTransition(ctx, order, actor, now)
	}
	return order, nil
}

func (s *StateMachine) Get(ctx context.Context, orderID string) (*entities.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return order, nil
}

func (s *StateMachine) afterTransition(ctx context.Context, order *entities.Order, actor string, now time.Time) {
	s.publisher.PublishOrder(order)
	s.emitter.Audit(ctx, entities.AuditEvent{
		Actor:      actor,
		Action:     "order." + order.Status.String(),
		OrderID:    order.ID,
		CourierID:  pointer.Get(order.CourierID),
		OccurredAt: now,
	})
	s.log.Info("order transitioned",
		logger.NewField("order_id", order.ID),
		logger.NewField("status", order.Status),
		logger.NewField("actor", actor),
	)
}

func orderTotal(items []entities.LineItem, fee decimal.Decimal) decimal.Decimal {
	total := fee
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
