package assignment

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/metrics"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
)

// Released - итог освобождения заказа или курьера. Применяется через Apply после коммита.
type Released struct {
	Cause      entities.ReleaseCause
	OrderID    string
	CourierID  string
	Assignment *entities.Assignment
	Courier    *entities.Courier
	Order      *entities.Order
}

// ReleaseTx - единственная процедура отката назначения: отказ, истечение окна, потеря
// связи с курьером и отмена заказа сходятся сюда. Выполняется внутри транзакции
// вызывающего, заказ должен быть уже заблокирован.
//
// Назначение закрывается с причиной, курьер освобождается (ONLINE, либо OFFLINE при
// отложенном уходе или потере связи), заказ возвращается в READY_FOR_PICKUP. При отмене
// статус заказа выставляет вызывающий.
func (s *Coordinator) ReleaseTx(
	ctx context.Context,
	order *entities.Order,
	cause entities.ReleaseCause,
) (*Released, error) {
	if order.ClaimToken == nil || order.CourierID == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotClaimed, order.ID)
	}
	if order.Status != entities.OrderAssigned {
		return nil, fmt.Errorf("%w: order %s is %s", entities.ErrInvalidTransition, order.ID, order.Status)
	}

	now := s.now()
	released := &Released{
		Cause:     cause,
		OrderID:   order.ID,
		CourierID: *order.CourierID,
	}

	assignment, err := s.assignments.GetCurrentByOrder(ctx, order.ID, *order.ClaimToken)
	switch {
	case err == nil:
		modify := entities.AssignmentModify{ID: assignment.ID, Cause: pointer.To(cause)}
		if assignment.Status == entities.AssignmentPendingAccept {
			modify.Status = pointer.To(cause.AssignmentStatus())
			modify.RespondedAt = pointer.To(now)
		}
		released.Assignment, err = s.assignments.Update(ctx, modify)
		if err != nil {
			return nil, fmt.Errorf("close assignment: %w", err)
		}
	case errors.Is(err, entities.ErrAssignmentNotFound):
	default:
		return nil, fmt.Errorf("get current assignment: %w", err)
	}

	released.Courier, err = s.freeCourier(ctx, *order.CourierID, order.ID, cause == entities.ReleaseHeartbeatLost)
	if err != nil {
		return nil, err
	}

	if cause != entities.ReleaseCancelled {
		released.Order, err = s.orders.Update(ctx, entities.OrderModify{
			ID:         order.ID,
			Status:     pointer.To(entities.OrderReadyForPickup),
			At:         now,
			CourierID:  pointer.To[*string](nil),
			ClaimToken: pointer.To[*string](nil),
		})
		if err != nil {
			return nil, fmt.Errorf("reopen order: %w", err)
		}
	}

	return released, nil
}

// releaseAssignment закрывает назначение по таймеру или ответу курьера. Если назначение
// уже не держит заказ, закрывается только оно само.
func (s *Coordinator) releaseAssignment(
	ctx context.Context,
	assignment *entities.Assignment,
	cause entities.ReleaseCause,
) (*Released, error) {
	order, err := s.orders.GetByIDForUpdate(ctx, assignment.OrderID)
	if err != nil {
		return nil, err
	}
	if order.ClaimToken != nil && *order.ClaimToken == assignment.ClaimToken {
		return s.ReleaseTx(ctx, order, cause)
	}

	closed, err := s.assignments.Update(ctx, entities.AssignmentModify{
		ID:          assignment.ID,
		Status:      pointer.To(cause.AssignmentStatus()),
		Cause:       pointer.To(cause),
		RespondedAt: pointer.To(s.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("close assignment: %w", err)
	}
	return &Released{OrderID: assignment.OrderID, CourierID: assignment.CourierID, Assignment: closed}, nil
}

// CompleteTx освобождает курьера доставленного заказа внутри транзакции вызывающего.
func (s *Coordinator) CompleteTx(ctx context.Context, order *entities.Order) (*Released, error) {
	if order.CourierID == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotClaimed, order.ID)
	}

	courier, err := s.freeCourier(ctx, *order.CourierID, order.ID, false)
	if err != nil {
		return nil, err
	}
	return &Released{OrderID: order.ID, CourierID: courier.ID, Courier: courier}, nil
}

// Release освобождает заказ в собственной транзакции. Отмена идёт через FulfillmentStateMachine.
func (s *Coordinator) Release(ctx context.Context, orderID string, cause entities.ReleaseCause) (*Released, error) {
	if cause == entities.ReleaseCancelled {
		return nil, fmt.Errorf("%w: cancellation is a lifecycle transition", entities.ErrInvalidTransition)
	}

	var released *Released
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		released, err = s.ReleaseTx(ctx, order, cause)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("release order %s: %w", orderID, err)
	}

	s.Apply(ctx, released)
	return released, nil
}

// Apply публикует закоммиченный результат освобождения: снимает таймер, обновляет
// живое состояние курьера, публикует заказ и шлёт события.
func (s *Coordinator) Apply(ctx context.Context, released *Released) {
	if released.Assignment != nil {
		s.timers.Cancel(released.Assignment.ID)
	}
	if released.Courier != nil {
		s.fleet.ApplyCourier(*released.Courier)
	}
	if released.Order != nil {
		s.publisher.PublishOrder(released.Order)
	}
	if released.Cause == "" {
		return
	}

	metrics.AssignmentReleasesTotal.WithLabelValues(string(released.Cause)).Inc()
	now := s.now()

	if released.Cause == entities.ReleaseExpired || released.Cause == entities.ReleaseHeartbeatLost {
		s.emitter.Notify(ctx, entities.Notification{
			Type:       entities.NotificationAssignmentExpired,
			OrderID:    released.OrderID,
			CourierID:  released.CourierID,
			Attributes: map[string]string{"cause": string(released.Cause)},
			OccurredAt: now,
		})
	}

	actor := entities.ActorSystem
	if released.Cause == entities.ReleaseRejected {
		actor = entities.ActorCourier
	}
	s.emitter.Audit(ctx, entities.AuditEvent{
		Actor:      actor,
		Action:     "assignment.released",
		OrderID:    released.OrderID,
		CourierID:  released.CourierID,
		Detail:     string(released.Cause),
		OccurredAt: now,
	})

	s.log.Info("assignment released",
		logger.NewField("order_id", released.OrderID),
		logger.NewField("courier_id", released.CourierID),
		logger.NewField("cause", released.Cause),
	)
}

// ReleaseSilentCouriers - монитор пульса. Замолчавший курьер с заказом в ASSIGNED
// освобождается как при истечении окна; в PICKED_UP/SHIPPED заказ не переназначается,
// курьер помечается для диспетчера. Замолчавший свободный курьер уходит в OFFLINE.
func (s *Coordinator) ReleaseSilentCouriers(ctx context.Context) (int, error) {
	var errs []error
	handled := 0
	for _, courier := range s.fleet.Silent(s.heartbeatTimeout) {
		if err := s.handleSilent(ctx, courier); err != nil {
			errs = append(errs, fmt.Errorf("courier %s: %w", courier.ID, err))
			continue
		}
		handled++
	}
	return handled, errors.Join(errs...)
}

func (s *Coordinator) handleSilent(ctx context.Context, silent entities.Courier) error {
	var (
		released  *Released
		courier   *entities.Courier
		attention *entities.Order
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// заказ блокируется раньше курьера, как и во всех остальных путях
		var order *entities.Order
		if silent.ActiveOrderID != nil {
			var err error
			order, err = s.orders.GetByIDForUpdate(ctx, *silent.ActiveOrderID)
			if err != nil {
				return err
			}
		}

		current, err := s.couriers.GetByIDForUpdate(ctx, silent.ID)
		if err != nil {
			return err
		}

		switch {
		case current.ActiveOrderID == nil:
			if current.Status != entities.CourierOnline {
				return nil
			}
			courier, err = s.couriers.Update(ctx, entities.CourierModify{
				ID:     pointer.To(current.ID),
				Status: pointer.To(entities.CourierOffline),
			})
			return err

		case order == nil || order.ID != *current.ActiveOrderID:
			// живое состояние отстало от базы, разберёмся на следующем тике
			return nil

		case order.Status == entities.OrderAssigned:
			released, err = s.ReleaseTx(ctx, order, entities.ReleaseHeartbeatLost)
			return err

		case current.NeedsAttention:
			return nil

		default:
			courier, err = s.couriers.Update(ctx, entities.CourierModify{
				ID:             pointer.To(current.ID),
				NeedsAttention: pointer.To(true),
			})
			attention = order
			return err
		}
	})
	if err != nil {
		return err
	}

	if released != nil {
		s.Apply(ctx, released)
	}
	if courier != nil {
		s.fleet.ApplyCourier(*courier)
	}
	if attention != nil {
		s.emitter.Notify(ctx, entities.Notification{
			Type:       entities.NotificationCourierNeedsAttention,
			OrderID:    attention.ID,
			CourierID:  silent.ID,
			Attributes: map[string]string{"reason": "heartbeat_lost", "order_status": attention.Status.String()},
			OccurredAt: s.now(),
		})
		s.log.Warn("courier went silent mid-delivery",
			logger.NewField("courier_id", silent.ID),
			logger.NewField("order_id", attention.ID),
			logger.NewField("order_status", attention.Status),
		)
	}
	return nil
}

func (s *Coordinator) freeCourier(
	ctx context.Context,
	courierID, orderID string,
	lost bool,
) (*entities.Courier, error) {
	courier, err := s.couriers.GetByIDForUpdate(ctx, courierID)
	if err != nil {
		return nil, fmt.Errorf("get courier: %w", err)
	}
	if courier.ActiveOrderID == nil || *courier.ActiveOrderID != orderID {
		return courier, nil
	}

	status := entities.CourierOnline
	if courier.PendingOffline || lost {
		status = entities.CourierOffline
	}

	courier, err = s.couriers.Update(ctx, entities.CourierModify{
		ID:             pointer.To(courierID),
		Status:         pointer.To(status),
		ActiveOrderID:  pointer.To[*string](nil),
		PendingOffline: pointer.To(false),
		NeedsAttention: pointer.To(lost),
	})
	if err != nil {
		return nil, fmt.Errorf("free courier: %w", err)
	}
	return courier, nil
}
