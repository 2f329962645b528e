package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/entities"
)

// Ledger - чек-лист доказательств по позициям заказа и доказательство вручения.
// Каждая отметка пишется одним оператором, частично записанной отметки не бывает.
type Ledger struct {
	repository Repository
	orders     OrderRepository
	txManager  TxManager
	now        func() time.Time
}

func New(repository Repository, orders OrderRepository, txManager TxManager) *Ledger {
	return &Ledger{
		repository: repository,
		orders:     orders,
		txManager:  txManager,
		now:        time.Now,
	}
}

// Init создаёт пустой чек-лист; повторный вызов ничего не меняет.
func (l *Ledger) Init(ctx context.Context, orderID string, itemCount int) error {
	if err := l.repository.Init(ctx, orderID, itemCount); err != nil {
		return fmt.Errorf("init verification for order %s: %w", orderID, err)
	}
	return nil
}

// MarkItem отмечает позицию. Разрешено только назначенному курьеру и только в ASSIGNED;
// повторная отметка перезаписывает доказательство (переснять фото).
func (l *Ledger) MarkItem(
	ctx context.Context,
	orderID, courierID string,
	index int,
	proofRef string,
) (*entities.VerificationItem, error) {
	proofRef = strings.TrimSpace(proofRef)
	if proofRef == "" {
		return nil, entities.ErrInvalidProof
	}

	var item *entities.VerificationItem
	err := l.txManager.Do(ctx, func(ctx context.Context) error {
		// блокировка заказа упорядочивает отметки с гейтом PICKED_UP
		order, err := l.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != entities.OrderAssigned {
			return fmt.Errorf("%w: items are marked only while assigned, order is %s",
				entities.ErrInvalidTransition, order.Status)
		}
		if !order.AssignedTo(courierID) {
			return entities.ErrCourierMismatch
		}
		if index < 0 || index >= len(order.Items) {
			return fmt.Errorf("%w: %d of %d", entities.ErrLineItemOutOfRange, index, len(order.Items))
		}

		// чек-лист мог не создаться, если заказ пришёл сразу готовым
		if err := l.repository.Init(ctx, orderID, len(order.Items)); err != nil {
			return err
		}

		markedAt := l.now()
		item, err = l.repository.MarkItem(ctx, entities.VerificationItem{
			OrderID:   orderID,
			LineIndex: index,
			Checked:   true,
			ProofRef:  proofRef,
			MarkedBy:  courierID,
			MarkedAt:  &markedAt,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("mark item %d of order %s: %w", index, orderID, err)
	}
	return item, nil
}

// MarkDelivery записывает доказательство вручения один раз. Разрешено только в SHIPPED.
// Возвращает false, если доказательство уже было записано.
func (l *Ledger) MarkDelivery(ctx context.Context, order *entities.Order, proof entities.DeliveryProof) (bool, error) {
	if order.Status != entities.OrderShipped {
		return false, fmt.Errorf("%w: delivery proof is accepted only while shipped, order is %s",
			entities.ErrInvalidTransition, order.Status)
	}
	if !order.AssignedTo(proof.CourierID) {
		return false, entities.ErrCourierMismatch
	}
	if proof.Method == entities.ProofPhoto && strings.TrimSpace(proof.PhotoRef) == "" {
		return false, entities.ErrInvalidProof
	}

	proof.OrderID = order.ID
	if proof.CreatedAt.IsZero() {
		proof.CreatedAt = l.now()
	}
	recorded, err := l.repository.SaveDeliveryProof(ctx, proof)
	if err != nil {
		return false, fmt.Errorf("save delivery proof: %w", err)
	}
	return recorded, nil
}

// PickupGate - гейт ASSIGNED -> PICKED_UP: все позиции заказа отмечены с доказательством.
func (l *Ledger) PickupGate(ctx context.Context, order *entities.Order) error {
	record, err := l.repository.Get(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("get verification: %w", err)
	}

	total := len(order.Items)
	complete := 0
	for _, item := range record.Items {
		if item.LineIndex < total && item.Complete() {
			complete++
		}
	}
	if complete < total || total == 0 {
		return &entities.IncompleteVerificationError{Missing: total - complete, Total: total}
	}
	return nil
}

func (l *Ledger) IsPickupComplete(ctx context.Context, orderID string) (bool, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("get order: %w", err)
	}

	err = l.PickupGate(ctx, order)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, entities.ErrIncompleteVerification) {
		return false, nil
	}
	return false, err
}

// Progress - сколько позиций уже подтверждено из общего числа.
func (l *Ledger) Progress(ctx context.Context, orderID string) (int, int, error) {
	record, err := l.Get(ctx, orderID)
	if err != nil {
		return 0, 0, err
	}
	return len(record.Items) - record.Missing(), len(record.Items), nil
}

func (l *Ledger) Get(ctx context.Context, orderID string) (*entities.VerificationRecord, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	record, err := l.repository.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	// до создания чек-листа показываем пустые позиции по составу заказа
	if len(record.Items) == 0 {
		record.Items = make([]entities.VerificationItem, len(order.Items))
		for i := range record.Items {
			record.Items[i] = entities.VerificationItem{OrderID: orderID, LineIndex: i}
		}
	}
	return record, nil
}
