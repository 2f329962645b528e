package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/entities"
	"dispatch/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var qb sq.StatementBuilderType = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var returningOrder = "RETURNING " + strings.Join(orderColumns, ", ")

type Repository struct {
	querier Querier
}

func New(querier Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

func (r *Repository) Create(ctx context.Context, orderEntity *entities.Order) (*entities.Order, error) {
	m := FromDomain(orderEntity)

	items, err := json.Marshal(m.LineItems)
	if err != nil {
		return nil, fmt.Errorf("order repository create: marshal line items: %w", err)
	}

	query, args, err := qb.Insert("orders").
		Columns(
			"id", "number", "customer_id", "vendor_id", "product", "line_items", "total", "delivery_fee", "currency",
			"pickup_label", "pickup_lat", "pickup_lon", "dropoff_label", "dropoff_lat", "dropoff_lon",
			"status", "delivery_pin", "atomic", "sla_deadline", "created_at", "updated_at", "version",
		).
		Values(
			m.ID, m.Number, m.CustomerID, m.VendorID, m.Product, string(items), m.Total, m.DeliveryFee, m.Currency,
			m.PickupLabel, m.PickupLat, m.PickupLon, m.DropoffLabel, m.DropoffLat, m.DropoffLon,
			m.Status, m.DeliveryPIN, m.Atomic, m.SLADeadline, m.CreatedAt, m.CreatedAt, 1,
		).
		Suffix(returningOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository create error: %w", err)
	}

	orderModel, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, entities.ErrConflict
		}
		return nil, repository.MapTxError(err, "order repository create")
	}

	return ToDomain(&orderModel), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate блокирует строку заказа до конца транзакции.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Order, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id string, forUpdate bool) (*entities.Order, error) {
	builder := qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository getbyid error: %w", err)
	}

	orderModel, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrOrderNotFound
		}
		return nil, repository.MapTxError(err, "order repository getbyid")
	}

	return ToDomain(&orderModel), nil
}

// Claim - compare-and-set токена захвата. Проходит только для READY_FOR_PICKUP без токена;
// из двух конкурентных захватов одного заказа строку обновит ровно один.
func (r *Repository) Claim(ctx context.Context, claim entities.OrderClaim) (*entities.Order, error) {
	query := `
		UPDATE orders
		SET claim_token = $2,
			courier_id = $3,
			status = 'assigned',
			assigned_at = $4,
			updated_at = $4,
			version = version + 1
		WHERE id = $1
		  AND status = 'ready_for_pickup'
		  AND claim_token IS NULL
		` + returningOrder

	orderModel, err := scanOrder(r.querier.QueryRow(ctx, query, claim.OrderID, claim.Token, claim.CourierID, claim.At))
	if err == nil {
		return ToDomain(&orderModel), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.MapTxError(err, "order repository claim")
	}

	// строка не обновилась: различаем "нет заказа", "уже захвачен" и "не готов"
	current, err := r.GetByID(ctx, claim.OrderID)
	if err != nil {
		return nil, err
	}
	if current.ClaimToken != nil || current.Status.IsActiveDelivery() {
		return nil, entities.ErrAlreadyClaimed
	}
	return nil, entities.ErrOrderNotReady
}

func (r *Repository) Update(ctx context.Context, modify entities.OrderModify) (*entities.Order, error) {
	builder := qb.Update("orders")

	if modify.Status != nil {
		status := modify.Status.String()
		builder = builder.Set("status", status)
		if column, ok := statusStampColumn[status]; ok {
			builder = builder.Set(column, modify.At)
		}
	}
	if modify.CourierID != nil {
		builder = builder.Set("courier_id", *modify.CourierID)
	}
	if modify.ClaimToken != nil {
		builder = builder.Set("claim_token", *modify.ClaimToken)
	}
	if modify.FailedPINAttempts != nil {
		builder = builder.Set("failed_pin_attempts", *modify.FailedPINAttempts)
	}
	if modify.CancelReason != nil {
		builder = builder.Set("cancel_reason", *modify.CancelReason)
	}

	query, args, err := builder.
		Set("updated_at", modify.At).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": modify.ID}).
		Suffix(returningOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository update error: %w", err)
	}

	orderModel, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrOrderNotFound
		}
		return nil, repository.MapTxError(err, "order repository update")
	}

	return ToDomain(&orderModel), nil
}

// List возвращает заказы в порядке очереди: срочные первыми, затем по SLA и времени готовности.
func (r *Repository) List(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, error) {
	builder := qb.Select(orderColumns...).
		From("orders").
		OrderBy("atomic DESC", "sla_deadline ASC", "ready_at ASC NULLS LAST", "id ASC")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository list error: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, repository.MapTxError(err, "order repository list")
	}
	defer rows.Close()

	orderModels := make([]OrderDB, 0, 16)
	for rows.Next() {
		orderModel, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("unexpected order repository list error: %w", err)
		}
		orderModels = append(orderModels, orderModel)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapTxError(err, "order repository list")
	}

	return ToDomainList(orderModels), nil
}
