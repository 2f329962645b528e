package courier

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/entities"
	"dispatch/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var qb sq.StatementBuilderType = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	querier Querier
}

func New(querier Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

func (r *Repository) Create(ctx context.Context, courierModifyEntity entities.CourierModify) (*entities.Courier, error) {
	m := FromDomainModify(&courierModifyEntity)
	if m.ID == nil || m.Name == nil || m.Phone == nil {
		return nil, fmt.Errorf("courier repository create: id, name and phone are required")
	}

	columns := []string{"id", "name", "phone"}
	values := []any{*m.ID, *m.Name, *m.Phone}

	// необязательные поля берут дефолты из схемы
	optional := []struct {
		column string
		value  *string
	}{
		{"transport_type", m.TransportType},
		{"plate", m.Plate},
		{"hub", m.Hub},
		{"status", m.Status},
	}
	for _, o := range optional {
		if o.value != nil {
			columns = append(columns, o.column)
			values = append(values, *o.value)
		}
	}

	query, args, err := qb.Insert("couriers").
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING " + courierColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected courier repository create error: %w", err)
	}

	courierModel, err := scanCourier(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, entities.ErrConflict
		}
		return nil, repository.MapTxError(err, "courier repository create")
	}

	return ToDomain(&courierModel), nil
}

func (r *Repository) Update(ctx context.Context, courierModifyEntity entities.CourierModify) (*entities.Courier, error) {
	m := FromDomainModify(&courierModifyEntity)
	if m.ID == nil {
		return nil, fmt.Errorf("courier repository update: id is required")
	}

	builder := qb.
		Update("couriers")

	// опционные поля
	if m.Name != nil {
		builder = builder.Set("name", *m.Name)
	}
	if m.Phone != nil {
		builder = builder.Set("phone", *m.Phone)
	}
	if m.TransportType != nil {
		builder = builder.Set("transport_type", *m.TransportType)
	}
	if m.Plate != nil {
		builder = builder.Set("plate", *m.Plate)
	}
	if m.Hub != nil {
		builder = builder.Set("hub", *m.Hub)
	}
	if m.Status != nil {
		builder = builder.Set("status", *m.Status)
	}
	if m.ActiveOrderID != nil {
		builder = builder.Set("active_order_id", *m.ActiveOrderID)
	}
	if m.PendingOffline != nil {
		builder = builder.Set("pending_offline", *m.PendingOffline)
	}
	if m.NeedsAttention != nil {
		builder = builder.Set("needs_attention", *m.NeedsAttention)
	}

	// время записи под блокировкой строки: порядок updated_at совпадает с порядком коммитов
	query, args, err := builder.
		Set("updated_at", sq.Expr("clock_timestamp()")).
		Where(sq.Eq{"id": *m.ID}).
		Suffix("RETURNING " + courierColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected courier repository update error: %w", err)
	}

	courierModel, err := scanCourier(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrCourierNotFound
		}
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, entities.ErrConflict
		}
		if repository.IsPgErrorWithCode(err, repository.PgErrCheckViolation) {
			return nil, fmt.Errorf("%w: %w", entities.ErrInvalidTransition, err)
		}
		return nil, repository.MapTxError(err, "courier repository update")
	}

	return ToDomain(&courierModel), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Courier, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate блокирует строку курьера до конца транзакции.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Courier, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id string, forUpdate bool) (*entities.Courier, error) {
	builder := qb.Select(courierColumns).
		From("couriers").
		Where(sq.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected courier repository getbyid error: %w", err)
	}

	courierModel, err := scanCourier(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrCourierNotFound
		}
		return nil, repository.MapTxError(err, "courier repository getbyid")
	}

	return ToDomain(&courierModel), nil
}

func (r *Repository) List(ctx context.Context, filter entities.CourierFilter) ([]entities.Courier, error) {
	builder := qb.Select(courierColumns).
		From("couriers").
		OrderBy("id")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}
	if filter.Hub != "" {
		builder = builder.Where(sq.Eq{"hub": filter.Hub})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected courier repository list error: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, repository.MapTxError(err, "courier repository list")
	}
	defer rows.Close()

	courierModels := make([]CourierDB, 0, 16)
	for rows.Next() {
		courierModel, err := scanCourier(rows)
		if err != nil {
			return nil, fmt.Errorf("unexpected courier repository list error: %w", err)
		}
		courierModels = append(courierModels, courierModel)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapTxError(err, "courier repository list")
	}

	return ToDomainList(courierModels), nil
}
