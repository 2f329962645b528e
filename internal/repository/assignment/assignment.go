package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Create вставляет PENDING_ACCEPT. Частичный уникальный индекс по order_id
// не даёт появиться второму нетерминальному назначению.
func (r *Repository) Create(ctx context.Context, a entities.Assignment) (*entities.Assignment, error) {
	query := `
		INSERT INTO assignments (id, order_id, courier_id, claim_token, status, offered_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + assignmentColumns

	model, err := scanAssignment(r.querier.QueryRow(ctx, query,
		a.ID,
		a.OrderID,
		a.CourierID,
		a.ClaimToken,
		a.Status.String(),
		a.OfferedAt,
		a.ExpiresAt,
	))
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, entities.ErrAlreadyClaimed
		}
		return nil, repository.MapTxError(err, "assignment repository create")
	}

	return ToDomain(&model), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1 FOR UPDATE`

	model, err := scanAssignment(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrAssignmentNotFound
		}
		return nil, repository.MapTxError(err, "assignment repository getbyid")
	}

	return ToDomain(&model), nil
}

// GetCurrentByOrder - назначение, которое сейчас держит заказ: по совпадающему токену захвата.
func (r *Repository) GetCurrentByOrder(ctx context.Context, orderID, claimToken string) (*entities.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE order_id = $1 AND claim_token = $2
		FOR UPDATE`

	model, err := scanAssignment(r.querier.QueryRow(ctx, query, orderID, claimToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrAssignmentNotFound
		}
		return nil, repository.MapTxError(err, "assignment repository get current")
	}

	return ToDomain(&model), nil
}

func (r *Repository) Update(ctx context.Context, modify entities.AssignmentModify) (*entities.Assignment, error) {
	builder := qb.Update("assignments")

	if modify.Status != nil {
		builder = builder.Set("status", modify.Status.String())
	}
	if modify.Cause != nil {
		builder = builder.Set("cause", string(*modify.Cause))
	}
	if modify.RespondedAt != nil {
		builder = builder.Set("responded_at", *modify.RespondedAt)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": modify.ID}).
		Suffix("RETURNING " + assignmentColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected assignment repository update error: %w", err)
	}

	model, err := scanAssignment(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrAssignmentNotFound
		}
		return nil, repository.MapTxError(err, "assignment repository update")
	}

	return ToDomain(&model), nil
}

// ListOverdue - PENDING_ACCEPT с истёкшим окном ответа; нужно после рестарта,
// когда таймеры процесса потеряны.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time, limit uint64) ([]entities.Assignment, error) {
	query, args, err := qb.Select(assignmentColumns).
		From("assignments").
		Where(sq.Eq{"status": entities.AssignmentPendingAccept.String()}).
		Where(sq.LtOrEq{"expires_at": now}).
		OrderBy("expires_at").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected assignment repository list overdue error: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, repository.MapTxError(err, "assignment repository list overdue")
	}
	defer rows.Close()

	var result []entities.Assignment
	for rows.Next() {
		model, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("unexpected assignment repository list overdue error: %w", err)
		}
		result = append(result, *ToDomain(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapTxError(err, "assignment repository list overdue")
	}

	return result, nil
}
