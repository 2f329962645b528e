package verification

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/entities"
	"dispatch/internal/repository"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	querier Querier
}

func New(querier Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

// Init создаёт пустые строки чеклиста. Повторный вызов ничего не меняет.
func (r *Repository) Init(ctx context.Context, orderID string, itemCount int) error {
	batch := &pgx.Batch{}
	for i := range itemCount {
		batch.Queue(`
			INSERT INTO verification_items (order_id, line_index)
			VALUES ($1, $2)
			ON CONFLICT (order_id, line_index) DO NOTHING`,
			orderID, i,
		)
	}

	results := r.querier.SendBatch(ctx, batch)
	for range itemCount {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return repository.MapTxError(err, "verification repository init")
		}
	}
	if err := results.Close(); err != nil {
		return repository.MapTxError(err, "verification repository init")
	}
	return nil
}

// MarkItem - одна инструкция на позицию: частичной записи, из-за которой позиция
// выглядела бы подтверждённой без артефакта, не бывает.
func (r *Repository) MarkItem(ctx context.Context, item entities.VerificationItem) (*entities.VerificationItem, error) {
	query := `
		UPDATE verification_items
		SET checked = TRUE,
			proof_ref = $3,
			marked_by = $4,
			marked_at = $5
		WHERE order_id = $1 AND line_index = $2
		RETURNING order_id, line_index, checked, proof_ref, marked_by, marked_at`

	var out entities.VerificationItem
	err := r.querier.QueryRow(ctx, query, item.OrderID, item.LineIndex, item.ProofRef, item.MarkedBy, item.MarkedAt).
		Scan(&out.OrderID, &out.LineIndex, &out.Checked, &out.ProofRef, &out.MarkedBy, &out.MarkedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrLineItemOutOfRange
		}
		return nil, repository.MapTxError(err, "verification repository mark item")
	}
	return &out, nil
}

func (r *Repository) Get(ctx context.Context, orderID string) (*entities.VerificationRecord, error) {
	rows, err := r.querier.Query(ctx, `
		SELECT order_id, line_index, checked, proof_ref, marked_by, marked_at
		FROM verification_items
		WHERE order_id = $1
		ORDER BY line_index`, orderID)
	if err != nil {
		return nil, repository.MapTxError(err, "verification repository get")
	}
	defer rows.Close()

	record := &entities.VerificationRecord{OrderID: orderID}
	for rows.Next() {
		var item entities.VerificationItem
		if err := rows.Scan(&item.OrderID, &item.LineIndex, &item.Checked, &item.ProofRef, &item.MarkedBy, &item.MarkedAt); err != nil {
			return nil, fmt.Errorf("unexpected verification repository get error: %w", err)
		}
		record.Items = append(record.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapTxError(err, "verification repository get")
	}

	var proof entities.DeliveryProof
	var method string
	err = r.querier.QueryRow(ctx, `
		SELECT order_id, courier_id, method, photo_ref, created_at
		FROM delivery_proofs
		WHERE order_id = $1`, orderID).
		Scan(&proof.OrderID, &proof.CourierID, &method, &proof.PhotoRef, &proof.CreatedAt)
	switch {
	case err == nil:
		proof.Method = entities.DeliveryProofMethod(method)
		record.Delivery = &proof
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, repository.MapTxError(err, "verification repository get delivery proof")
	}

	return record, nil
}

// SaveDeliveryProof записывает доказательство вручения один раз; повторная запись игнорируется.
func (r *Repository) SaveDeliveryProof(ctx context.Context, proof entities.DeliveryProof) (bool, error) {
	tag, err := r.querier.Exec(ctx, `
		INSERT INTO delivery_proofs (order_id, courier_id, method, photo_ref, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING`,
		proof.OrderID, proof.CourierID, string(proof.Method), proof.PhotoRef, proof.CreatedAt,
	)
	if err != nil {
		return false, repository.MapTxError(err, "verification repository save delivery proof")
	}
	return tag.RowsAffected() == 1, nil
}
