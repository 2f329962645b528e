package entities

import (
	"errors"
	"fmt"
)

// Ожидаемые бизнес-исходы. Вызывающая сторона обрабатывает их как обычную ветку, а не как сбой.
var (
	ErrOrderNotReady          = errors.New("order is not ready for pickup")
	ErrCourierUnavailable     = errors.New("courier is unavailable")
	ErrAlreadyClaimed         = errors.New("order is already claimed")
	ErrAssignmentExpired      = errors.New("assignment expired")
	ErrIncompleteVerification = errors.New("incomplete verification")
	ErrInvalidDeliveryProof   = errors.New("invalid delivery proof")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrStaleUpdate            = errors.New("stale update")
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrCourierNotFound    = errors.New("courier not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrCourierMismatch    = errors.New("courier is not assigned to this order")
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrInvalidTimestamp   = errors.New("ping timestamp is too far in the future")
	ErrInvalidProof       = errors.New("invalid proof reference")
	ErrLineItemOutOfRange = errors.New("line item index out of range")
	ErrConflict           = errors.New("resource already exists")
)

var businessOutcomes = []struct {
	err  error
	code string
}{
	{ErrOrderNotReady, "order_not_ready"},
	{ErrCourierUnavailable, "courier_unavailable"},
	{ErrAlreadyClaimed, "already_claimed"},
	{ErrAssignmentExpired, "assignment_expired"},
	{ErrIncompleteVerification, "incomplete_verification"},
	{ErrInvalidDeliveryProof, "invalid_delivery_proof"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrStaleUpdate, "stale_update"},
	{ErrOrderNotFound, "order_not_found"},
	{ErrCourierNotFound, "courier_not_found"},
	{ErrAssignmentNotFound, "assignment_not_found"},
	{ErrCourierMismatch, "courier_mismatch"},
	{ErrInvalidCoordinate, "invalid_coordinate"},
	{ErrInvalidTimestamp, "invalid_timestamp"},
	{ErrInvalidProof, "invalid_proof"},
	{ErrLineItemOutOfRange, "line_item_out_of_range"},
	{ErrConflict, "conflict"},
}

// IsBusinessOutcome отделяет ожидаемые исходы от инфраструктурных ошибок,
// которые имеет смысл ретраить.
func IsBusinessOutcome(err error) bool {
	return ErrorCode(err) != ""
}

// ErrorCode - машинный код бизнес-исхода для ответов API и меток метрик; пусто для прочих ошибок.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, o := range businessOutcomes {
		if errors.Is(err, o.err) {
			return o.code
		}
	}
	return ""
}

type IncompleteVerificationError struct {
	Missing int
	Total   int
}

func (e *IncompleteVerificationError) Error() string {
	return fmt.Sprintf("%d of %d items still need proof", e.Missing, e.Total)
}

func (e *IncompleteVerificationError) Is(target error) bool {
	return target == ErrIncompleteVerification
}
