package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	PgErrUniqueViolation      = "23505"
	PgErrCheckViolation       = "23514"
	PgErrSerializationFailure = "40001"
	PgErrDeadlockDetected     = "40P01"
)

// ErrSerialization - конфликт сериализуемой транзакции; операцию можно повторить целиком.
var ErrSerialization = errors.New("serialization conflict")

func IsPgErrorWithCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// IsRetryable - инфраструктурная ошибка, после которой транзакцию стоит повторить.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrSerialization) {
		return true
	}
	return IsPgErrorWithCode(err, PgErrSerializationFailure) ||
		IsPgErrorWithCode(err, PgErrDeadlockDetected) ||
		pgconn.SafeToRetry(err)
}

// MapTxError переводит ошибки конкурентного доступа в ErrSerialization, остальное оборачивает.
func MapTxError(err error, op string) error {
	if IsPgErrorWithCode(err, PgErrSerializationFailure) || IsPgErrorWithCode(err, PgErrDeadlockDetected) {
		return fmt.Errorf("%s: %w: %w", op, ErrSerialization, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
