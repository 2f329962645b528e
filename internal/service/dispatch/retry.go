package dispatch

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/internal/repository"
)

// ShouldRetry - повторяются только инфраструктурные сбои. Бизнес-исход возвращается
// вызывающему с первой попытки.
func ShouldRetry(err error) bool {
	if entities.IsBusinessOutcome(err) {
		return false
	}
	return repository.IsRetryable(err)
}

func withRetry[T any](ctx context.Context, r Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.ExecuteWithContext(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}
