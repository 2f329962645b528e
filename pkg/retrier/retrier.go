package retrier

import (
	"context"
	"time"
)

type Retrier interface {
	ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error
}

type ShouldRetryFunc func(error) bool

// NotifyFunc вызывается перед каждой повторной попыткой.
type NotifyFunc func(err error, delay time.Duration)

type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	Randomization   float64
	Multiplier      float64
	// MaxRetries ограничивает число повторов; 0 - без ограничения (только MaxElapsedTime).
	MaxRetries uint64

	// Если nil - ретраятся все ошибки, если не nil - только те где функция вернула true
	ShouldRetry ShouldRetryFunc
	OnRetry     NotifyFunc
}

// Once выполняет функцию ровно один раз. Используется там, где повтор не нужен (тесты, memory-драйвер).
type Once struct{}

func (Once) ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
