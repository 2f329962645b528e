package app

import (
	"context"
	"fmt"

	"dispatch/internal/pkg/config"
	"dispatch/internal/pkg/postgres"
	assignmentRepo "dispatch/internal/repository/assignment"
	courierRepo "dispatch/internal/repository/courier"
	"dispatch/internal/repository/memory"
	orderRepo "dispatch/internal/repository/order"
	verificationRepo "dispatch/internal/repository/verification"
	"dispatch/internal/service/assignment"
	courierService "dispatch/internal/service/courier"
	"dispatch/internal/service/fulfillment"
	"dispatch/internal/service/location"
	"dispatch/internal/service/verification"
	"dispatch/pkg/logger"
	"dispatch/pkg/querier"
	"dispatch/pkg/tx"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type (
	CourierRepository interface {
		courierService.Repository
		assignment.CourierRepository
		location.CourierRepository
	}

	OrderRepository interface {
		fulfillment.Repository
		assignment.OrderRepository
		verification.OrderRepository
	}

	AssignmentRepository interface {
		assignment.Repository
		fulfillment.AssignmentRepository
	}

	VerificationRepository interface {
		verification.Repository
	}

	TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Storage - репозитории одного драйвера хранилища и их менеджер транзакций.
type Storage struct {
	Driver       string
	Couriers     CourierRepository
	Orders       OrderRepository
	Assignments  AssignmentRepository
	Verification VerificationRepository
	TxManager    TxManager
	// Pinger nil у драйверов без внешнего соединения.
	Pinger Pinger
}

func NewMemoryStorage() *Storage {
	store := memory.New()
	return &Storage{
		Driver:       config.StorageDriverMemory,
		Couriers:     store.Couriers(),
		Orders:       store.Orders(),
		Assignments:  store.Assignments(),
		Verification: store.Verification(),
		TxManager:    store,
	}
}

func NewPostgresStorage(pool *pgxpool.Pool) *Storage {
	q := querier.New(pool, pgxv5.DefaultCtxGetter)
	return &Storage{
		Driver:       config.StorageDriverPostgres,
		Couriers:     courierRepo.New(q),
		Orders:       orderRepo.New(q),
		Assignments:  assignmentRepo.New(q),
		Verification: verificationRepo.New(q),
		TxManager:    tx.New(pool),
		Pinger:       pool,
	}
}

// OpenStorage поднимает драйвер из конфига. Для postgres накатываются миграции,
// cleanup закрывает пул.
func OpenStorage(ctx context.Context, log logger.Logger, cfg *config.Config) (*Storage, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("memory storage driver: state is lost on restart")
		return NewMemoryStorage(), func() {}, nil
	}

	pool, err := postgres.NewConnPool(ctx, log, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := postgres.Migrate(ctx, log, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return NewPostgresStorage(pool), pool.Close, nil
}
