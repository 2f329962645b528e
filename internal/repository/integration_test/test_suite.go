//go:build integration

// Package integration_test поднимает Postgres в testcontainers для интеграционных тестов
// репозиториев. Контейнер общий на пакет тестов; его убирает reaper testcontainers
// после завершения процесса.
package integration_test

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"dispatch/internal/pkg/postgres"
	"dispatch/pkg/logger"
	"dispatch/pkg/querier"
	"dispatch/pkg/tx"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	poolInstance    *pgxpool.Pool
	querierInstance *querier.Querier
	startOnce       sync.Once
)

func start() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("dispatch_test"),
		tcpostgres.WithUsername("dispatch"),
		tcpostgres.WithPassword("dispatch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres testcontainer: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to get connection string from container: %v", err)
	}

	pool, err := postgres.NewConnPoolFromDSN(ctx, logger.NewNop(), dsn)
	if err != nil {
		log.Fatalf("failed to create pgx pool: %v", err)
	}

	if err := postgres.Migrate(ctx, logger.NewNop(), pool); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	poolInstance = pool
	querierInstance = querier.New(pool, pgxv5.DefaultCtxGetter)
}

func GetQuerier() *querier.Querier {
	startOnce.Do(start)
	return querierInstance
}

func GetTxManager() *tx.Manager {
	startOnce.Do(start)
	return tx.New(poolInstance)
}

func SetupDB(t *testing.T, setupSql string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if setupSql == "" {
		GetQuerier()
		return
	}
	_, err := GetQuerier().Exec(ctx, setupSql)
	require.NoError(t, err)
}

func TeardownDB(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := GetQuerier().Exec(ctx, `
		TRUNCATE TABLE delivery_proofs, verification_items, assignments, orders, couriers CASCADE;
	`)
	require.NoError(t, err)
}
