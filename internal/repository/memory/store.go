// Package memory - однопроцессный драйвер хранилища для локального запуска и тестов.
// Транзакция держит общий мьютекс и при ошибке откатывает снимок данных.
package memory

import (
	"context"
	"maps"
	"sync"

	"dispatch/internal/entities"
)

type txKey struct{}

type Store struct {
	mu sync.Mutex

	couriers    map[string]entities.Courier
	orders      map[string]entities.Order
	assignments map[string]entities.Assignment
	items       map[string][]entities.VerificationItem
	proofs      map[string]entities.DeliveryProof
}

func New() *Store {
	return &Store{
		couriers:    make(map[string]entities.Courier),
		orders:      make(map[string]entities.Order),
		assignments: make(map[string]entities.Assignment),
		items:       make(map[string][]entities.VerificationItem),
		proofs:      make(map[string]entities.DeliveryProof),
	}
}

type snapshot struct {
	couriers    map[string]entities.Courier
	orders      map[string]entities.Order
	assignments map[string]entities.Assignment
	items       map[string][]entities.VerificationItem
	proofs      map[string]entities.DeliveryProof
}

// Do выполняет fn атомарно относительно всех остальных операций хранилища.
// Вложенный вызов переиспользует внешнюю транзакцию.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		couriers:    maps.Clone(s.couriers),
		orders:      maps.Clone(s.orders),
		assignments: maps.Clone(s.assignments),
		items:       maps.Clone(s.items),
		proofs:      maps.Clone(s.proofs),
	}

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.couriers = snap.couriers
		s.orders = snap.orders
		s.assignments = snap.assignments
		s.items = snap.items
		s.proofs = snap.proofs
		return err
	}
	return nil
}

func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock берёт мьютекс для одиночной операции вне транзакции.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Couriers() *Couriers {
	return &Couriers{s: s}
}

func (s *Store) Orders() *Orders {
	return &Orders{s: s}
}

func (s *Store) Assignments() *Assignments {
	return &Assignments{s: s}
}

func (s *Store) Verification() *Verification {
	return &Verification{s: s}
}
