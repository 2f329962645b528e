package tx

import (
	"context"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
	"github.com/avito-tech/go-transaction-manager/trm/settings"
	"github.com/jackc/pgx/v5"
)

// Manager запускает функции в транзакции pgx, привязанной к контексту.
// Вложенный вызов Do переиспользует внешнюю транзакцию.
type Manager struct {
	internal *manager.Manager
}

func New(db pgxv5.Transactional) *Manager {
	return &Manager{
		internal: manager.Must(pgxv5.NewDefaultFactory(db)),
	}
}

func (m *Manager) execWithIsoLevel(
	ctx context.Context,
	level pgx.TxIsoLevel,
	mode pgx.TxAccessMode,
	fn func(ctx context.Context) error,
) error {
	txSettings := pgxv5.MustSettings(
		settings.Must(),
		pgxv5.WithTxOptions(pgx.TxOptions{IsoLevel: level, AccessMode: mode}),
	)
	return m.internal.DoWithSettings(ctx, txSettings, fn)
}

// Do - сериализуемая транзакция на чтение и запись. Все решения о назначении проходят через неё.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.execWithIsoLevel(ctx, pgx.Serializable, pgx.ReadWrite, fn)
}

// DoReadOnly - согласованный снимок для чтения нескольких таблиц.
func (m *Manager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.execWithIsoLevel(ctx, pgx.RepeatableRead, pgx.ReadOnly, fn)
}
