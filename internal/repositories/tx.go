package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxStarter - пул или соединение, которые умеют открыть транзакцию.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx выполняет fn в одной транзакции. Ошибка или паника в fn откатывают её.
func WithTx(ctx context.Context, db TxStarter, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	committed = true
	return nil
}
