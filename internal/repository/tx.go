package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner scopes a unit of work to one database transaction. Every
// multi-entity operation (ticket + codes + history, count + cascaded code
// status + history, grant swap + history) runs through Within so either all
// sub-writes commit or none do.
type TxRunner struct {
	db *sqlx.DB
}

// NewTxRunner constructs a transaction runner.
func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Within executes fn inside a transaction, committing on success and
// rolling back on error or panic.
func (r *TxRunner) Within(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
