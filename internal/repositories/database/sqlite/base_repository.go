package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type txCtxKey struct{}

// dbConn is satisfied by both *sql.DB and *sql.Tx, so repository methods run
// against whichever the context carries.
type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// connFrom returns the transaction carried by the context, or the plain
// connection when none is open.
func connFrom(ctx context.Context, db *sql.DB) dbConn {
	if tx, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// TxManager runs functions inside a single SQLite transaction. Repositories
// invoked with the inner context join that transaction, making the bulk
// commit all-or-nothing.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a transaction manager over the given connection.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx implements portsrepo.TransactionManager.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
