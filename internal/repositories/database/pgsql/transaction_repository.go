package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// PgxTransactionRepository persists transactions and their splits in
// Postgres. A transaction and its splits are always written together.
type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

// BulkAddTransactions upserts the given transactions with their splits.
// Re-importing the same UID replaces the stored splits, so no duplicates
// accumulate.
func (r *PgxTransactionRepository) BulkAddTransactions(ctx context.Context, bookUID string, transactions []*domain.Transaction) (int64, error) {
	txnQuery := `
		INSERT INTO transactions (uid, book_uid, description, notes, timestamp, created_at,
			currency_code, commodity_fraction, is_template, is_exported, scheduled_action_uid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (uid) DO UPDATE SET
			description = EXCLUDED.description,
			notes = EXCLUDED.notes,
			timestamp = EXCLUDED.timestamp,
			currency_code = EXCLUDED.currency_code,
			commodity_fraction = EXCLUDED.commodity_fraction,
			is_template = EXCLUDED.is_template,
			is_exported = EXCLUDED.is_exported,
			scheduled_action_uid = EXCLUDED.scheduled_action_uid;
	`
	splitQuery := `
		INSERT INTO splits (uid, transaction_uid, account_uid, amount_num, amount_denom,
			currency_code, memo, split_type, reconcile_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	conn := connFrom(ctx, r.pool)
	batch := &pgx.Batch{}
	for _, txn := range transactions {
		batch.Queue(txnQuery,
			txn.UID, bookUID, txn.Description, txn.Notes, txn.Timestamp, txn.CreatedAt,
			txn.CurrencyCode, txn.Commodity.SmallestFraction, txn.IsTemplate, txn.IsExported,
			txn.ScheduledActionUID,
		)
		// Replace rather than merge: split UIDs may change across exports
		// of the same transaction.
		batch.Queue(`DELETE FROM splits WHERE transaction_uid = $1;`, txn.UID)
		for _, split := range txn.Splits {
			batch.Queue(splitQuery,
				split.UID, txn.UID, split.AccountUID,
				split.Amount.Numerator(), split.Amount.Denominator(),
				split.Amount.Commodity().Mnemonic, split.Memo, split.SplitType, split.ReconcileState,
			)
		}
	}
	if err := sendBatch(ctx, conn, batch); err != nil {
		return 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	return int64(len(transactions)), nil
}

const transactionColumns = `uid, description, notes, timestamp, created_at,
	currency_code, commodity_fraction, is_template, is_exported, scheduled_action_uid`

// FindTransactionByUID fetches one transaction with its splits.
func (r *PgxTransactionRepository) FindTransactionByUID(ctx context.Context, uid string) (*domain.Transaction, error) {
	conn := connFrom(ctx, r.pool)
	row := conn.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE uid = $1;`, uid)
	txn, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", uid, err)
	}
	if err := r.loadSplits(ctx, conn, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactionsByAccount returns the non-template transactions with at
// least one split posted to the account, newest first.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountUID string) ([]*domain.Transaction, error) {
	conn := connFrom(ctx, r.pool)
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE NOT is_template AND uid IN (SELECT transaction_uid FROM splits WHERE account_uid = $1)
		ORDER BY timestamp DESC;
	`
	rows, err := conn.Query(ctx, query, accountUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountUID, err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, txn := range transactions {
		if err := r.loadSplits(ctx, conn, txn); err != nil {
			return nil, err
		}
	}
	return transactions, nil
}

func (r *PgxTransactionRepository) loadSplits(ctx context.Context, conn pgxConn, txn *domain.Transaction) error {
	query := `
		SELECT uid, account_uid, amount_num, amount_denom, currency_code, memo, split_type, reconcile_state
		FROM splits WHERE transaction_uid = $1 ORDER BY uid;
	`
	rows, err := conn.Query(ctx, query, txn.UID)
	if err != nil {
		return fmt.Errorf("failed to load splits of %s: %w", txn.UID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var split domain.Split
		var num, denom int64
		var code string
		err := rows.Scan(&split.UID, &split.AccountUID, &num, &denom, &code,
			&split.Memo, &split.SplitType, &split.ReconcileState)
		if err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		commodity := domain.Commodity{
			Namespace:        domain.CommodityNamespaceISO4217,
			Mnemonic:         code,
			SmallestFraction: denom,
		}
		split.Amount = domain.NewMoneyFromNumerator(num, commodity)
		split.TransactionUID = txn.UID
		txn.Splits = append(txn.Splits, &split)
	}
	return rows.Err()
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var txn domain.Transaction
	var fraction int64
	err := row.Scan(&txn.UID, &txn.Description, &txn.Notes, &txn.Timestamp, &txn.CreatedAt,
		&txn.CurrencyCode, &fraction, &txn.IsTemplate, &txn.IsExported, &txn.ScheduledActionUID)
	if err != nil {
		return nil, err
	}
	txn.Commodity = domain.Commodity{
		Namespace:        domain.CommodityNamespaceISO4217,
		Mnemonic:         txn.CurrencyCode,
		SmallestFraction: fraction,
	}
	return &txn, nil
}
