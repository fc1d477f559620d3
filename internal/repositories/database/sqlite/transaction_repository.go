package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// SQLiteTransactionRepository persists transactions and their splits in
// SQLite. A transaction and its splits are always written together.
type SQLiteTransactionRepository struct {
	db *sql.DB
}

func newSQLiteTransactionRepository(db *sql.DB) portsrepo.TransactionRepository {
	return &SQLiteTransactionRepository{db: db}
}

var _ portsrepo.TransactionRepository = (*SQLiteTransactionRepository)(nil)

// BulkAddTransactions upserts the given transactions with their splits.
// Re-importing the same UID replaces the stored splits, so no duplicates
// accumulate.
func (r *SQLiteTransactionRepository) BulkAddTransactions(ctx context.Context, bookUID string, transactions []*domain.Transaction) (int64, error) {
	txnQuery := `
		INSERT INTO transactions (uid, book_uid, description, notes, timestamp, created_at,
			currency_code, commodity_fraction, is_template, is_exported, scheduled_action_uid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			description = excluded.description,
			notes = excluded.notes,
			timestamp = excluded.timestamp,
			currency_code = excluded.currency_code,
			commodity_fraction = excluded.commodity_fraction,
			is_template = excluded.is_template,
			is_exported = excluded.is_exported,
			scheduled_action_uid = excluded.scheduled_action_uid;
	`
	splitQuery := `
		INSERT INTO splits (uid, transaction_uid, account_uid, amount_num, amount_denom,
			currency_code, memo, split_type, reconcile_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	conn := connFrom(ctx, r.db)
	for _, txn := range transactions {
		_, err := conn.ExecContext(ctx, txnQuery,
			txn.UID, bookUID, txn.Description, txn.Notes, txn.Timestamp, txn.CreatedAt,
			txn.CurrencyCode, txn.Commodity.SmallestFraction, txn.IsTemplate, txn.IsExported,
			txn.ScheduledActionUID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save transaction %s: %w", txn.UID, err)
		}
		// Replace rather than merge: split UIDs may change across exports
		// of the same transaction.
		if _, err := conn.ExecContext(ctx, `DELETE FROM splits WHERE transaction_uid = ?;`, txn.UID); err != nil {
			return 0, fmt.Errorf("failed to clear splits of %s: %w", txn.UID, err)
		}
		for _, split := range txn.Splits {
			_, err := conn.ExecContext(ctx, splitQuery,
				split.UID, txn.UID, split.AccountUID,
				split.Amount.Numerator(), split.Amount.Denominator(),
				split.Amount.Commodity().Mnemonic, split.Memo, split.SplitType, split.ReconcileState,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to save split %s: %w", split.UID, err)
			}
		}
	}
	return int64(len(transactions)), nil
}

const transactionColumns = `uid, description, notes, timestamp, created_at,
	currency_code, commodity_fraction, is_template, is_exported, scheduled_action_uid`

// FindTransactionByUID fetches one transaction with its splits.
func (r *SQLiteTransactionRepository) FindTransactionByUID(ctx context.Context, uid string) (*domain.Transaction, error) {
	conn := connFrom(ctx, r.db)
	row := conn.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE uid = ?;`, uid)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
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
func (r *SQLiteTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountUID string) ([]*domain.Transaction, error) {
	conn := connFrom(ctx, r.db)
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE is_template = 0 AND uid IN (SELECT transaction_uid FROM splits WHERE account_uid = ?)
		ORDER BY timestamp DESC;
	`
	rows, err := conn.QueryContext(ctx, query, accountUID)
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

func (r *SQLiteTransactionRepository) loadSplits(ctx context.Context, conn dbConn, txn *domain.Transaction) error {
	query := `
		SELECT uid, account_uid, amount_num, amount_denom, currency_code, memo, split_type, reconcile_state
		FROM splits WHERE transaction_uid = ? ORDER BY rowid;
	`
	rows, err := conn.QueryContext(ctx, query, txn.UID)
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
