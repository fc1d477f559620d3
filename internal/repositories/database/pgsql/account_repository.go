package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// PgxAccountRepository persists accounts in Postgres.
type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

// BulkAddAccounts upserts the given accounts; re-importing the same UID
// updates the stored row instead of duplicating it.
func (r *PgxAccountRepository) BulkAddAccounts(ctx context.Context, bookUID string, accounts []*domain.Account) (int64, error) {
	query := `
		INSERT INTO accounts (uid, book_uid, name, full_name, description, account_type, parent_uid,
			commodity_namespace, commodity_code, commodity_fraction,
			placeholder, hidden, favorite, color, default_transfer_account_uid, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			full_name = EXCLUDED.full_name,
			description = EXCLUDED.description,
			account_type = EXCLUDED.account_type,
			parent_uid = EXCLUDED.parent_uid,
			commodity_namespace = EXCLUDED.commodity_namespace,
			commodity_code = EXCLUDED.commodity_code,
			commodity_fraction = EXCLUDED.commodity_fraction,
			placeholder = EXCLUDED.placeholder,
			hidden = EXCLUDED.hidden,
			favorite = EXCLUDED.favorite,
			color = EXCLUDED.color,
			default_transfer_account_uid = EXCLUDED.default_transfer_account_uid,
			modified_at = EXCLUDED.modified_at;
	`
	conn := connFrom(ctx, r.pool)
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, acct := range accounts {
		var parentUID *string
		if acct.ParentUID != "" {
			parentUID = &acct.ParentUID
		}
		batch.Queue(query,
			acct.UID, bookUID, acct.Name, acct.FullName, acct.Description, acct.AccountType, parentUID,
			acct.Commodity.Namespace, acct.Commodity.Mnemonic, acct.Commodity.SmallestFraction,
			acct.Placeholder, acct.Hidden, acct.Favorite, acct.Color, acct.DefaultTransferAccountUID,
			now, now,
		)
	}
	if err := sendBatch(ctx, conn, batch); err != nil {
		return 0, fmt.Errorf("failed to save accounts: %w", err)
	}
	return int64(len(accounts)), nil
}

const accountColumns = `uid, name, full_name, description, account_type, parent_uid,
	commodity_namespace, commodity_code, commodity_fraction,
	placeholder, hidden, favorite, color, default_transfer_account_uid, created_at, modified_at`

// FindAccountByUID fetches one account.
func (r *PgxAccountRepository) FindAccountByUID(ctx context.Context, uid string) (*domain.Account, error) {
	row := connFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE uid = $1;`, uid)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", uid, err)
	}
	return acct, nil
}

// ListAccounts returns every account of a book.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, bookUID string) ([]*domain.Account, error) {
	rows, err := connFrom(ctx, r.pool).Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE book_uid = $1;`, bookUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var acct domain.Account
	var parentUID *string
	err := row.Scan(&acct.UID, &acct.Name, &acct.FullName, &acct.Description, &acct.AccountType, &parentUID,
		&acct.Commodity.Namespace, &acct.Commodity.Mnemonic, &acct.Commodity.SmallestFraction,
		&acct.Placeholder, &acct.Hidden, &acct.Favorite, &acct.Color, &acct.DefaultTransferAccountUID,
		&acct.CreatedAt, &acct.ModifiedAt)
	if err != nil {
		return nil, err
	}
	if parentUID != nil {
		acct.ParentUID = *parentUID
	}
	return &acct, nil
}

// sendBatch executes a batch and surfaces the first per-statement error.
func sendBatch(ctx context.Context, conn pgxConn, batch *pgx.Batch) error {
	sender, ok := conn.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		return fmt.Errorf("connection does not support batches")
	}
	results := sender.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}
