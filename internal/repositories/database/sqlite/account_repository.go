package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// SQLiteAccountRepository persists accounts in SQLite.
type SQLiteAccountRepository struct {
	db *sql.DB
}

func newSQLiteAccountRepository(db *sql.DB) portsrepo.AccountRepository {
	return &SQLiteAccountRepository{db: db}
}

var _ portsrepo.AccountRepository = (*SQLiteAccountRepository)(nil)

// BulkAddAccounts upserts the given accounts; re-importing the same UID
// updates the stored row instead of duplicating it.
func (r *SQLiteAccountRepository) BulkAddAccounts(ctx context.Context, bookUID string, accounts []*domain.Account) (int64, error) {
	query := `
		INSERT INTO accounts (uid, book_uid, name, full_name, description, account_type, parent_uid,
			commodity_namespace, commodity_code, commodity_fraction,
			placeholder, hidden, favorite, color, default_transfer_account_uid, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			full_name = excluded.full_name,
			description = excluded.description,
			account_type = excluded.account_type,
			parent_uid = excluded.parent_uid,
			commodity_namespace = excluded.commodity_namespace,
			commodity_code = excluded.commodity_code,
			commodity_fraction = excluded.commodity_fraction,
			placeholder = excluded.placeholder,
			hidden = excluded.hidden,
			favorite = excluded.favorite,
			color = excluded.color,
			default_transfer_account_uid = excluded.default_transfer_account_uid,
			modified_at = excluded.modified_at;
	`
	conn := connFrom(ctx, r.db)
	now := time.Now().UTC()
	for _, acct := range accounts {
		var parentUID sql.NullString
		if acct.ParentUID != "" {
			parentUID = sql.NullString{String: acct.ParentUID, Valid: true}
		}
		_, err := conn.ExecContext(ctx, query,
			acct.UID, bookUID, acct.Name, acct.FullName, acct.Description, acct.AccountType, parentUID,
			acct.Commodity.Namespace, acct.Commodity.Mnemonic, acct.Commodity.SmallestFraction,
			acct.Placeholder, acct.Hidden, acct.Favorite, acct.Color, acct.DefaultTransferAccountUID,
			now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save account %s: %w", acct.UID, err)
		}
	}
	return int64(len(accounts)), nil
}

const accountColumns = `uid, name, full_name, description, account_type, parent_uid,
	commodity_namespace, commodity_code, commodity_fraction,
	placeholder, hidden, favorite, color, default_transfer_account_uid, created_at, modified_at`

// FindAccountByUID fetches one account.
func (r *SQLiteAccountRepository) FindAccountByUID(ctx context.Context, uid string) (*domain.Account, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE uid = ?;`, uid)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", uid, err)
	}
	return acct, nil
}

// ListAccounts returns every account of a book.
func (r *SQLiteAccountRepository) ListAccounts(ctx context.Context, bookUID string) ([]*domain.Account, error) {
	rows, err := connFrom(ctx, r.db).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE book_uid = ?;`, bookUID)
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
	var parentUID sql.NullString
	err := row.Scan(&acct.UID, &acct.Name, &acct.FullName, &acct.Description, &acct.AccountType, &parentUID,
		&acct.Commodity.Namespace, &acct.Commodity.Mnemonic, &acct.Commodity.SmallestFraction,
		&acct.Placeholder, &acct.Hidden, &acct.Favorite, &acct.Color, &acct.DefaultTransferAccountUID,
		&acct.CreatedAt, &acct.ModifiedAt)
	if err != nil {
		return nil, err
	}
	acct.ParentUID = parentUID.String
	return &acct, nil
}
