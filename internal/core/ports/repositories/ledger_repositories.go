package repositories

import (
	"context"
	"time"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

// Note: every bulk-add below is idempotent on UID — re-importing the same
// UID updates the stored row instead of duplicating it — and returns the
// number of rows actually written.

// BookRepository persists imported book records.
type BookRepository interface {
	SaveBook(ctx context.Context, book domain.Book) error
	FindBookByUID(ctx context.Context, uid string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
}

// AccountRepository defines the persistence operations for accounts.
type AccountRepository interface {
	BulkAddAccounts(ctx context.Context, bookUID string, accounts []*domain.Account) (int64, error)
	FindAccountByUID(ctx context.Context, uid string) (*domain.Account, error)
	ListAccounts(ctx context.Context, bookUID string) ([]*domain.Account, error)
}

// TransactionRepository defines the persistence operations for transactions
// and their splits. Saving a transaction saves its splits atomically.
type TransactionRepository interface {
	BulkAddTransactions(ctx context.Context, bookUID string, transactions []*domain.Transaction) (int64, error)
	FindTransactionByUID(ctx context.Context, uid string) (*domain.Transaction, error)
	// ListTransactionsByAccount returns the non-template transactions with
	// at least one split posted to the account, newest first.
	ListTransactionsByAccount(ctx context.Context, accountUID string) ([]*domain.Transaction, error)
}

// ScheduledActionRepository defines the persistence operations for scheduled
// actions. An action without a recurrence is rejected with
// apperrors.ErrMissingRecurrence.
type ScheduledActionRepository interface {
	BulkAddScheduledActions(ctx context.Context, bookUID string, actions []*domain.ScheduledAction) (int64, error)
	ListScheduledActions(ctx context.Context, bookUID string) ([]*domain.ScheduledAction, error)
}

// PreferenceRepository stores per-book preferences, currently the timestamp
// of last export consumed by the export subsystem.
type PreferenceRepository interface {
	SetLastExportTime(ctx context.Context, bookUID string, t time.Time) error
	GetLastExportTime(ctx context.Context, bookUID string) (time.Time, error)
}
