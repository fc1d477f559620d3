package services

import (
	"context"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

// LedgerSvcFacade defines read operations over the imported ledger.
// Template transactions are excluded from balances and listings.
type LedgerSvcFacade interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)

	// ListAccounts returns the accounts of a book ordered by full name;
	// the ROOT account's leading-space sentinel sorts it first. An empty
	// currency code means no filter.
	ListAccounts(ctx context.Context, bookUID, currencyCode string) ([]*domain.Account, error)
	GetAccount(ctx context.Context, uid string) (*domain.Account, error)

	// GetAccountBalance sums the account's splits in its own commodity,
	// signed by the account type's normal balance.
	GetAccountBalance(ctx context.Context, uid string) (domain.Money, error)

	ListAccountTransactions(ctx context.Context, accountUID string) ([]*domain.Transaction, error)
	GetTransaction(ctx context.Context, uid string) (*domain.Transaction, error)
}
