package services

import (
	"context"
	"sort"

	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
	portssvc "github.com/gncbooks/gncledger/internal/core/ports/services"
	"github.com/gncbooks/gncledger/internal/utils/accounting"
)

// ledgerService provides read operations over the imported ledger.
type ledgerService struct {
	bookRepo        portsrepo.BookRepository
	accountRepo     portsrepo.AccountRepository
	transactionRepo portsrepo.TransactionRepository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(bookRepo portsrepo.BookRepository, accountRepo portsrepo.AccountRepository, transactionRepo portsrepo.TransactionRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{
		bookRepo:        bookRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ListBooks implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.bookRepo.ListBooks(ctx)
}

// ListAccounts implements portssvc.LedgerSvcFacade. Accounts come back
// ordered by full name; ROOT's leading-space sentinel puts it first.
func (s *ledgerService) ListAccounts(ctx context.Context, bookUID, currencyCode string) ([]*domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, bookUID)
	if err != nil {
		return nil, err
	}
	if currencyCode != "" {
		filtered := accounts[:0]
		for _, a := range accounts {
			if a.Commodity.Mnemonic == currencyCode {
				filtered = append(filtered, a)
			}
		}
		accounts = filtered
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].FullName < accounts[j].FullName
	})
	return accounts, nil
}

// GetAccount implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetAccount(ctx context.Context, uid string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByUID(ctx, uid)
}

// GetAccountBalance implements portssvc.LedgerSvcFacade. The balance is a
// derived query over the account's splits; templates never contribute.
func (s *ledgerService) GetAccountBalance(ctx context.Context, uid string) (domain.Money, error) {
	account, err := s.accountRepo.FindAccountByUID(ctx, uid)
	if err != nil {
		return domain.Money{}, err
	}
	transactions, err := s.transactionRepo.ListTransactionsByAccount(ctx, uid)
	if err != nil {
		return domain.Money{}, err
	}
	return accounting.ComputeAccountBalance(account, transactions), nil
}

// ListAccountTransactions implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListAccountTransactions(ctx context.Context, accountUID string) ([]*domain.Transaction, error) {
	return s.transactionRepo.ListTransactionsByAccount(ctx, accountUID)
}

// GetTransaction implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetTransaction(ctx context.Context, uid string) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByUID(ctx, uid)
}
