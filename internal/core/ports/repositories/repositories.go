package repositories

import "context"

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	BookRepo            BookRepository
	AccountRepo         AccountRepository
	TransactionRepo     TransactionRepository
	ScheduledActionRepo ScheduledActionRepository
	PreferenceRepo      PreferenceRepository
	TxManager           TransactionManager
}

// TransactionManager runs a function inside a single store transaction so a
// multi-step commit is all-or-nothing. Repositories called with the context
// passed to fn participate in that transaction.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
