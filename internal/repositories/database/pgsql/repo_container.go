package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all Postgres repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		BookRepo:            newPgxBookRepository(pool),
		AccountRepo:         newPgxAccountRepository(pool),
		TransactionRepo:     newPgxTransactionRepository(pool),
		ScheduledActionRepo: newPgxScheduledActionRepository(pool),
		PreferenceRepo:      newPgxPreferenceRepository(pool),
		TxManager:           NewTxManager(pool),
	}
}
