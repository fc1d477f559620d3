package sqlite

import (
	"database/sql"

	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all SQLite repositories over one connection.
func NewRepositoryProvider(db *sql.DB) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		BookRepo:            newSQLiteBookRepository(db),
		AccountRepo:         newSQLiteAccountRepository(db),
		TransactionRepo:     newSQLiteTransactionRepository(db),
		ScheduledActionRepo: newSQLiteScheduledActionRepository(db),
		PreferenceRepo:      newSQLitePreferenceRepository(db),
		TxManager:           NewTxManager(db),
	}
}
