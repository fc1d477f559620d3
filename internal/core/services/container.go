package services

import (
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
	portssvc "github.com/gncbooks/gncledger/internal/core/ports/services"
	"github.com/gncbooks/gncledger/internal/gncxml"
)

// NewServiceContainer wires all services against the given repositories.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, formulaFormat gncxml.FormulaFormat) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Import: NewImportService(repos, WithFormulaFormat(formulaFormat)),
		Ledger: NewLedgerService(repos.BookRepo, repos.AccountRepo, repos.TransactionRepo),
	}
}
