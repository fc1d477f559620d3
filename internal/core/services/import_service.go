package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gncbooks/gncledger/internal/apperrors"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
	portssvc "github.com/gncbooks/gncledger/internal/core/ports/services"
	"github.com/gncbooks/gncledger/internal/dto"
	"github.com/gncbooks/gncledger/internal/gncxml"
	"github.com/gncbooks/gncledger/internal/middleware"
	"github.com/gncbooks/gncledger/internal/platform/commodities"
)

// importService runs the import pipeline end to end: gzip-sniffing
// decompression, the streaming parse, the post-pass, and the bulk commit
// inside a single store transaction.
type importService struct {
	repos         *portsrepo.RepositoryProvider
	commodityTab  *commodities.Table
	formulaFormat gncxml.FormulaFormat
}

// ImportOption configures the import service.
type ImportOption func(*importService)

// WithFormulaFormat overrides the locale format for template split formulas.
func WithFormulaFormat(format gncxml.FormulaFormat) ImportOption {
	return func(s *importService) { s.formulaFormat = format }
}

// NewImportService creates a new ImportService.
func NewImportService(repos *portsrepo.RepositoryProvider, opts ...ImportOption) portssvc.ImportSvcFacade {
	s := &importService{
		repos:         repos,
		commodityTab:  commodities.Default(),
		formulaFormat: gncxml.LegacyFormulaFormat,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ImportSvcFacade = (*importService)(nil)

// ImportBook implements portssvc.ImportSvcFacade.
func (s *importService) ImportBook(ctx context.Context, r io.Reader, sourceName string) (*dto.ImportSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	stream, err := gncxml.NewReader(r)
	if err != nil {
		return nil, err
	}
	// The decompression wrapper is the one resource with scoped lifetime;
	// close it on every exit path.
	defer stream.Close()

	parser := gncxml.NewParser(
		gncxml.WithCommodityLookup(s.commodityTab.ByCurrencyCode),
		gncxml.WithFormulaFormat(s.formulaFormat),
		gncxml.WithLogger(logger),
	)
	result, err := parser.Parse(stream)
	if err != nil {
		return nil, fmt.Errorf("import of %s aborted: %w", sourceName, err)
	}

	if err := validateResult(result); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := result.Book
	book.DisplayName = filepath.Base(sourceName)
	book.SourceURI = sourceName
	book.CreatedAt = now
	book.ModifiedAt = now

	summary := &dto.ImportSummary{BookUID: book.UID}

	// Transactions reference account UIDs and scheduled actions reference
	// transaction UIDs, so the commit order is fixed. The surrounding
	// store transaction makes the whole commit all-or-nothing.
	err = s.repos.TxManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repos.BookRepo.SaveBook(ctx, book); err != nil {
			return err
		}
		n, err := s.repos.AccountRepo.BulkAddAccounts(ctx, book.UID, result.Accounts)
		if err != nil {
			return err
		}
		summary.AccountCount = n

		n, err = s.repos.TransactionRepo.BulkAddTransactions(ctx, book.UID, result.Transactions)
		if err != nil {
			return err
		}
		summary.TransactionCount = n

		n, err = s.repos.ScheduledActionRepo.BulkAddScheduledActions(ctx, book.UID, result.ScheduledActions)
		if err != nil {
			return err
		}
		summary.ScheduledActionCount = n

		if lastModified, ok := latestModification(result); ok {
			if err := s.repos.PreferenceRepo.SetLastExportTime(ctx, book.UID, lastModified); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk commit of %s failed: %w", sourceName, err)
	}

	logger.Info("import committed",
		slog.String("book_uid", summary.BookUID),
		slog.Int64("accounts", summary.AccountCount),
		slog.Int64("transactions", summary.TransactionCount),
		slog.Int64("scheduled_actions", summary.ScheduledActionCount),
	)
	return summary, nil
}

// validateResult enforces the data-integrity invariants that must hold
// before anything is committed: the double-entry balance on every ordinary
// transaction, and no split posted to a placeholder account.
func validateResult(result *gncxml.Result) error {
	placeholders := make(map[string]bool)
	for _, acct := range result.Accounts {
		if acct.Placeholder {
			placeholders[acct.UID] = true
		}
	}
	for _, txn := range result.Transactions {
		if txn.IsTemplate {
			continue
		}
		if !txn.SplitsBalance() {
			return fmt.Errorf("%w: transaction %s (%q)", apperrors.ErrUnbalanced, txn.UID, txn.Description)
		}
		for _, split := range txn.Splits {
			if placeholders[split.AccountUID] {
				return fmt.Errorf("%w: split %s targets account %s", apperrors.ErrPlaceholderAccount, split.UID, split.AccountUID)
			}
		}
	}
	return nil
}

// latestModification returns the newest modification time among the imported
// ordinary transactions, used to update the timestamp-of-last-export
// preference consumed by the export subsystem.
func latestModification(result *gncxml.Result) (time.Time, bool) {
	var latest time.Time
	for _, txn := range result.Transactions {
		if txn.IsTemplate {
			continue
		}
		modified := txn.CreatedAt
		if txn.Timestamp.After(modified) {
			modified = txn.Timestamp
		}
		if modified.After(latest) {
			latest = modified
		}
	}
	return latest, !latest.IsZero()
}
