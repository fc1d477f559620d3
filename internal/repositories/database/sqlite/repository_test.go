package sqlite_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	"github.com/gncbooks/gncledger/internal/core/services"
	"github.com/gncbooks/gncledger/internal/repositories/database/sqlite"
)

// newTestDB opens a private in-memory database. The pool is pinned to a
// single connection so every statement sees the same memory store.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.InitSchema(db))
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

const sampleLedger = `<?xml version="1.0"?>
<gnc-v2>
<gnc:book>
<book:id type="guid">book-sq1</book:id>
<gnc:account>
  <act:name>Root</act:name>
  <act:id type="guid">acc-root</act:id>
  <act:type>ROOT</act:type>
</gnc:account>
<gnc:account>
  <act:name>Checking</act:name>
  <act:id type="guid">acc-checking</act:id>
  <act:type>BANK</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-root</act:parent>
</gnc:account>
<gnc:account>
  <act:name>Rent</act:name>
  <act:id type="guid">acc-rent</act:id>
  <act:type>EXPENSE</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-root</act:parent>
</gnc:account>
<gnc:transaction>
  <trn:id type="guid">txn-rent</trn:id>
  <trn:currency>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </trn:currency>
  <trn:date-posted><ts:date>2024-03-01 08:00:00 +0000</ts:date></trn:date-posted>
  <trn:date-entered><ts:date>2024-03-01 08:00:00 +0000</ts:date></trn:date-entered>
  <trn:description>March rent</trn:description>
  <trn:splits>
    <trn:split>
      <split:id type="guid">sp-rent-1</split:id>
      <split:value>120000/100</split:value>
      <split:account type="guid">acc-rent</split:account>
    </trn:split>
    <trn:split>
      <split:id type="guid">sp-rent-2</split:id>
      <split:value>-120000/100</split:value>
      <split:account type="guid">acc-checking</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
</gnc:book>
</gnc-v2>`

func TestImportTwice_DoesNotDuplicateRows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	provider := sqlite.NewRepositoryProvider(db)
	svc := services.NewImportService(provider)

	first, err := svc.ImportBook(ctx, strings.NewReader(sampleLedger), "sample.gnucash")
	require.NoError(t, err)
	require.Equal(t, "book-sq1", first.BookUID)

	second, err := svc.ImportBook(ctx, strings.NewReader(sampleLedger), "sample.gnucash")
	require.NoError(t, err)
	assert.Equal(t, first.BookUID, second.BookUID)

	assert.Equal(t, 1, countRows(t, db, "books"))
	assert.Equal(t, 3, countRows(t, db, "accounts"))
	assert.Equal(t, 1, countRows(t, db, "transactions"))
	assert.Equal(t, 2, countRows(t, db, "splits"))
}

func TestImportTwice_RoundTripsLedgerData(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	provider := sqlite.NewRepositoryProvider(db)
	svc := services.NewImportService(provider)

	_, err := svc.ImportBook(ctx, strings.NewReader(sampleLedger), "sample.gnucash")
	require.NoError(t, err)
	_, err = svc.ImportBook(ctx, strings.NewReader(sampleLedger), "sample.gnucash")
	require.NoError(t, err)

	accounts, err := provider.AccountRepo.ListAccounts(ctx, "book-sq1")
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	checking, err := provider.AccountRepo.FindAccountByUID(ctx, "acc-checking")
	require.NoError(t, err)
	assert.Equal(t, "Checking", checking.Name)
	assert.Equal(t, "Checking", checking.FullName)
	assert.Equal(t, "USD", checking.Commodity.Mnemonic)

	transactions, err := provider.TransactionRepo.ListTransactionsByAccount(ctx, "acc-checking")
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Len(t, transactions[0].Splits, 2)
	assert.Equal(t, "March rent", transactions[0].Description)
	assert.Equal(t, "1200.00", transactions[0].Splits[0].Amount.ToPlainString())
}

func TestBulkAddScheduledActions_RejectsMissingRecurrence(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	provider := sqlite.NewRepositoryProvider(db)

	action := &domain.ScheduledAction{UID: "sa-no-recurrence", ActionType: domain.ActionTransaction}
	_, err := provider.ScheduledActionRepo.BulkAddScheduledActions(ctx, "book-sq1", []*domain.ScheduledAction{action})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingRecurrence)
	assert.Equal(t, 0, countRows(t, db, "scheduled_actions"))
}
