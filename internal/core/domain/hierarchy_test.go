package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

func TestResolveFullNames_Chain(t *testing.T) {
	root := &domain.Account{UID: "root", Name: "Root Account", AccountType: domain.AccountTypeRoot}
	assets := &domain.Account{UID: "assets", Name: "Assets", AccountType: domain.AccountTypeAsset, ParentUID: "root"}
	bank := &domain.Account{UID: "bank", Name: "Bank", AccountType: domain.AccountTypeBank, ParentUID: "assets"}
	checking := &domain.Account{UID: "checking", Name: "Checking", AccountType: domain.AccountTypeBank, ParentUID: "bank"}

	// Deliberately out of order: children before parents.
	accounts := []*domain.Account{checking, bank, assets, root}
	require.NoError(t, domain.ResolveFullNames(accounts))

	assert.Equal(t, " Root Account", root.FullName)
	assert.Equal(t, "Assets", assets.FullName)
	assert.Equal(t, "Assets:Bank", bank.FullName)
	assert.Equal(t, "Assets:Bank:Checking", checking.FullName)
}

func TestResolveFullNames_RootSortsFirst(t *testing.T) {
	root := &domain.Account{UID: "root", Name: "Root", AccountType: domain.AccountTypeRoot}
	aardvark := &domain.Account{UID: "a", Name: "Aardvark", AccountType: domain.AccountTypeAsset, ParentUID: "root"}

	require.NoError(t, domain.ResolveFullNames([]*domain.Account{aardvark, root}))

	// The leading space makes ROOT order before any printable name.
	assert.Less(t, root.FullName, aardvark.FullName)
}

func TestResolveFullNames_UnknownParentIsTopLevel(t *testing.T) {
	orphan := &domain.Account{UID: "o", Name: "Orphan", AccountType: domain.AccountTypeExpense, ParentUID: "missing"}

	require.NoError(t, domain.ResolveFullNames([]*domain.Account{orphan}))
	assert.Equal(t, "Orphan", orphan.FullName)
}

func TestResolveFullNames_Cycle(t *testing.T) {
	a := &domain.Account{UID: "a", Name: "A", AccountType: domain.AccountTypeAsset, ParentUID: "b"}
	b := &domain.Account{UID: "b", Name: "B", AccountType: domain.AccountTypeAsset, ParentUID: "a"}

	err := domain.ResolveFullNames([]*domain.Account{a, b})
	assert.ErrorIs(t, err, domain.ErrCyclicHierarchy)
}

func TestResolveFullNames_SelfParent(t *testing.T) {
	a := &domain.Account{UID: "a", Name: "A", AccountType: domain.AccountTypeAsset, ParentUID: "a"}

	err := domain.ResolveFullNames([]*domain.Account{a})
	assert.ErrorIs(t, err, domain.ErrCyclicHierarchy)
}

func TestResolveFullNames_MemoizedAncestors(t *testing.T) {
	// Two siblings share a resolved parent; the second resolution reuses the
	// memoized prefix.
	parent := &domain.Account{UID: "p", Name: "Expenses", AccountType: domain.AccountTypeExpense}
	food := &domain.Account{UID: "f", Name: "Food", AccountType: domain.AccountTypeExpense, ParentUID: "p"}
	rent := &domain.Account{UID: "r", Name: "Rent", AccountType: domain.AccountTypeExpense, ParentUID: "p"}

	require.NoError(t, domain.ResolveFullNames([]*domain.Account{food, rent, parent}))
	assert.Equal(t, "Expenses:Food", food.FullName)
	assert.Equal(t, "Expenses:Rent", rent.FullName)
}
