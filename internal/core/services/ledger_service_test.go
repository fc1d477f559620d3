package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	"github.com/gncbooks/gncledger/internal/core/services"
	portssvc "github.com/gncbooks/gncledger/internal/core/ports/services"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	bookRepo *MockBookRepository
	acctRepo *MockAccountRepository
	txnRepo  *MockTransactionRepository
	service  portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.bookRepo = new(MockBookRepository)
	suite.acctRepo = new(MockAccountRepository)
	suite.txnRepo = new(MockTransactionRepository)
	suite.service = services.NewLedgerService(suite.bookRepo, suite.acctRepo, suite.txnRepo)
}

func usdCommodity() domain.Commodity {
	return domain.Commodity{Namespace: domain.CommodityNamespaceISO4217, Mnemonic: "USD", SmallestFraction: 100}
}

func (suite *LedgerServiceTestSuite) TestListAccounts_SortedWithRootFirst() {
	ctx := context.Background()
	accounts := []*domain.Account{
		{UID: "z", Name: "Zoo", FullName: "Zoo", AccountType: domain.AccountTypeExpense, Commodity: usdCommodity()},
		{UID: "root", Name: "Root", FullName: " Root", AccountType: domain.AccountTypeRoot, Commodity: usdCommodity()},
		{UID: "a", Name: "Assets", FullName: "Assets", AccountType: domain.AccountTypeAsset, Commodity: usdCommodity()},
	}
	suite.acctRepo.On("ListAccounts", ctx, "book-1").Return(accounts, nil).Once()

	got, err := suite.service.ListAccounts(ctx, "book-1", "")

	suite.Require().NoError(err)
	suite.Require().Len(got, 3)
	suite.Equal("root", got[0].UID, "ROOT sorts first via its leading-space name")
	suite.Equal("a", got[1].UID)
	suite.Equal("z", got[2].UID)
}

func (suite *LedgerServiceTestSuite) TestListAccounts_CurrencyFilter() {
	ctx := context.Background()
	eur := domain.Commodity{Namespace: domain.CommodityNamespaceISO4217, Mnemonic: "EUR", SmallestFraction: 100}
	accounts := []*domain.Account{
		{UID: "u", FullName: "Dollar", Commodity: usdCommodity()},
		{UID: "e", FullName: "Euro", Commodity: eur},
	}
	suite.acctRepo.On("ListAccounts", ctx, "book-1").Return(accounts, nil).Once()

	got, err := suite.service.ListAccounts(ctx, "book-1", "EUR")

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal("e", got[0].UID)
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance() {
	ctx := context.Background()
	account := &domain.Account{UID: "acc-cash", AccountType: domain.AccountTypeCash, Commodity: usdCommodity()}

	txn := &domain.Transaction{UID: "t1", CurrencyCode: "USD", Commodity: usdCommodity()}
	txn.AddSplit(domain.NewSplitFromSignedAmount("s1",
		domain.NewMoney(decimal.RequireFromString("100.00"), usdCommodity()), "acc-cash"))
	txn.AddSplit(domain.NewSplitFromSignedAmount("s2",
		domain.NewMoney(decimal.RequireFromString("-100.00"), usdCommodity()), "acc-other"))

	txn2 := &domain.Transaction{UID: "t2", CurrencyCode: "USD", Commodity: usdCommodity()}
	txn2.AddSplit(domain.NewSplitFromSignedAmount("s3",
		domain.NewMoney(decimal.RequireFromString("-40.00"), usdCommodity()), "acc-cash"))
	txn2.AddSplit(domain.NewSplitFromSignedAmount("s4",
		domain.NewMoney(decimal.RequireFromString("40.00"), usdCommodity()), "acc-other"))

	suite.acctRepo.On("FindAccountByUID", ctx, "acc-cash").Return(account, nil).Once()
	suite.txnRepo.On("ListTransactionsByAccount", ctx, "acc-cash").
		Return([]*domain.Transaction{txn, txn2}, nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, "acc-cash")

	suite.Require().NoError(err)
	suite.Equal("60.00", balance.ToPlainString())
	suite.Equal("USD", balance.Commodity().Mnemonic)
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance_NotFound() {
	ctx := context.Background()
	suite.acctRepo.On("FindAccountByUID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccountBalance(ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
