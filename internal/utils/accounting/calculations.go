package accounting

import (
	"github.com/shopspring/decimal"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

// NormalBalance returns the transaction type that increases an account of
// the given type. Asset-like accounts grow with debits, liability-like
// accounts with credits.
func NormalBalance(accountType domain.AccountType) domain.TransactionType {
	switch accountType {
	case domain.AccountTypeLiability, domain.AccountTypeCredit,
		domain.AccountTypePayable, domain.AccountTypeIncome,
		domain.AccountTypeEquity:
		return domain.Credit
	default:
		return domain.Debit
	}
}

// ComputeAccountBalance sums the splits posted to the account across the
// given transactions, signed by the account type's normal balance. Template
// transactions and splits in a different commodity are skipped.
func ComputeAccountBalance(account *domain.Account, transactions []*domain.Transaction) domain.Money {
	normal := NormalBalance(account.AccountType)
	sum := decimal.Zero
	for _, txn := range transactions {
		if txn.IsTemplate {
			continue
		}
		for _, split := range txn.Splits {
			if split.AccountUID != account.UID {
				continue
			}
			if !split.Amount.Commodity().Equal(account.Commodity) {
				continue
			}
			if split.SplitType == normal {
				sum = sum.Add(split.Amount.Amount())
			} else {
				sum = sum.Sub(split.Amount.Amount())
			}
		}
	}
	return domain.NewMoney(sum, account.Commodity)
}
