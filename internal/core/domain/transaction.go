package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a split is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Invert returns the opposite transaction type.
func (t TransactionType) Invert() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// ReconcileState tracks whether a split has been reconciled against a
// statement.
type ReconcileState string

const (
	ReconcileNotReconciled ReconcileState = "n"
	ReconcileCleared       ReconcileState = "c"
	ReconcileReconciled    ReconcileState = "y"
)

// Split is one leg of a transaction: an amount posted to one account.
// The stored amount is always non-negative; direction is carried by
// SplitType, never by the amount's sign.
type Split struct {
	UID            string          `json:"uid"`
	TransactionUID string          `json:"transactionUID"`
	AccountUID     string          `json:"accountUID"`
	Amount         Money           `json:"amount"`
	Memo           string          `json:"memo"`
	SplitType      TransactionType `json:"splitType"`
	ReconcileState ReconcileState  `json:"reconcileState"`
}

// NewSplitFromSignedAmount normalizes a signed amount into the unsigned
// amount + explicit type convention: negative values become credits.
// This is the single conversion point for legacy signed-value inputs.
func NewSplitFromSignedAmount(uid string, amount Money, accountUID string) *Split {
	splitType := Debit
	if amount.IsNegative() {
		splitType = Credit
	}
	return &Split{
		UID:            uid,
		AccountUID:     accountUID,
		Amount:         amount.Abs(),
		SplitType:      splitType,
		ReconcileState: ReconcileNotReconciled,
	}
}

// SignedAmount returns the split amount with the sign implied by its type:
// debits positive, credits negative.
func (s *Split) SignedAmount() decimal.Decimal {
	if s.SplitType == Credit {
		return s.Amount.Amount().Neg()
	}
	return s.Amount.Amount()
}

// IsPairOf reports whether the other split complements this one in a simple
// double-entry transfer: same transaction, same absolute amount, opposite type.
func (s *Split) IsPairOf(other *Split) bool {
	return s.TransactionUID == other.TransactionUID &&
		s.Amount.Equal(other.Amount) &&
		s.SplitType == other.SplitType.Invert()
}

// CreatePair returns the complementing split of a simple transfer into the
// given account: same amount, opposite type.
func (s *Split) CreatePair(uid, accountUID string) *Split {
	return &Split{
		UID:            uid,
		TransactionUID: s.TransactionUID,
		AccountUID:     accountUID,
		Amount:         s.Amount,
		Memo:           s.Memo,
		SplitType:      s.SplitType.Invert(),
		ReconcileState: ReconcileNotReconciled,
	}
}

// Transaction is a named, timestamped set of splits. A balanced transaction's
// splits sum to zero in every currency they touch.
type Transaction struct {
	UID          string    `json:"uid"`
	Description  string    `json:"description"`
	Notes        string    `json:"notes"`
	Timestamp    time.Time `json:"timestamp"` // date the event occurred
	CreatedAt    time.Time `json:"createdAt"` // date the entry was recorded
	CurrencyCode string    `json:"currencyCode"`
	Commodity    Commodity `json:"commodity"`
	Splits       []*Split  `json:"splits"`
	// IsTemplate marks a pattern transaction owned by a scheduled action;
	// templates are excluded from balances and reports.
	IsTemplate bool `json:"isTemplate"`
	IsExported bool `json:"isExported"`
	// ScheduledActionUID links a transaction generated from a scheduled
	// action back to its rule.
	ScheduledActionUID string `json:"scheduledActionUID"`
}

// AddSplit appends a split and sets its back-reference to this transaction.
// The account assignment is the caller's responsibility; no account is ever
// invented here.
func (t *Transaction) AddSplit(s *Split) {
	s.TransactionUID = t.UID
	t.Splits = append(t.Splits, s)
}

// GetSplits returns the splits posted to the given account, or all splits
// when accountUID is empty.
func (t *Transaction) GetSplits(accountUID string) []*Split {
	if accountUID == "" {
		return t.Splits
	}
	var out []*Split
	for _, s := range t.Splits {
		if s.AccountUID == accountUID {
			out = append(out, s)
		}
	}
	return out
}

// SplitsBalance reports whether the signed split amounts sum to exactly zero
// for every currency present. The check is exact rational arithmetic; there
// is no floating tolerance.
func (t *Transaction) SplitsBalance() bool {
	sums := make(map[string]decimal.Decimal)
	for _, s := range t.Splits {
		code := s.Amount.Commodity().Mnemonic
		sums[code] = sums[code].Add(s.SignedAmount())
	}
	for _, sum := range sums {
		if !sum.IsZero() {
			return false
		}
	}
	return true
}

// Imbalance returns the signed sum of splits in the given commodity. A
// balanced transaction returns zero.
func (t *Transaction) Imbalance(commodity Commodity) Money {
	sum := decimal.Zero
	for _, s := range t.Splits {
		if s.Amount.Commodity().Equal(commodity) {
			sum = sum.Add(s.SignedAmount())
		}
	}
	return NewMoney(sum, commodity)
}
