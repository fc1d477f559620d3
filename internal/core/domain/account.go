package domain

// AccountType classifies an account in the chart of accounts.
// The values match the GnuCash account type vocabulary.
type AccountType string

const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCredit     AccountType = "CREDIT"
	AccountTypeAsset      AccountType = "ASSET"
	AccountTypeLiability  AccountType = "LIABILITY"
	AccountTypeIncome     AccountType = "INCOME"
	AccountTypeExpense    AccountType = "EXPENSE"
	AccountTypePayable    AccountType = "PAYABLE"
	AccountTypeReceivable AccountType = "RECEIVABLE"
	AccountTypeEquity     AccountType = "EQUITY"
	AccountTypeCurrency   AccountType = "CURRENCY"
	AccountTypeStock      AccountType = "STOCK"
	AccountTypeMutual     AccountType = "MUTUAL"
	AccountTypeTrading    AccountType = "TRADING"

	// AccountTypeRoot is the synthetic top of the hierarchy. It is always
	// hidden and is the only account without a parent.
	AccountTypeRoot AccountType = "ROOT"
)

// FullNameDelimiter separates ancestor names in an account's full name.
const FullNameDelimiter = ":"

// Account is a node in the hierarchical chart of accounts. Ownership of
// transactions is by reference (the account UID on each split); an account's
// transaction list is a derived query, never a source of truth.
type Account struct {
	UID         string      `json:"uid"`
	Name        string      `json:"name"`
	FullName    string      `json:"fullName"`
	Description string      `json:"description"`
	AccountType AccountType `json:"accountType"`
	ParentUID   string      `json:"parentUID"` // empty for top-level accounts
	Commodity   Commodity   `json:"commodity"`
	Placeholder bool        `json:"placeholder"`
	Hidden      bool        `json:"hidden"`
	Favorite    bool        `json:"favorite"`
	Color       string      `json:"color"` // "#rrggbb", empty when unset
	// DefaultTransferAccountUID is the preferred counter account for new
	// transactions, carried over from the account's slots.
	DefaultTransferAccountUID string `json:"defaultTransferAccountUID"`
	Timestamps
}

// IsRoot reports whether this is the synthetic ROOT account.
func (a *Account) IsRoot() bool {
	return a.AccountType == AccountTypeRoot
}
