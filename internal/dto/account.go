package dto

import (
	"github.com/gncbooks/gncledger/internal/core/domain"
)

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	BookUID  string `form:"bookUID"`
	Currency string `form:"currency" binding:"omitempty,iso4217"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	UID          string             `json:"uid"`
	Name         string             `json:"name"`
	FullName     string             `json:"fullName"`
	AccountType  domain.AccountType `json:"accountType"`
	CurrencyCode string             `json:"currencyCode"`
	ParentUID    string             `json:"parentUID"` // empty for top-level accounts
	Description  string             `json:"description"`
	Placeholder  bool               `json:"placeholder"`
	Hidden       bool               `json:"hidden"`
	Favorite     bool               `json:"favorite"`
	Color        string             `json:"color"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		UID:          acc.UID,
		Name:         acc.Name,
		FullName:     acc.FullName,
		AccountType:  acc.AccountType,
		CurrencyCode: acc.Commodity.Mnemonic,
		ParentUID:    acc.ParentUID,
		Description:  acc.Description,
		Placeholder:  acc.Placeholder,
		Hidden:       acc.Hidden,
		Favorite:     acc.Favorite,
		Color:        acc.Color,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []*domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(acc)
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountUID   string `json:"accountUID"`
	Balance      string `json:"balance"` // plain decimal string, exact
	CurrencyCode string `json:"currencyCode"`
}
