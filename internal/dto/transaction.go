package dto

import (
	"time"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

// SplitResponse defines the data returned for one transaction leg.
type SplitResponse struct {
	UID            string                 `json:"uid"`
	AccountUID     string                 `json:"accountUID"`
	Amount         string                 `json:"amount"` // non-negative plain decimal
	SplitType      domain.TransactionType `json:"splitType"`
	Memo           string                 `json:"memo"`
	ReconcileState domain.ReconcileState  `json:"reconcileState"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	UID          string          `json:"uid"`
	Description  string          `json:"description"`
	Notes        string          `json:"notes"`
	Timestamp    time.Time       `json:"timestamp"`
	CurrencyCode string          `json:"currencyCode"`
	IsTemplate   bool            `json:"isTemplate"`
	Splits       []SplitResponse `json:"splits"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	splits := make([]SplitResponse, len(txn.Splits))
	for i, s := range txn.Splits {
		splits[i] = SplitResponse{
			UID:            s.UID,
			AccountUID:     s.AccountUID,
			Amount:         s.Amount.ToPlainString(),
			SplitType:      s.SplitType,
			Memo:           s.Memo,
			ReconcileState: s.ReconcileState,
		}
	}
	return TransactionResponse{
		UID:          txn.UID,
		Description:  txn.Description,
		Notes:        txn.Notes,
		Timestamp:    txn.Timestamp,
		CurrencyCode: txn.CurrencyCode,
		IsTemplate:   txn.IsTemplate,
		Splits:       splits,
	}
}

// ToListTransactionResponse converts a slice of transactions.
func ToListTransactionResponse(txns []*domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(t)
	}
	return res
}
