package dto

// ImportSummary reports what one import run committed.
type ImportSummary struct {
	BookUID              string `json:"bookUID"`
	AccountCount         int64  `json:"accountCount"`
	TransactionCount     int64  `json:"transactionCount"`
	ScheduledActionCount int64  `json:"scheduledActionCount"`
}
