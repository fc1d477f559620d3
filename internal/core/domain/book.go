package domain

import "time"

// Book identifies one imported ledger. The UID is stable across
// export/import round-trips: re-importing a file lands in the same book.
type Book struct {
	UID            string    `json:"uid"`
	DisplayName    string    `json:"displayName"`
	RootAccountUID string    `json:"rootAccountUID"`
	SourceURI      string    `json:"sourceURI"`
	LastExportTime time.Time `json:"lastExportTime"`
	Timestamps
}
