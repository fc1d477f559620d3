package dto

import (
	"time"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

// BookResponse defines the data returned for an imported book.
type BookResponse struct {
	UID            string    `json:"uid"`
	DisplayName    string    `json:"displayName"`
	RootAccountUID string    `json:"rootAccountUID"`
	LastExportTime time.Time `json:"lastExportTime"`
}

// ToBookResponse converts a domain.Book to its DTO.
func ToBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		UID:            b.UID,
		DisplayName:    b.DisplayName,
		RootAccountUID: b.RootAccountUID,
		LastExportTime: b.LastExportTime,
	}
}
