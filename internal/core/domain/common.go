package domain

import "time"

// Timestamps holds standard bookkeeping timestamps for domain entities.
type Timestamps struct {
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
