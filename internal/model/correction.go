package model

import "time"

// Correction records a user-submitted category fix for one transaction.
// Corrections are append-only: a later correction for the same pattern
// supersedes an earlier one but never replaces it in the history.
type Correction struct {
	CreatedAt      time.Time `json:"created_at"`
	TransactionID  string    `json:"transaction_id"`
	Description    string    `json:"description"`
	PatternKey     string    `json:"pattern_key"` // normalized key derived from the description
	MerchantName   string    `json:"merchant_name,omitempty"`
	OldCategory    string    `json:"old_category"`
	NewCategory    string    `json:"new_category"`
	NewSubcategory string    `json:"new_subcategory,omitempty"`
	ID             int64     `json:"id"`
}
