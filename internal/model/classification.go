// Package model defines the core domain models used throughout the application.
package model

import "time"

// CategorizationMethod indicates which stage of the decision engine
// produced a category.
type CategorizationMethod string

// Categorization method constants, in engine priority order.
const (
	MethodRule   CategorizationMethod = "rule"
	MethodML     CategorizationMethod = "ml"
	MethodLLM    CategorizationMethod = "llm"
	MethodManual CategorizationMethod = "manual"
)

// P2PDirection is the direction of a peer-to-peer transfer.
type P2PDirection string

// P2P direction constants. Empty means not a transfer.
const (
	DirectionSent     P2PDirection = "sent"
	DirectionReceived P2PDirection = "received"
	DirectionNone     P2PDirection = ""
)

// CategoryUncategorized is the terminal fallback category when every
// classification stage declines.
const CategoryUncategorized = "Uncategorized"

// SplitItem mirrors an input line item with its own category assignment.
type SplitItem struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Amount      float64 `json:"amount"`
	Share       float64 `json:"share"` // fraction of the parent amount
}

// ClassificationResult is the categorized output for one transaction.
// Confidence is always recomputed per call, never carried over from a
// previous run.
type ClassificationResult struct {
	ClassifiedAt    time.Time            `json:"classified_at"`
	TransactionID   string               `json:"transaction_id"`
	Category        string               `json:"category"`
	Subcategory     string               `json:"subcategory"`
	MerchantName    string               `json:"merchant_name,omitempty"`
	Method          CategorizationMethod `json:"categorization_method"`
	P2PDirection    P2PDirection         `json:"p2p_direction,omitempty"`
	P2PCounterparty string               `json:"p2p_counterparty,omitempty"`
	Tags            []string             `json:"tags,omitempty"`
	SplitItems      []SplitItem          `json:"split_items,omitempty"`
	Confidence      float64              `json:"categorization_confidence"`
	P2PConfidence   float64              `json:"p2p_confidence"`
	NeedsReview     bool                 `json:"needs_review"`
	IsP2P           bool                 `json:"is_p2p"`
	IsSplit         bool                 `json:"is_split"`
}

// HasTag reports whether the result carries the given tag.
func (r *ClassificationResult) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag if not already present.
func (r *ClassificationResult) AddTag(tag string) {
	if !r.HasTag(tag) {
		r.Tags = append(r.Tags, tag)
	}
}
