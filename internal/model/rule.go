package model

import "time"

// RuleSource indicates how a merchant rule was created.
type RuleSource string

const (
	// SourceSeed indicates a rule shipped with the application.
	SourceSeed RuleSource = "seed"
	// SourceLearned indicates a rule created from a user correction.
	SourceLearned RuleSource = "learned"
)

// MerchantRule maps a normalized description pattern to a category.
// Rules are the highest-priority classification source; a lookup hit at or
// above the configured threshold short-circuits the decision engine.
type MerchantRule struct {
	LastUpdated  time.Time  `json:"last_updated"`
	Pattern      string     `json:"pattern"` // normalized description fragment or merchant key
	MerchantName string     `json:"merchant_name"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory"`
	Source       RuleSource `json:"source"`
	Confidence   float64    `json:"confidence"`
	UseCount     int        `json:"use_count"`
}
