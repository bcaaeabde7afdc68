package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// LineItem is one sub-spend inside a transaction, e.g. a parsed order item.
// Item amounts sum to at most the parent transaction amount.
type LineItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Transaction represents a single financial transaction from any source:
// a statement row, an SMS alert, or a manually entered record.
// Amount is signed: positive = debit/spend, negative = credit.
// Transactions are immutable once accepted into the pipeline.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Currency    string
	SourceLine  string // raw statement line the record was parsed from, if any
	LineItems   []LineItem
	Amount      float64
}

// IsCredit reports whether the transaction is money in.
func (t *Transaction) IsCredit() bool {
	return t.Amount < 0
}

// GenerateHash creates a stable hash for duplicate detection across imports.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		strings.ToLower(strings.TrimSpace(t.Description)))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate checks the fields required before a transaction may enter the pipeline.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s: date is required", t.ID)
	}
	return nil
}
