// Package service defines shared types and interfaces that decouple the
// classification engine from its collaborators.
package service

import (
	"context"
	"time"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

// RuleStore provides key-value access to merchant rules by normalized pattern.
type RuleStore interface {
	GetRule(ctx context.Context, pattern string) (*model.MerchantRule, error)
	GetAllRules(ctx context.Context) ([]model.MerchantRule, error)
	SaveRule(ctx context.Context, rule *model.MerchantRule) error
}

// CorrectionStore persists user corrections. Appends are immutable; reads
// return the most recent correction for a pattern key.
type CorrectionStore interface {
	AppendCorrection(ctx context.Context, correction *model.Correction) error
	GetLatestCorrection(ctx context.Context, patternKey string) (*model.Correction, error)
	ListCorrections(ctx context.Context) ([]model.Correction, error)
}

// TransactionStore persists accepted transactions and their classifications.
type TransactionStore interface {
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	SaveClassification(ctx context.Context, result *model.ClassificationResult) error
	GetClassification(ctx context.Context, transactionID string) (*model.ClassificationResult, error)
}

// Storage combines all persistence concerns behind one implementation.
type Storage interface {
	RuleStore
	CorrectionStore
	TransactionStore
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
