package engine

import (
	"context"

	"github.com/nkhandelwal/rupeewise/internal/mlclass"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/orchestrator"
	"github.com/nkhandelwal/rupeewise/internal/p2p"
)

// RuleMatcher resolves a description against the merchant rule registry.
type RuleMatcher interface {
	Lookup(ctx context.Context, description string) (*model.MerchantRule, error)
}

// Predictor is the statistical classifier consulted when no rule matches.
type Predictor interface {
	Predict(description string) mlclass.Prediction
}

// TransferDetector recognizes peer-to-peer transfers. It runs on every
// transaction regardless of which strategy produces the category.
type TransferDetector interface {
	Detect(description string, amount float64) p2p.Result
}

// LLMClassifier is the model-backed fallback strategy.
type LLMClassifier interface {
	ClassifySingle(ctx context.Context, txn model.Transaction) (model.ClassificationResult, error)
	ClassifyBatch(ctx context.Context, txns []model.Transaction) ([]model.ClassificationResult, orchestrator.FailureSummary, error)
}
