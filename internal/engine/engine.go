// Package engine implements the layered decision engine that assigns a
// category to each transaction: merchant rules first, then the statistical
// classifier, then the LLM fallback, with transfer detection running
// alongside every strategy.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/p2p"
)

const (
	defaultThreshold    = 0.70
	defaultLargeExpense = 10000

	categoryTransfers = "Transfers & Payments"
)

// Tag constants attached to classification results.
const (
	TagP2P         = "p2p"
	TagP2PSent     = "p2p-sent"
	TagP2PReceived = "p2p-received"
	TagSplit        = "split-transaction"
	TagLarge        = "large-expense"
	TagCredit       = "credit"
	TagSubscription = "subscription"
)

// subscriptionSignals mark recurring charges in narrations.
var subscriptionSignals = []string{
	"subscription", "renewal", "recurring", "autopay", "e-mandate", "mandate",
	"netflix", "spotify", "hotstar", "prime video", "youtube premium",
}

// Options tunes engine behavior.
type Options struct {
	// Threshold is the confidence below which a result is flagged for review.
	Threshold float64
	// LargeExpense is the debit amount above which the large-expense tag applies.
	LargeExpense float64
	// EnableLLMFallback allows the LLM strategy when rules and the
	// statistical classifier both come up short.
	EnableLLMFallback bool
	// UseLLMOnly skips rules and the statistical classifier entirely.
	UseLLMOnly bool
	// AlwaysReviewLLM flags every LLM-produced result for review.
	AlwaysReviewLLM bool
}

func (o *Options) applyDefaults() {
	if o.Threshold <= 0 {
		o.Threshold = defaultThreshold
	}
	if o.LargeExpense <= 0 {
		o.LargeExpense = defaultLargeExpense
	}
}

// Engine runs the classification strategies in priority order.
type Engine struct {
	rules    RuleMatcher
	ml       Predictor
	detector TransferDetector
	llm      LLMClassifier
	logger   *slog.Logger
	opts     Options
}

// New creates an engine. llm may be nil, in which case the LLM strategy is
// skipped regardless of options.
func New(rules RuleMatcher, ml Predictor, detector TransferDetector, llm LLMClassifier, opts Options, logger *slog.Logger) *Engine {
	opts.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		rules:    rules,
		ml:       ml,
		detector: detector,
		llm:      llm,
		logger:   logger,
		opts:     opts,
	}
}

// Classify categorizes a single transaction. It never returns an error for
// a merely unclassifiable transaction; those come back Uncategorized with
// needs-review set.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction) (model.ClassificationResult, error) {
	if err := txn.Validate(); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	transfer := e.detector.Detect(txn.Description, txn.Amount)

	result := e.classifyBase(ctx, txn)
	e.finalize(ctx, &result, txn, transfer)
	return result, nil
}

// ClassifyBatch categorizes transactions, answering rule and statistical
// matches locally and sending only the remainder to the LLM in one chunked
// call. Results come back in input order.
func (e *Engine) ClassifyBatch(ctx context.Context, txns []model.Transaction) ([]model.ClassificationResult, error) {
	results := make([]model.ClassificationResult, len(txns))
	invalid := make([]bool, len(txns))
	var pendingIdx []int

	for i, txn := range txns {
		if err := txn.Validate(); err != nil {
			// One bad record never aborts the batch.
			e.logger.Warn("rejecting invalid transaction", "index", i,
				"transaction", txn.ID, "error", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
			invalid[i] = true
			results[i] = model.ClassificationResult{
				TransactionID: txn.ID,
				Category:      model.CategoryUncategorized,
				NeedsReview:   true,
				ClassifiedAt:  time.Now(),
			}
			continue
		}

		if e.opts.UseLLMOnly && e.llm != nil {
			pendingIdx = append(pendingIdx, i)
			continue
		}

		if res, ok := e.tryRules(ctx, txn); ok {
			results[i] = res
			continue
		}
		if res, ok := e.tryStatistical(txn); ok {
			results[i] = res
			continue
		}
		if e.opts.EnableLLMFallback && e.llm != nil {
			pendingIdx = append(pendingIdx, i)
			continue
		}
		results[i] = e.bestEffort(txn)
	}

	if len(pendingIdx) > 0 {
		pending := make([]model.Transaction, len(pendingIdx))
		for j, idx := range pendingIdx {
			pending[j] = txns[idx]
		}

		llmResults, summary, err := e.llm.ClassifyBatch(ctx, pending)
		if err != nil {
			e.logger.Error("LLM batch classification failed", "error", err,
				"pending", len(pending))
			for _, idx := range pendingIdx {
				results[idx] = e.bestEffort(txns[idx])
			}
		} else {
			if summary.Partial() {
				e.logger.Warn("LLM batch partially failed",
					"failed_chunks", len(summary.Failed),
					"total_chunks", summary.TotalChunks)
			}
			for j, idx := range pendingIdx {
				results[idx] = llmResults[j]
			}
		}
	}

	for i, txn := range txns {
		if invalid[i] {
			continue
		}
		transfer := e.detector.Detect(txn.Description, txn.Amount)
		e.finalize(ctx, &results[i], txn, transfer)
	}

	return results, nil
}

// classifyBase runs the ordered strategies for one transaction.
func (e *Engine) classifyBase(ctx context.Context, txn model.Transaction) model.ClassificationResult {
	if e.opts.UseLLMOnly && e.llm != nil {
		res, err := e.llm.ClassifySingle(ctx, txn)
		if err == nil {
			return res
		}
		e.logger.Warn("LLM classification failed", "transaction", txn.ID, "error", err)
		return e.bestEffort(txn)
	}

	if res, ok := e.tryRules(ctx, txn); ok {
		return res
	}
	if res, ok := e.tryStatistical(txn); ok {
		return res
	}

	if e.opts.EnableLLMFallback && e.llm != nil {
		res, err := e.llm.ClassifySingle(ctx, txn)
		if err == nil {
			return res
		}
		e.logger.Warn("LLM classification failed", "transaction", txn.ID, "error", err)
	}

	return e.bestEffort(txn)
}

// tryRules consults the merchant registry. A registry outage degrades to
// the next strategy instead of failing the transaction, and a rule below
// the confidence threshold defers to the later strategies.
func (e *Engine) tryRules(ctx context.Context, txn model.Transaction) (model.ClassificationResult, bool) {
	rule, err := e.rules.Lookup(ctx, txn.Description)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			e.logger.Warn("rule lookup degraded", "error", err)
		}
		return model.ClassificationResult{}, false
	}
	if rule.Confidence < e.opts.Threshold {
		e.logger.Debug("rule below threshold, deferring",
			"pattern", rule.Pattern, "confidence", rule.Confidence)
		return model.ClassificationResult{}, false
	}

	return model.ClassificationResult{
		TransactionID: txn.ID,
		Category:      rule.Category,
		Subcategory:   rule.Subcategory,
		MerchantName:  rule.MerchantName,
		Method:        model.MethodRule,
		Confidence:    rule.Confidence,
	}, true
}

// tryStatistical consults the trained classifier; only an answer at or
// above the threshold wins the transaction outright.
func (e *Engine) tryStatistical(txn model.Transaction) (model.ClassificationResult, bool) {
	pred := e.ml.Predict(txn.Description)
	if pred.Confidence < e.opts.Threshold {
		return model.ClassificationResult{}, false
	}

	return model.ClassificationResult{
		TransactionID: txn.ID,
		Category:      pred.Category,
		Subcategory:   pred.Subcategory,
		Method:        model.MethodML,
		Confidence:    pred.Confidence,
	}, true
}

// bestEffort is the terminal strategy: every stage has declined, so the
// transaction lands in Uncategorized flagged for review. A below-threshold
// statistical guess is logged for diagnosis but never becomes the category.
func (e *Engine) bestEffort(txn model.Transaction) model.ClassificationResult {
	if pred := e.ml.Predict(txn.Description); pred.Confidence > 0 {
		e.logger.Debug("discarding weak statistical guess",
			"transaction", txn.ID, "category", pred.Category, "confidence", pred.Confidence)
	}

	return model.ClassificationResult{
		TransactionID: txn.ID,
		Category:      model.CategoryUncategorized,
		Method:        model.MethodML,
		Confidence:    0,
		NeedsReview:   true,
	}
}

// finalize stamps shared fields, folds in transfer detection, classifies
// split line items and synthesizes tags.
func (e *Engine) finalize(ctx context.Context, result *model.ClassificationResult, txn model.Transaction, transfer p2p.Result) {
	result.TransactionID = txn.ID
	result.ClassifiedAt = time.Now()

	if result.Confidence < e.opts.Threshold {
		result.NeedsReview = true
	}
	if result.Method == model.MethodLLM && e.opts.AlwaysReviewLLM {
		result.NeedsReview = true
	}

	if transfer.IsP2P {
		result.IsP2P = true
		result.P2PDirection = transfer.Direction
		result.P2PConfidence = transfer.Confidence
		result.P2PCounterparty = transfer.Counterparty
		result.AddTag(TagP2P)
		switch transfer.Direction {
		case model.DirectionSent:
			result.AddTag(TagP2PSent)
		case model.DirectionReceived:
			result.AddTag(TagP2PReceived)
		}

		// A confident transfer outranks everything except an explicit
		// merchant rule.
		if result.Method != model.MethodRule && transfer.Confidence >= e.opts.Threshold {
			result.Category = categoryTransfers
			result.Subcategory = transfer.Subcategory
			if transfer.Confidence > result.Confidence {
				result.Confidence = transfer.Confidence
				result.NeedsReview = transfer.Confidence < e.opts.Threshold
			}
		}
	}

	if len(txn.LineItems) > 1 {
		e.classifySplits(ctx, result, txn)
	}

	if txn.IsCredit() {
		result.AddTag(TagCredit)
	}
	if txn.Amount > e.opts.LargeExpense {
		result.AddTag(TagLarge)
	}
	desc := strings.ToLower(txn.Description)
	for _, signal := range subscriptionSignals {
		if strings.Contains(desc, signal) {
			result.AddTag(TagSubscription)
			break
		}
	}
}

// classifySplits categorizes each line item independently and repoints the
// parent at the largest item's category.
func (e *Engine) classifySplits(ctx context.Context, result *model.ClassificationResult, txn model.Transaction) {
	total := 0.0
	for _, item := range txn.LineItems {
		total += item.Amount
	}

	result.IsSplit = true
	result.AddTag(TagSplit)
	result.SplitItems = make([]model.SplitItem, 0, len(txn.LineItems))

	var largest model.SplitItem
	for _, item := range txn.LineItems {
		split := model.SplitItem{
			Name:   item.Name,
			Amount: item.Amount,
		}
		if total > 0 {
			split.Share = item.Amount / total
		}

		if rule, err := e.rules.Lookup(ctx, item.Name); err == nil {
			split.Category = rule.Category
			split.Subcategory = rule.Subcategory
		} else if pred := e.ml.Predict(item.Name); pred.Confidence > 0 {
			split.Category = pred.Category
			split.Subcategory = pred.Subcategory
		} else {
			split.Category = result.Category
			split.Subcategory = result.Subcategory
		}

		result.SplitItems = append(result.SplitItems, split)
		if split.Amount > largest.Amount {
			largest = split
		}
	}

	// The parent follows the largest item, whichever strategy named the
	// parent's own category.
	if largest.Category != "" {
		result.Category = largest.Category
		result.Subcategory = largest.Subcategory
	}
}
