// Package orchestrator drives chunked LLM calls for statement extraction and
// batch classification, with bounded concurrency and order-preserving merge.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/llm"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/normalize"
	"github.com/nkhandelwal/rupeewise/internal/service"
)

const (
	defaultChunkSizeItems    = 15
	defaultChunkSizeChars    = 35000
	defaultSingleCallCeiling = 40000
	defaultMaxConcurrent     = 4
	defaultChunkTimeout      = 90 * time.Second
)

// Config tunes chunk sizing and dispatch.
type Config struct {
	ChunkTimeout      time.Duration
	Retry             service.RetryOptions
	ChunkSizeItems    int
	ChunkSizeChars    int
	SingleCallCeiling int
	MaxConcurrent     int
}

func (c *Config) applyDefaults() {
	if c.ChunkSizeItems <= 0 {
		c.ChunkSizeItems = defaultChunkSizeItems
	}
	if c.ChunkSizeChars <= 0 {
		c.ChunkSizeChars = defaultChunkSizeChars
	}
	if c.SingleCallCeiling <= 0 {
		c.SingleCallCeiling = defaultSingleCallCeiling
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = defaultChunkTimeout
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 2
	}
}

// ChunkFailure records one chunk that was dropped after its retry.
type ChunkFailure struct {
	Err   error
	Index int
}

// FailureSummary reports partial-failure detail alongside merged results.
type FailureSummary struct {
	Failed      []ChunkFailure
	TotalChunks int
}

// Partial reports whether some but not all chunks failed.
func (s FailureSummary) Partial() bool {
	return len(s.Failed) > 0 && len(s.Failed) < s.TotalChunks
}

// Orchestrator fans statement text or transaction batches out to an LLM
// provider in chunks and merges the answers back in input order. The
// provider is chosen once at construction, not per chunk.
type Orchestrator struct {
	client llm.Client
	cache  *llm.ResultCache
	logger *slog.Logger
	cfg    Config
}

// New creates an orchestrator on the given provider client.
func New(client llm.Client, cfg Config, logger *slog.Logger) *Orchestrator {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client: client,
		cache:  llm.NewResultCache(0),
		logger: logger,
		cfg:    cfg,
	}
}

// Close releases the result cache's background goroutine.
func (o *Orchestrator) Close() {
	o.cache.Close()
}

// infer runs one provider call with the chunk timeout and transient retry.
func (o *Orchestrator) infer(ctx context.Context, req llm.Request) (llm.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.ChunkTimeout)
	defer cancel()

	var resp llm.Response
	err := common.WithRetry(callCtx, func() error {
		var inferErr error
		resp, inferErr = o.client.Infer(callCtx, req)
		return inferErr
	}, o.cfg.Retry)
	return resp, err
}

// runChunk executes a prompt, falling back to a stricter variant once when
// the first answer cannot be parsed or validated.
func runChunk[T any](ctx context.Context, o *Orchestrator, system, prompt, strictPrompt string, parse func(string) (T, error)) (T, error) {
	var zero T

	resp, err := o.infer(ctx, llm.Request{System: system, Prompt: prompt})
	if err == nil {
		result, parseErr := parse(resp.Text)
		if parseErr == nil {
			return result, nil
		}
		err = parseErr
	}

	o.logger.Warn("chunk failed, retrying with strict prompt", "error", err)

	resp, retryErr := o.infer(ctx, llm.Request{System: system, Prompt: strictPrompt})
	if retryErr != nil {
		return zero, fmt.Errorf("chunk failed after strict retry: %w", retryErr)
	}
	result, parseErr := parse(resp.Text)
	if parseErr != nil {
		return zero, fmt.Errorf("chunk failed after strict retry: %w", parseErr)
	}
	return result, nil
}

// ExtractTransactions parses freeform statement text into transactions.
// Text over the single-call ceiling is chunked on line boundaries; chunks
// run concurrently but results merge in chunk order, deduplicated on
// (date, normalized description, amount) keeping the first occurrence.
func (o *Orchestrator) ExtractTransactions(ctx context.Context, text string) ([]model.Transaction, FailureSummary, error) {
	var chunks []string
	if len(text) <= o.cfg.SingleCallCeiling {
		chunks = []string{text}
	} else {
		chunks = ChunkText(text, o.cfg.ChunkSizeChars)
	}

	summary := FailureSummary{TotalChunks: len(chunks)}
	perChunk := make([][]model.Transaction, len(chunks))
	failures := make([]error, len(chunks))

	o.logger.Info("extracting transactions",
		"chars", len(text),
		"chunks", len(chunks),
		"provider", o.client.Name())

	o.dispatch(ctx, failures, func(i int) {
		txns, err := runChunk(ctx, o, extractionSystem,
			extractionPrompt(chunks[i]), strictExtractionPrompt(chunks[i]),
			func(text string) ([]model.Transaction, error) {
				raw, err := llm.ExtractJSONArray(text)
				if err != nil {
					return nil, err
				}
				return parseExtractedRows(raw)
			})
		if err != nil {
			failures[i] = err
			return
		}
		perChunk[i] = txns
	})

	for i, err := range failures {
		if err != nil {
			o.logger.Error("dropping failed chunk", "chunk", i, "error", err)
			summary.Failed = append(summary.Failed, ChunkFailure{Index: i, Err: err})
		}
	}

	if len(summary.Failed) == len(chunks) {
		return nil, summary, fmt.Errorf("extraction failed for all %d chunks: %w", len(chunks), common.ErrAllChunksFailed)
	}

	merged := mergeTransactions(perChunk)
	return merged, summary, nil
}

// mergeTransactions flattens per-chunk results in chunk order and drops
// duplicates across chunk boundaries, keeping the first occurrence.
func mergeTransactions(perChunk [][]model.Transaction) []model.Transaction {
	var merged []model.Transaction
	seen := make(map[string]bool)

	for _, txns := range perChunk {
		for _, txn := range txns {
			key := fmt.Sprintf("%s|%s|%.2f",
				txn.Date.Format("2006-01-02"),
				normalize.Description(txn.Description),
				txn.Amount)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, txn)
		}
	}
	return merged
}

// ClassifyBatch categorizes transactions in fixed-size chunks. A chunk that
// fails even the strict retry yields Uncategorized needs-review results for
// its transactions rather than failing the batch; only a total wipeout
// returns an error.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, txns []model.Transaction) ([]model.ClassificationResult, FailureSummary, error) {
	if len(txns) == 0 {
		return nil, FailureSummary{}, nil
	}

	batches := chunkTransactions(txns, o.cfg.ChunkSizeItems)
	summary := FailureSummary{TotalChunks: len(batches)}
	results := make([]model.ClassificationResult, len(txns))
	failures := make([]error, len(batches))

	o.logger.Info("classifying batch",
		"transactions", len(txns),
		"chunks", len(batches),
		"provider", o.client.Name())

	o.dispatch(ctx, failures, func(i int) {
		batch := batches[i]
		chunkResults, err := runChunk(ctx, o, classifySystem,
			batchClassifyPrompt(batch), strictBatchClassifyPrompt(batch),
			func(text string) ([]model.ClassificationResult, error) {
				raw, err := llm.ExtractJSONArray(text)
				if err != nil {
					return nil, err
				}
				return parseClassifiedRows(raw, batch)
			})
		if err != nil {
			failures[i] = err
			return
		}
		copy(results[i*o.cfg.ChunkSizeItems:], chunkResults)
	})

	for i, err := range failures {
		if err == nil {
			continue
		}
		o.logger.Error("chunk classification failed", "chunk", i, "error", err)
		summary.Failed = append(summary.Failed, ChunkFailure{Index: i, Err: err})
		for j, txn := range batches[i] {
			results[i*o.cfg.ChunkSizeItems+j] = fallbackResult(txn)
		}
	}

	if len(summary.Failed) == len(batches) {
		return nil, summary, fmt.Errorf("classification failed for all %d chunks: %w", len(batches), common.ErrAllChunksFailed)
	}

	return results, summary, nil
}

// ClassifySingle categorizes one transaction, consulting the result cache
// keyed on the transaction hash first.
func (o *Orchestrator) ClassifySingle(ctx context.Context, txn model.Transaction) (model.ClassificationResult, error) {
	key := txn.GenerateHash()
	if cached, ok := o.cache.Get(key); ok {
		cached.TransactionID = txn.ID
		return cached, nil
	}

	results, err := runChunk(ctx, o, classifySystem,
		singleClassifyPrompt(txn), strictBatchClassifyPrompt([]model.Transaction{txn}),
		func(text string) ([]model.ClassificationResult, error) {
			raw, err := llm.ExtractJSONArray(text)
			if err != nil {
				return nil, err
			}
			return parseClassifiedRows(raw, []model.Transaction{txn})
		})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to classify transaction %s: %w", txn.ID, err)
	}

	o.cache.Set(key, results[0])
	return results[0], nil
}

// dispatch runs fn for indexes 0..len(failures)-1 with bounded concurrency.
// An index never scheduled because the context ended is recorded as a failed
// chunk, so callers always see one outcome per slot.
func (o *Orchestrator) dispatch(ctx context.Context, failures []error, fn func(i int)) {
	sem := make(chan struct{}, o.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i := range failures {
		select {
		case <-ctx.Done():
			for j := i; j < len(failures); j++ {
				failures[j] = fmt.Errorf("chunk %d never dispatched: %w", j, ctx.Err())
			}
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// fallbackResult is the placeholder for a transaction whose chunk was dropped.
func fallbackResult(txn model.Transaction) model.ClassificationResult {
	return model.ClassificationResult{
		ClassifiedAt:  time.Now(),
		TransactionID: txn.ID,
		Category:      model.CategoryUncategorized,
		Method:        model.MethodLLM,
		Confidence:    0,
		NeedsReview:   true,
	}
}
