package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/orchestrator"
)

const (
	defaultMinStructuralRows = 3
	defaultFallbackMinChars  = 500
)

// Config tunes the weak-parse gate in front of the LLM fallback.
type Config struct {
	// MinStructuralRows is the row count below which a structural parse is
	// considered a failure for non-trivial inputs.
	MinStructuralRows int
	// FallbackMinChars guards the LLM fallback: short texts with few rows
	// are probably just short statements, not parse failures.
	FallbackMinChars int
}

func (c *Config) applyDefaults() {
	if c.MinStructuralRows <= 0 {
		c.MinStructuralRows = defaultMinStructuralRows
	}
	if c.FallbackMinChars <= 0 {
		c.FallbackMinChars = defaultFallbackMinChars
	}
}

// LLMExtractor is the chunked model-backed statement parser.
type LLMExtractor interface {
	ExtractTransactions(ctx context.Context, text string) ([]model.Transaction, orchestrator.FailureSummary, error)
}

// Extractor turns raw statement text into transactions: structural parsers
// first, the LLM fallback only when the structural pass clearly failed.
type Extractor struct {
	llm    LLMExtractor
	logger *slog.Logger
	cfg    Config
}

// NewExtractor creates an extractor. llm may be nil to disable the fallback.
func NewExtractor(llm LLMExtractor, cfg Config, logger *slog.Logger) *Extractor {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{llm: llm, logger: logger, cfg: cfg}
}

// Extract parses statement text. The structural result stands unless it
// produced fewer than the configured minimum rows from a text long enough to
// plausibly hold more, in which case the model fallback takes over.
func (e *Extractor) Extract(ctx context.Context, text string) ([]model.Transaction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: statement text is empty", common.ErrEmptyInput)
	}

	txns := e.parseStructural(text)

	if len(txns) >= e.cfg.MinStructuralRows || len(text) <= e.cfg.FallbackMinChars {
		e.logger.Info("structural parse accepted", "rows", len(txns))
		return txns, nil
	}

	if e.llm == nil {
		e.logger.Warn("structural parse weak and no LLM fallback configured",
			"rows", len(txns), "chars", len(text))
		return txns, nil
	}

	e.logger.Info("structural parse weak, falling back to LLM",
		"rows", len(txns), "chars", len(text))

	llmTxns, summary, err := e.llm.ExtractTransactions(ctx, text)
	if err != nil {
		if len(txns) > 0 {
			e.logger.Error("LLM fallback failed, keeping structural rows",
				"error", err, "rows", len(txns))
			return txns, nil
		}
		return nil, fmt.Errorf("statement extraction failed: %w", err)
	}
	if summary.Partial() {
		e.logger.Warn("LLM fallback dropped chunks",
			"failed_chunks", len(summary.Failed),
			"total_chunks", summary.TotalChunks)
	}

	return llmTxns, nil
}

// parseStructural picks the structural parser by sniffing the layout.
func (e *Extractor) parseStructural(text string) []model.Transaction {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}

	if looksLikePhonePe(lines) {
		e.logger.Debug("detected PhonePe statement layout")
		return parsePhonePe(text)
	}
	return ParseStatementLines(text)
}
