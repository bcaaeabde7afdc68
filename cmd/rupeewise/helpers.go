// Package main contains the rupeewise CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/nkhandelwal/rupeewise/internal/config"
	"github.com/nkhandelwal/rupeewise/internal/engine"
	"github.com/nkhandelwal/rupeewise/internal/extract"
	"github.com/nkhandelwal/rupeewise/internal/llm"
	"github.com/nkhandelwal/rupeewise/internal/mlclass"
	"github.com/nkhandelwal/rupeewise/internal/orchestrator"
	"github.com/nkhandelwal/rupeewise/internal/p2p"
	"github.com/nkhandelwal/rupeewise/internal/registry"
	"github.com/nkhandelwal/rupeewise/internal/service"
	"github.com/nkhandelwal/rupeewise/internal/storage"
)

const defaultDBPath = "$HOME/.local/share/rupeewise/rupeewise.db"

// openStorage opens the database and brings the schema up to date.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// providerConfigs builds the candidate provider list in priority order.
// API keys come from config or the provider's conventional environment
// variable; providers without a key are skipped by SelectProvider.
func providerConfigs() []llm.Config {
	priority := viper.GetStringSlice("llm.provider_priority")
	if len(priority) == 0 {
		priority = []string{"gemini", "deepseek"}
	}

	base := llm.Config{
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		Timeout:     viper.GetDuration("llm.timeout"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	configs := make([]llm.Config, 0, len(priority))
	for _, provider := range priority {
		cfg := base
		cfg.Provider = strings.ToLower(strings.TrimSpace(provider))
		switch cfg.Provider {
		case "gemini":
			cfg.APIKey = viper.GetString("llm.gemini_api_key")
			if cfg.APIKey == "" {
				cfg.APIKey = os.Getenv("GEMINI_API_KEY")
			}
		case "deepseek":
			cfg.APIKey = viper.GetString("llm.deepseek_api_key")
			if cfg.APIKey == "" {
				cfg.APIKey = os.Getenv("DEEPSEEK_API_KEY")
			}
			cfg.BaseURL = viper.GetString("llm.deepseek_base_url")
		}
		configs = append(configs, cfg)
	}

	return configs
}

// createOrchestrator selects the first usable provider and wraps it in the
// chunked orchestrator. Returns an error when no provider is configured.
func createOrchestrator() (*orchestrator.Orchestrator, error) {
	client, err := llm.SelectProvider(providerConfigs(), slog.Default())
	if err != nil {
		return nil, err
	}
	client = llm.WithRateLimit(client, viper.GetInt("llm.rate_limit"))

	cfg := orchestrator.Config{
		ChunkSizeItems:    viper.GetInt("llm.chunk_size_items"),
		ChunkSizeChars:    viper.GetInt("llm.chunk_size_chars"),
		SingleCallCeiling: viper.GetInt("llm.single_call_char_ceiling"),
		MaxConcurrent:     viper.GetInt("llm.max_concurrent"),
		ChunkTimeout:      viper.GetDuration("llm.chunk_timeout"),
		Retry: service.RetryOptions{
			MaxAttempts:  viper.GetInt("llm.max_retries"),
			InitialDelay: viper.GetDuration("llm.retry_delay"),
		},
	}

	return orchestrator.New(client, cfg, slog.Default()), nil
}

// engineOptions reads the decision engine tuning from config.
func engineOptions() engine.Options {
	opts := engine.Options{
		Threshold:         viper.GetFloat64("classification.low_confidence_threshold"),
		LargeExpense:      viper.GetFloat64("classification.large_expense_threshold"),
		EnableLLMFallback: true,
		AlwaysReviewLLM:   viper.GetBool("classification.always_review_llm"),
		UseLLMOnly:        viper.GetBool("classification.llm_only"),
	}
	if viper.IsSet("classification.llm_fallback") {
		opts.EnableLLMFallback = viper.GetBool("classification.llm_fallback")
	}
	return opts
}

// buildEngine wires the decision engine: rule registry, statistical
// classifier, transfer detector, and (when a provider is configured) the
// LLM orchestrator. A missing provider degrades to local-only strategies.
func buildEngine(ctx context.Context, db *storage.SQLiteStorage) (*engine.Engine, *orchestrator.Orchestrator, error) {
	reg := registry.New(db, slog.Default())

	var merchantNames []string
	rules, err := reg.All(ctx)
	if err != nil {
		slog.Warn("rule registry unavailable, transfer detection runs without merchant vetoes", "error", err)
	} else {
		for _, rule := range rules {
			merchantNames = append(merchantNames, rule.Pattern)
			if rule.MerchantName != "" {
				merchantNames = append(merchantNames, strings.ToLower(rule.MerchantName))
			}
		}
	}
	detector := p2p.NewDetector(merchantNames)

	// Train the statistical classifier on the seed corpus plus every
	// recorded correction, so past fixes carry across runs.
	examples := mlclass.SeedExamples()
	if history, histErr := db.ListCorrections(ctx); histErr == nil {
		for _, c := range history {
			examples = append(examples, mlclass.Example{
				Description: c.Description,
				Category:    c.NewCategory,
				Subcategory: c.NewSubcategory,
			})
		}
	}
	ml := mlclass.NewFromExamples(examples)

	var llmClassifier engine.LLMClassifier
	orch, err := createOrchestrator()
	if err != nil {
		slog.Warn("no inference provider configured, falling back to local strategies only", "error", err)
		orch = nil
	} else {
		llmClassifier = orch
	}

	eng := engine.New(reg, ml, detector, llmClassifier, engineOptions(), slog.Default())
	return eng, orch, nil
}

// extractConfig reads the structural-parse gate knobs. Zero values fall
// back to the extractor's defaults.
func extractConfig() extract.Config {
	return extract.Config{
		MinStructuralRows: viper.GetInt("extraction.min_structural_rows"),
		FallbackMinChars:  viper.GetInt("extraction.fallback_min_chars"),
	}
}

// orchestratorOrNil avoids handing the extractor a typed-nil interface.
func orchestratorOrNil(orch *orchestrator.Orchestrator) extract.LLMExtractor {
	if orch == nil {
		return nil
	}
	return orch
}
