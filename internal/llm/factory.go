package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nkhandelwal/rupeewise/internal/common"
)

// NewClient creates a provider client from configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return newGeminiClient(cfg)
	case "deepseek":
		return newDeepSeekClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// SelectProvider walks the configured providers in priority order and
// returns the first one that can be constructed. The choice is made once
// per call site, not per chunk.
func SelectProvider(configs []Config, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, cfg := range configs {
		client, err := NewClient(cfg)
		if err != nil {
			logger.Debug("provider unavailable",
				"provider", cfg.Provider,
				"error", err)
			continue
		}
		logger.Debug("selected LLM provider", "provider", client.Name())
		return client, nil
	}

	return nil, fmt.Errorf("no usable LLM provider configured: %w", common.ErrNoProvider)
}
