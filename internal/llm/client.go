// Package llm provides provider-agnostic access to hosted language models
// for transaction extraction and classification.
package llm

import (
	"context"
	"time"
)

// Client is implemented by each model provider.
type Client interface {
	// Name identifies the provider, e.g. "gemini" or "deepseek".
	Name() string
	// Infer sends one prompt and returns the raw completion text.
	Infer(ctx context.Context, req Request) (Response, error)
}

// Request is a single completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the provider's raw completion.
type Response struct {
	Text string
}

// Config holds provider connection settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	CacheTTL    time.Duration
	MaxTokens   int
	RateLimit   int
	Temperature float64
}
