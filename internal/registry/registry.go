// Package registry implements the merchant rule registry: a static plus
// learned lookup table mapping normalized description patterns to categories.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/normalize"
	"github.com/nkhandelwal/rupeewise/internal/service"
)

// cacheTTL controls how long the in-memory rule snapshot is served before
// re-reading from the store.
const cacheTTL = 5 * time.Minute

// Registry provides exact-then-fuzzy lookups over merchant rules.
// The store is the single source of truth; an in-memory snapshot is kept
// for lookup speed and refreshed on expiry or after writes.
type Registry struct {
	cacheExpiry time.Time
	store       service.RuleStore
	logger      *slog.Logger
	byPattern   map[string]model.MerchantRule
	ordered     []model.MerchantRule
	mu          sync.RWMutex
}

// New creates a registry backed by the given store.
func New(store service.RuleStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:     store,
		logger:    logger,
		byPattern: make(map[string]model.MerchantRule),
	}
}

// Lookup finds the best rule for a raw description. Exact pattern-key
// matches win; otherwise the longest rule pattern contained in the
// normalized description wins. Returns common.ErrNotFound when no rule
// applies and common.ErrRegistryUnavailable when the store cannot be read
// and no usable snapshot exists.
func (r *Registry) Lookup(ctx context.Context, description string) (*model.MerchantRule, error) {
	normalized := normalize.Description(description)
	if normalized == "" {
		return nil, common.ErrNotFound
	}

	if err := r.refresh(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.byPattern[normalize.PatternKey(description)]; ok {
		return &rule, nil
	}

	// Fuzzy pass: ordered holds rules sorted by pattern length, longest
	// first, so the most specific containment match wins.
	haystack := " " + normalized + " "
	for _, rule := range r.ordered {
		if strings.Contains(haystack, " "+rule.Pattern+" ") || strings.Contains(normalized, rule.Pattern) {
			return &rule, nil
		}
	}

	return nil, common.ErrNotFound
}

// Upsert writes a rule through to the store and invalidates the snapshot.
func (r *Registry) Upsert(ctx context.Context, rule *model.MerchantRule) error {
	if rule.Pattern == "" {
		return fmt.Errorf("%w: rule pattern is required", common.ErrInvalidInput)
	}
	if rule.LastUpdated.IsZero() {
		rule.LastUpdated = time.Now()
	}

	if err := r.store.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to save rule %q: %w", rule.Pattern, err)
	}

	r.mu.Lock()
	r.cacheExpiry = time.Time{}
	r.mu.Unlock()

	r.logger.Info("merchant rule saved",
		"pattern", rule.Pattern,
		"category", rule.Category,
		"source", rule.Source)
	return nil
}

// All returns the current rule set, refreshing the snapshot if needed.
func (r *Registry) All(ctx context.Context) ([]model.MerchantRule, error) {
	if err := r.refresh(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.MerchantRule, len(r.ordered))
	copy(out, r.ordered)
	return out, nil
}

func (r *Registry) refresh(ctx context.Context) error {
	r.mu.RLock()
	fresh := time.Now().Before(r.cacheExpiry)
	haveSnapshot := len(r.byPattern) > 0
	r.mu.RUnlock()

	if fresh {
		return nil
	}

	rules, err := r.store.GetAllRules(ctx)
	if err != nil {
		if haveSnapshot {
			// Serve the stale snapshot rather than fail the lookup.
			r.logger.Warn("rule store read failed, serving stale snapshot", "error", err)
			return nil
		}
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %v", common.ErrRegistryUnavailable, err)
	}

	byPattern := make(map[string]model.MerchantRule, len(rules))
	for _, rule := range rules {
		byPattern[rule.Pattern] = rule
	}
	ordered := make([]model.MerchantRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Pattern) > len(ordered[j].Pattern)
	})

	r.mu.Lock()
	r.byPattern = byPattern
	r.ordered = ordered
	r.cacheExpiry = time.Now().Add(cacheTTL)
	r.mu.Unlock()

	return nil
}
