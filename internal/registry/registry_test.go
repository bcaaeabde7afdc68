package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/normalize"
)

// memStore is an in-memory RuleStore for tests.
type memStore struct {
	rules   map[string]model.MerchantRule
	failAll bool
	mu      sync.Mutex
}

func newMemStore(rules []model.MerchantRule) *memStore {
	s := &memStore{rules: make(map[string]model.MerchantRule)}
	for _, r := range rules {
		s.rules[r.Pattern] = r
	}
	return s
}

func (s *memStore) GetRule(_ context.Context, pattern string) (*model.MerchantRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errors.New("store offline")
	}
	r, ok := s.rules[pattern]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &r, nil
}

func (s *memStore) GetAllRules(_ context.Context) ([]model.MerchantRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errors.New("store offline")
	}
	out := make([]model.MerchantRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) SaveRule(_ context.Context, rule *model.MerchantRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errors.New("store offline")
	}
	s.rules[rule.Pattern] = *rule
	return nil
}

func TestLookup_SeedFuzzyMatch(t *testing.T) {
	ctx := context.Background()
	reg := New(newMemStore(SeedRules()), nil)

	rule, err := reg.Lookup(ctx, "ZOMATO ORDER #789456")
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", rule.Category)
	assert.Equal(t, "Food Delivery", rule.Subcategory)
	assert.Equal(t, "Zomato", rule.MerchantName)
	assert.GreaterOrEqual(t, rule.Confidence, 0.70)
}

func TestLookup_NoMatch(t *testing.T) {
	ctx := context.Background()
	reg := New(newMemStore(SeedRules()), nil)

	_, err := reg.Lookup(ctx, "RANDOM PERSON TRANSFER 998877")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLookup_ExactLearnedKeyWins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(SeedRules())
	reg := New(store, nil)

	// A learned correction keyed on the normalized pattern overrides the
	// seed category for the same narration shape.
	learned := &model.MerchantRule{
		Pattern:     normalize.PatternKey("ZOMATO ORDER #789456"),
		Category:    "Food & Dining",
		Subcategory: "Office Lunches",
		Confidence:  0.99,
		Source:      model.SourceLearned,
	}
	require.NoError(t, reg.Upsert(ctx, learned))

	rule, err := reg.Lookup(ctx, "ZOMATO ORDER #111222")
	require.NoError(t, err)
	assert.Equal(t, model.SourceLearned, rule.Source)
	assert.Equal(t, "Office Lunches", rule.Subcategory)
}

func TestLookup_LongestPatternWins(t *testing.T) {
	ctx := context.Background()
	rules := []model.MerchantRule{
		{Pattern: "paytm", Category: "Shopping", Subcategory: "General", Confidence: 0.8, Source: model.SourceSeed},
		{Pattern: "paytm wallet", Category: "Transfers & Payments", Subcategory: "Wallet Top-up", Confidence: 0.95, Source: model.SourceSeed},
	}
	reg := New(newMemStore(rules), nil)

	rule, err := reg.Lookup(ctx, "PAYTM WALLET TOPUP 500")
	require.NoError(t, err)
	assert.Equal(t, "Wallet Top-up", rule.Subcategory)
}

func TestLookup_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(nil)
	store.failAll = true
	reg := New(store, nil)

	_, err := reg.Lookup(ctx, "ZOMATO ORDER")
	assert.ErrorIs(t, err, common.ErrRegistryUnavailable)
}

func TestLookup_ServesStaleSnapshotWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(SeedRules())
	reg := New(store, nil)

	// Warm the snapshot, then take the store offline and force a refresh.
	_, err := reg.Lookup(ctx, "ZOMATO ORDER")
	require.NoError(t, err)

	store.mu.Lock()
	store.failAll = true
	store.mu.Unlock()

	reg.mu.Lock()
	reg.cacheExpiry = time.Time{}
	reg.mu.Unlock()

	rule, err := reg.Lookup(ctx, "SWIGGY ORDER 123")
	require.NoError(t, err)
	assert.Equal(t, "Swiggy", rule.MerchantName)
}
