package corrections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/mlclass"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/normalize"
)

type memCorrectionStore struct {
	corrections []model.Correction
}

func (m *memCorrectionStore) AppendCorrection(_ context.Context, c *model.Correction) error {
	c.ID = int64(len(m.corrections) + 1)
	m.corrections = append(m.corrections, *c)
	return nil
}

func (m *memCorrectionStore) GetLatestCorrection(_ context.Context, patternKey string) (*model.Correction, error) {
	for i := len(m.corrections) - 1; i >= 0; i-- {
		if m.corrections[i].PatternKey == patternKey {
			c := m.corrections[i]
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memCorrectionStore) ListCorrections(_ context.Context) ([]model.Correction, error) {
	out := make([]model.Correction, len(m.corrections))
	copy(out, m.corrections)
	return out, nil
}

type memRuleWriter struct {
	rules []model.MerchantRule
}

func (m *memRuleWriter) Upsert(_ context.Context, rule *model.MerchantRule) error {
	m.rules = append(m.rules, *rule)
	return nil
}

type countingLearner struct {
	examples []mlclass.Example
}

func (c *countingLearner) Learn(ex mlclass.Example) bool {
	c.examples = append(c.examples, ex)
	return len(c.examples)%mlclass.RetrainThreshold == 0
}

func TestRecordDerivesPatternKey(t *testing.T) {
	mem := &memCorrectionStore{}
	s := New(mem, nil, nil, nil)

	c := &model.Correction{
		Description: "UPI-SWIGGY ORDER Ref No 123456789",
		OldCategory: "Shopping",
		NewCategory: "Food & Dining",
	}
	require.NoError(t, s.Record(context.Background(), c))

	assert.Equal(t, normalize.PatternKey("UPI-SWIGGY ORDER Ref No 123456789"), c.PatternKey)
	assert.False(t, c.CreatedAt.IsZero())
	require.Len(t, mem.corrections, 1)
}

func TestRecordRejectsIncomplete(t *testing.T) {
	s := New(&memCorrectionStore{}, nil, nil, nil)

	err := s.Record(context.Background(), &model.Correction{NewCategory: "Food & Dining"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = s.Record(context.Background(), &model.Correction{Description: "UPI-SWIGGY"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestApplyToRegistryCreatesLearnedRule(t *testing.T) {
	writer := &memRuleWriter{}
	learner := &countingLearner{}
	s := New(&memCorrectionStore{}, writer, learner, nil)

	c := &model.Correction{
		Description:    "UPI-SWIGGY ORDER",
		NewCategory:    "Food & Dining",
		NewSubcategory: "Food Delivery",
	}
	require.NoError(t, s.ApplyToRegistry(context.Background(), c))

	require.Len(t, writer.rules, 1)
	rule := writer.rules[0]
	assert.Equal(t, normalize.PatternKey("UPI-SWIGGY ORDER"), rule.Pattern)
	assert.Equal(t, model.SourceLearned, rule.Source)
	assert.Equal(t, "Food & Dining", rule.Category)
	assert.Equal(t, "Food Delivery", rule.Subcategory)
	assert.Equal(t, learnedRuleConfidence, rule.Confidence)
	assert.Equal(t, "Upi Swiggy", rule.MerchantName)
	assert.False(t, rule.LastUpdated.IsZero())

	require.Len(t, learner.examples, 1)
	assert.Equal(t, "Food & Dining", learner.examples[0].Category)
}

func TestApplyToRegistryKeepsSuppliedMerchantName(t *testing.T) {
	writer := &memRuleWriter{}
	s := New(&memCorrectionStore{}, writer, nil, nil)

	c := &model.Correction{
		Description:  "UPI-SWIGGY ORDER",
		MerchantName: "Swiggy",
		NewCategory:  "Food & Dining",
	}
	require.NoError(t, s.ApplyToRegistry(context.Background(), c))
	require.Len(t, writer.rules, 1)
	assert.Equal(t, "Swiggy", writer.rules[0].MerchantName)
}

func TestRecordAndApplyRoundTrip(t *testing.T) {
	mem := &memCorrectionStore{}
	writer := &memRuleWriter{}
	s := New(mem, writer, nil, nil)

	first := &model.Correction{
		Description: "POS BIG BAZAAR MUMBAI",
		NewCategory: "Shopping",
	}
	require.NoError(t, s.RecordAndApply(context.Background(), first))

	second := &model.Correction{
		Description: "POS BIG BAZAAR MUMBAI",
		NewCategory: "Groceries",
	}
	require.NoError(t, s.RecordAndApply(context.Background(), second))

	// History keeps both versions; the latest read and the registry see the
	// second correction.
	history, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 2)

	latest, err := s.Latest(context.Background(), "POS BIG BAZAAR MUMBAI")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", latest.NewCategory)

	require.Len(t, writer.rules, 2)
	assert.Equal(t, "Groceries", writer.rules[1].Category)
}

func TestApplyToRegistryNoUsablePattern(t *testing.T) {
	s := New(&memCorrectionStore{}, &memRuleWriter{}, nil, nil)
	err := s.ApplyToRegistry(context.Background(), &model.Correction{Description: "1", NewCategory: "Shopping"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
