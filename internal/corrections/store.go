// Package corrections records user category fixes and folds them back into
// the merchant registry and the statistical classifier.
package corrections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/mlclass"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/normalize"
	"github.com/nkhandelwal/rupeewise/internal/service"
)

// learnedRuleConfidence is assigned to rules created from corrections. It
// sits above the classification threshold so a corrected merchant wins the
// rule stage on the next sighting.
const learnedRuleConfidence = 0.95

// RuleWriter is the registry write path.
type RuleWriter interface {
	Upsert(ctx context.Context, rule *model.MerchantRule) error
}

// Learner accumulates corrected examples for retraining.
type Learner interface {
	Learn(example mlclass.Example) bool
}

// Store persists corrections and applies them to the rule registry. The
// correction history is append-only; the registry sees last-write-wins.
type Store struct {
	store   service.CorrectionStore
	rules   RuleWriter
	learner Learner
	logger  *slog.Logger
}

// New creates a correction store. rules and learner may be nil when the
// caller only wants history recording.
func New(store service.CorrectionStore, rules RuleWriter, learner Learner, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{store: store, rules: rules, learner: learner, logger: logger}
}

// Record appends a correction to the history. The pattern key is derived
// from the description when the caller did not set one.
func (s *Store) Record(ctx context.Context, c *model.Correction) error {
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("%w: correction description is required", common.ErrInvalidInput)
	}
	if strings.TrimSpace(c.NewCategory) == "" {
		return fmt.Errorf("%w: correction category is required", common.ErrInvalidInput)
	}
	if c.PatternKey == "" {
		c.PatternKey = normalize.PatternKey(c.Description)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	if err := s.store.AppendCorrection(ctx, c); err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	s.logger.Info("correction recorded",
		"pattern_key", c.PatternKey,
		"old_category", c.OldCategory,
		"new_category", c.NewCategory)
	return nil
}

// ApplyToRegistry turns a correction into a learned merchant rule and feeds
// the classifier a training example. Later corrections for the same pattern
// overwrite the rule; the history keeps every version.
func (s *Store) ApplyToRegistry(ctx context.Context, c *model.Correction) error {
	key := c.PatternKey
	if key == "" {
		key = normalize.PatternKey(c.Description)
	}
	if key == "" {
		return fmt.Errorf("%w: correction has no usable pattern", common.ErrInvalidInput)
	}

	if s.rules != nil {
		rule := &model.MerchantRule{
			Pattern:      key,
			MerchantName: s.merchantName(c),
			Category:     c.NewCategory,
			Subcategory:  c.NewSubcategory,
			Source:       model.SourceLearned,
			Confidence:   learnedRuleConfidence,
			LastUpdated:  time.Now(),
		}
		if err := s.rules.Upsert(ctx, rule); err != nil {
			return fmt.Errorf("failed to apply correction to registry: %w", err)
		}
	}

	if s.learner != nil {
		retrained := s.learner.Learn(mlclass.Example{
			Description: c.Description,
			Category:    c.NewCategory,
			Subcategory: c.NewSubcategory,
		})
		if retrained {
			s.logger.Info("classifier retrained from corrections", "pattern_key", key)
		}
	}

	return nil
}

// RecordAndApply is the common path for a user-submitted fix.
func (s *Store) RecordAndApply(ctx context.Context, c *model.Correction) error {
	if err := s.Record(ctx, c); err != nil {
		return err
	}
	return s.ApplyToRegistry(ctx, c)
}

// Latest returns the most recent correction whose pattern key matches the
// description, or common.ErrNotFound.
func (s *Store) Latest(ctx context.Context, description string) (*model.Correction, error) {
	return s.store.GetLatestCorrection(ctx, normalize.PatternKey(description))
}

// History returns all recorded corrections, oldest first.
func (s *Store) History(ctx context.Context) ([]model.Correction, error) {
	return s.store.ListCorrections(ctx)
}

// merchantName prefers the user-supplied name, falling back to a title-cased
// slice of the normalized description.
func (s *Store) merchantName(c *model.Correction) string {
	if c.MerchantName != "" {
		return c.MerchantName
	}
	fields := strings.Fields(strings.ReplaceAll(normalize.Description(c.Description), "@", " "))
	if len(fields) > 2 {
		fields = fields[:2]
	}
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
