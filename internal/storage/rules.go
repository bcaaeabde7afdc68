package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
)

// GetRule retrieves a merchant rule by its normalized pattern.
func (s *SQLiteStorage) GetRule(ctx context.Context, pattern string) (*model.MerchantRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return nil, err
	}

	var rule model.MerchantRule
	var source string
	err := s.db.QueryRowContext(ctx, `
		SELECT pattern, merchant_name, category, subcategory, source, confidence, use_count, last_updated
		FROM merchant_rules
		WHERE pattern = ?
	`, pattern).Scan(
		&rule.Pattern,
		&rule.MerchantName,
		&rule.Category,
		&rule.Subcategory,
		&source,
		&rule.Confidence,
		&rule.UseCount,
		&rule.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rule %q", common.ErrNotFound, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	rule.Source = model.RuleSource(source)

	return &rule, nil
}

// GetAllRules retrieves every merchant rule, longest pattern first.
func (s *SQLiteStorage) GetAllRules(ctx context.Context) ([]model.MerchantRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, merchant_name, category, subcategory, source, confidence, use_count, last_updated
		FROM merchant_rules
		ORDER BY LENGTH(pattern) DESC, pattern
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.MerchantRule
	for rows.Next() {
		var rule model.MerchantRule
		var source string
		if err := rows.Scan(
			&rule.Pattern,
			&rule.MerchantName,
			&rule.Category,
			&rule.Subcategory,
			&source,
			&rule.Confidence,
			&rule.UseCount,
			&rule.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.Source = model.RuleSource(source)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// SaveRule inserts or updates a merchant rule by pattern.
func (s *SQLiteStorage) SaveRule(ctx context.Context, rule *model.MerchantRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateString(rule.Pattern, "rule.Pattern"); err != nil {
		return err
	}
	if err := validateString(rule.Category, "rule.Category"); err != nil {
		return err
	}
	if rule.LastUpdated.IsZero() {
		rule.LastUpdated = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_rules (pattern, merchant_name, category, subcategory, source, confidence, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pattern) DO UPDATE SET
			merchant_name = excluded.merchant_name,
			category = excluded.category,
			subcategory = excluded.subcategory,
			source = excluded.source,
			confidence = excluded.confidence,
			last_updated = excluded.last_updated
	`, rule.Pattern, rule.MerchantName, rule.Category, rule.Subcategory,
		string(rule.Source), rule.Confidence, rule.UseCount, rule.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	return nil
}
