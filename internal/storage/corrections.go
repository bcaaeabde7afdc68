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

// AppendCorrection stores a correction. Corrections are append-only; the ID
// assigned by the database is written back into the correction.
func (s *SQLiteStorage) AppendCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if correction == nil {
		return fmt.Errorf("%w: correction", ErrNilParameter)
	}
	if err := validateString(correction.PatternKey, "correction.PatternKey"); err != nil {
		return err
	}
	if err := validateString(correction.NewCategory, "correction.NewCategory"); err != nil {
		return err
	}
	if correction.CreatedAt.IsZero() {
		correction.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (transaction_id, description, pattern_key, merchant_name, old_category, new_category, new_subcategory, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, correction.TransactionID, correction.Description, correction.PatternKey,
		correction.MerchantName, correction.OldCategory, correction.NewCategory,
		correction.NewSubcategory, correction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append correction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read correction id: %w", err)
	}
	correction.ID = id

	return nil
}

// GetLatestCorrection returns the most recent correction for a pattern key.
func (s *SQLiteStorage) GetLatestCorrection(ctx context.Context, patternKey string) (*model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(patternKey, "patternKey"); err != nil {
		return nil, err
	}

	var c model.Correction
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, description, pattern_key, merchant_name, old_category, new_category, new_subcategory, created_at
		FROM corrections
		WHERE pattern_key = ?
		ORDER BY id DESC
		LIMIT 1
	`, patternKey).Scan(
		&c.ID,
		&c.TransactionID,
		&c.Description,
		&c.PatternKey,
		&c.MerchantName,
		&c.OldCategory,
		&c.NewCategory,
		&c.NewSubcategory,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no correction for pattern %q", common.ErrNotFound, patternKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get correction: %w", err)
	}

	return &c, nil
}

// ListCorrections returns all corrections, oldest first.
func (s *SQLiteStorage) ListCorrections(ctx context.Context) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, description, pattern_key, merchant_name, old_category, new_category, new_subcategory, created_at
		FROM corrections
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var c model.Correction
		if err := rows.Scan(
			&c.ID,
			&c.TransactionID,
			&c.Description,
			&c.PatternKey,
			&c.MerchantName,
			&c.OldCategory,
			&c.NewCategory,
			&c.NewSubcategory,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}

	return corrections, nil
}
