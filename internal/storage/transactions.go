package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
)

// SaveTransactions stores accepted transactions. Rows whose hash already
// exists are skipped, so re-importing the same statement is safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, hash, date, description, amount, currency, source_line, line_items)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		if err := txn.Validate(); err != nil {
			return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}

		var lineItems any
		if len(txn.LineItems) > 0 {
			encoded, jsonErr := json.Marshal(txn.LineItems)
			if jsonErr != nil {
				return fmt.Errorf("failed to encode line items for %s: %w", txn.ID, jsonErr)
			}
			lineItems = string(encoded)
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.GenerateHash(),
			txn.Date,
			txn.Description,
			txn.Amount,
			txn.Currency,
			txn.SourceLine,
			lineItems,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// SaveClassification stores or replaces the classification for a transaction.
func (s *SQLiteStorage) SaveClassification(ctx context.Context, result *model.ClassificationResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if err := validateString(result.TransactionID, "result.TransactionID"); err != nil {
		return err
	}
	if err := validateString(result.Category, "result.Category"); err != nil {
		return err
	}

	tags, err := marshalNullable(result.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	splits, err := marshalNullable(result.SplitItems)
	if err != nil {
		return fmt.Errorf("failed to encode split items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO classifications (transaction_id, category, subcategory, merchant_name, method, confidence,
			needs_review, is_p2p, p2p_direction, p2p_counterparty, p2p_confidence, is_split, tags, split_items, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			category = excluded.category,
			subcategory = excluded.subcategory,
			merchant_name = excluded.merchant_name,
			method = excluded.method,
			confidence = excluded.confidence,
			needs_review = excluded.needs_review,
			is_p2p = excluded.is_p2p,
			p2p_direction = excluded.p2p_direction,
			p2p_counterparty = excluded.p2p_counterparty,
			p2p_confidence = excluded.p2p_confidence,
			is_split = excluded.is_split,
			tags = excluded.tags,
			split_items = excluded.split_items,
			classified_at = excluded.classified_at
	`, result.TransactionID, result.Category, result.Subcategory, result.MerchantName,
		string(result.Method), result.Confidence, result.NeedsReview, result.IsP2P,
		string(result.P2PDirection), result.P2PCounterparty, result.P2PConfidence,
		result.IsSplit, tags, splits, result.ClassifiedAt)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}

	return nil
}

// GetClassification retrieves the stored classification for a transaction.
func (s *SQLiteStorage) GetClassification(ctx context.Context, transactionID string) (*model.ClassificationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	var result model.ClassificationResult
	var method, direction string
	var tags, splits sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, category, subcategory, merchant_name, method, confidence,
			needs_review, is_p2p, p2p_direction, p2p_counterparty, p2p_confidence, is_split, tags, split_items, classified_at
		FROM classifications
		WHERE transaction_id = ?
	`, transactionID).Scan(
		&result.TransactionID,
		&result.Category,
		&result.Subcategory,
		&result.MerchantName,
		&method,
		&result.Confidence,
		&result.NeedsReview,
		&result.IsP2P,
		&direction,
		&result.P2PCounterparty,
		&result.P2PConfidence,
		&result.IsSplit,
		&tags,
		&splits,
		&result.ClassifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no classification for transaction %q", common.ErrNotFound, transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}

	result.Method = model.CategorizationMethod(method)
	result.P2PDirection = model.P2PDirection(direction)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &result.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if splits.Valid && splits.String != "" {
		if err := json.Unmarshal([]byte(splits.String), &result.SplitItems); err != nil {
			return nil, fmt.Errorf("failed to decode split items: %w", err)
		}
	}

	return &result, nil
}

// marshalNullable encodes a slice as JSON, mapping empty to SQL NULL.
func marshalNullable[T any](items []T) (any, error) {
	if len(items) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
