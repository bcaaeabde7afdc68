package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
)

// extractedRow is the wire shape of one transaction from an extraction call.
type extractedRow struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
}

// dateLayouts are accepted in provider output, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseExtractedRows validates raw provider rows and converts them to
// transactions. Rows missing a date or description are skipped, not fatal;
// zero usable rows is a schema failure.
func parseExtractedRows(raw []json.RawMessage) ([]model.Transaction, error) {
	txns := make([]model.Transaction, 0, len(raw))
	for _, elem := range raw {
		var row extractedRow
		if err := json.Unmarshal(elem, &row); err != nil {
			continue
		}
		if strings.TrimSpace(row.Description) == "" {
			continue
		}
		date, err := parseDate(row.Date)
		if err != nil {
			continue
		}

		currency := row.Currency
		if currency == "" {
			currency = "INR"
		}

		txns = append(txns, model.Transaction{
			ID:          uuid.NewString(),
			Date:        date,
			Description: strings.TrimSpace(row.Description),
			Amount:      row.Amount,
			Currency:    currency,
		})
	}

	if len(txns) == 0 {
		return nil, fmt.Errorf("no usable rows in provider output: %w", common.ErrSchemaValidation)
	}
	return txns, nil
}

// classifiedRow is the wire shape of one classification from a batch call.
type classifiedRow struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Merchant    string  `json:"merchant"`
	Confidence  float64 `json:"confidence"`
	Index       int     `json:"index"`
}

// parseClassifiedRows validates a batch classification response against the
// chunk it answers. Every transaction must be covered exactly once; unknown
// categories are coerced to Uncategorized with zeroed confidence.
func parseClassifiedRows(raw []json.RawMessage, txns []model.Transaction) ([]model.ClassificationResult, error) {
	if len(raw) != len(txns) {
		return nil, fmt.Errorf("expected %d rows, got %d: %w", len(txns), len(raw), common.ErrSchemaValidation)
	}

	now := time.Now()
	results := make([]model.ClassificationResult, len(txns))
	seen := make(map[int]bool, len(raw))

	for pos, elem := range raw {
		var row classifiedRow
		if err := json.Unmarshal(elem, &row); err != nil {
			return nil, fmt.Errorf("row %d is not an object: %w", pos, common.ErrSchemaValidation)
		}

		idx := row.Index - 1
		if idx < 0 || idx >= len(txns) {
			// Fall back on positional order when the model omits indexes.
			idx = pos
		}
		if seen[idx] {
			return nil, fmt.Errorf("duplicate row for transaction %d: %w", idx+1, common.ErrSchemaValidation)
		}
		seen[idx] = true

		confidence := row.Confidence
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}

		category := strings.TrimSpace(row.Category)
		subcategory := strings.TrimSpace(row.Subcategory)
		if !ValidCategory(category) {
			category = model.CategoryUncategorized
			subcategory = ""
			confidence = 0
		}

		results[idx] = model.ClassificationResult{
			ClassifiedAt:  now,
			TransactionID: txns[idx].ID,
			Category:      category,
			Subcategory:   subcategory,
			MerchantName:  strings.TrimSpace(row.Merchant),
			Method:        model.MethodLLM,
			Confidence:    confidence,
		}
	}

	return results, nil
}
