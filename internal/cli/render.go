package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

// RenderResult formats one classification for terminal display.
func RenderResult(txn model.Transaction, result model.ClassificationResult) string {
	var b strings.Builder

	direction := "debit"
	if txn.IsCredit() {
		direction = "credit"
	}

	category := result.Category
	if result.Subcategory != "" {
		category += " / " + result.Subcategory
	}

	b.WriteString(BoldStyle.Render(txn.Description) + "\n")
	b.WriteString(fmt.Sprintf("  %s%.2f %s  %s\n", RupeeIcon, abs(txn.Amount), txn.Currency, SubtleStyle.Render(direction)))
	b.WriteString(fmt.Sprintf("  %s %s\n", SuccessStyle.Render(category), SubtleStyle.Render(fmt.Sprintf("(%s, %.0f%%)", result.Method, result.Confidence*100))))

	if result.IsP2P {
		counterparty := result.P2PCounterparty
		if counterparty == "" {
			counterparty = "unknown counterparty"
		}
		b.WriteString(fmt.Sprintf("  transfer %s %s\n", result.P2PDirection, counterparty))
	}
	if result.IsSplit {
		for _, item := range result.SplitItems {
			b.WriteString(fmt.Sprintf("  ├ %s: %s%.2f → %s\n", item.Name, RupeeIcon, item.Amount, item.Category))
		}
	}
	if len(result.Tags) > 0 {
		b.WriteString("  " + SubtleStyle.Render("tags: "+strings.Join(result.Tags, ", ")) + "\n")
	}
	if result.NeedsReview {
		b.WriteString("  " + FormatWarning("needs review") + "\n")
	}

	return b.String()
}

// RenderSummary aggregates a batch run into a category breakdown box.
func RenderSummary(txns []model.Transaction, results []model.ClassificationResult) string {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	amounts := make(map[string]float64, len(txns))
	for _, txn := range txns {
		amounts[txn.ID] = txn.Amount
	}

	var reviews, transfers int
	for _, r := range results {
		counts[r.Category]++
		totals[r.Category] += abs(amounts[r.TransactionID])
		if r.NeedsReview {
			reviews++
		}
		if r.IsP2P {
			transfers++
		}
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return totals[categories[i]] > totals[categories[j]]
	})

	var b strings.Builder
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("%-28s %4d  %s%12.2f\n", c, counts[c], RupeeIcon, totals[c]))
	}
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("\n%d transactions, %d transfers, %d flagged for review", len(results), transfers, reviews)))

	return RenderBox("Classification Summary", b.String())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
