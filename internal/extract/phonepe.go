package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

var (
	phonePeRowRe   = regexp.MustCompile(`(?i)^((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4})\s+(.+?)\s+(DEBIT|CREDIT)\s+₹\s*([\d,]+(?:\.\d+)?)$`)
	phonePeTxnIDRe = regexp.MustCompile(`\bTransaction ID\s+([A-Za-z0-9]+)\b`)
)

// continuation lines that belong to payment metadata, not the description
var phonePeMetaPrefixes = []string{
	"utr no", "paid by", "credited to",
	"jio prepaid reference id", "vi prepaid reference id",
}

// looksLikePhonePe sniffs the statement head for PhonePe export markers.
func looksLikePhonePe(lines []string) bool {
	limit := len(lines)
	if limit > 120 {
		limit = 120
	}
	head := strings.ToLower(strings.Join(lines[:limit], "\n"))
	if strings.Contains(head, "support.phonepe.com/statement") {
		return true
	}
	if strings.Contains(head, "transaction statement for") {
		return true
	}

	hasTxnID := false
	for _, ln := range capLines(lines, 200) {
		if strings.Contains(strings.ToLower(ln), "transaction id") {
			hasTxnID = true
			break
		}
	}
	if !hasTxnID {
		return false
	}
	for _, ln := range capLines(lines, 400) {
		low := strings.ToLower(ln)
		if (strings.Contains(low, "debit") || strings.Contains(low, "credit")) && strings.Contains(ln, "₹") {
			return true
		}
	}
	return false
}

func capLines(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

// parsePhonePe reads the PhonePe PDF export layout: a combined row line
// ("Feb 27, 2026 Paid to X DEBIT ₹150"), followed by a line carrying the
// transaction ID, with occasional wrapped description lines.
func parsePhonePe(text string) []model.Transaction {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}

	var out []model.Transaction
	var last *model.Transaction

	for _, ln := range lines {
		low := strings.ToLower(ln)

		if strings.HasPrefix(low, "page ") || strings.HasPrefix(low, "-- ") ||
			strings.HasPrefix(low, "date transaction details") {
			continue
		}
		if strings.Contains(low, "system generated statement") ||
			strings.Contains(low, "support.phonepe.com/statement") {
			continue
		}

		if m := phonePeRowRe.FindStringSubmatch(ln); m != nil {
			date, err := time.Parse("Jan 2, 2006", strings.Join(strings.Fields(m[1]), " "))
			if err != nil {
				continue
			}
			amount, ok := parseAmountToken(m[4])
			if !ok {
				continue
			}
			if strings.EqualFold(m[3], "CREDIT") {
				amount = -amount
			}

			out = append(out, model.Transaction{
				ID:          uuid.NewString(),
				Date:        date,
				Description: strings.TrimSpace(m[2]),
				Amount:      amount,
				Currency:    "INR",
				SourceLine:  ln,
			})
			last = &out[len(out)-1]
			continue
		}

		if m := phonePeTxnIDRe.FindStringSubmatch(ln); m != nil && last != nil {
			last.ID = m[1]
			continue
		}

		// Wrapped merchant names continue on the next line.
		if last != nil && len(ln) <= 140 && !isPhonePeMeta(low) {
			last.Description = strings.TrimSpace(last.Description + " " + ln)
		}
	}

	return out
}

func isPhonePeMeta(lowLine string) bool {
	for _, prefix := range phonePeMetaPrefixes {
		if strings.HasPrefix(lowLine, prefix) {
			return true
		}
	}
	return false
}
