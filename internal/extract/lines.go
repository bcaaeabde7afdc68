// Package extract parses bank statement text and transaction alert SMS into
// transactions, with a model-backed fallback for formats the structural
// parsers cannot read.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

// statement date tokens, most specific first
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "2/1/2006"},
	{regexp.MustCompile(`\b(\d{1,2}-[A-Za-z]{3}-\d{4})\b`), "2-Jan-2006"},
	{regexp.MustCompile(`\b(\d{1,2}-[A-Za-z]{3}-\d{2})\b`), "2-Jan-06"},
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2})\b`), "2/1/06"},
	{regexp.MustCompile(`\b([A-Za-z]{3}\s+\d{1,2},\s+\d{4})\b`), "Jan 2, 2006"},
}

func findDate(line string) (time.Time, bool) {
	for _, dp := range datePatterns {
		m := dp.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Collapse repeated spaces for the month-name layout.
		token := strings.Join(strings.Fields(m[1]), " ")
		if t, err := time.Parse(dp.layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	numericTokenRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
	amountShapeRe  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	creditMarkRe   = regexp.MustCompile(`(?i)\b(cr|credit)\b`)
	debitMarkRe    = regexp.MustCompile(`(?i)\b(dr|debit)\b`)
	firstTokenRe   = regexp.MustCompile(`^\s*\S+\s+`)
	trailingNumsRe = regexp.MustCompile(`(\s+-?\d[\d,]*(?:\.\d+)?){1,4}\s*$`)
)

// parseAmountToken converts one numeric token, tolerating Indian comma
// grouping ("1,23,456.78"). Returns false for malformed tokens.
func parseAmountToken(tok string) (float64, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(tok), ",", "")
	if !amountShapeRe.MatchString(t) {
		return 0, false
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractNumericTokens(line string) []float64 {
	var out []float64
	for _, raw := range numericTokenRe.FindAllString(line, -1) {
		if v, ok := parseAmountToken(raw); ok {
			out = append(out, v)
		}
	}
	return out
}

// guessAmount picks the signed amount from a statement line. Explicit Dr/Cr
// markers win; otherwise the last numeric is assumed to be the running
// balance and the preceding non-zero numeric is the amount.
func guessAmount(line string, nums []float64) (float64, bool) {
	if len(nums) == 0 {
		return 0, false
	}

	magnitude := abs(nums[len(nums)-1])
	if len(nums) >= 2 {
		for i := len(nums) - 2; i >= 0; i-- {
			if abs(nums[i]) > 0 {
				magnitude = abs(nums[i])
				break
			}
		}
	}

	if creditMarkRe.MatchString(line) && !debitMarkRe.MatchString(line) {
		return -magnitude, true
	}
	return magnitude, true
}

// ParseStatementLines is the generic structural parser: any line carrying a
// recognizable date and a numeric amount becomes a candidate transaction.
func ParseStatementLines(text string) []model.Transaction {
	var out []model.Transaction

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		date, ok := findDate(line)
		if !ok {
			continue
		}

		amount, ok := guessAmount(line, extractNumericTokens(line))
		if !ok {
			continue
		}

		desc := firstTokenRe.ReplaceAllString(line, "")
		desc = strings.TrimSpace(trailingNumsRe.ReplaceAllString(desc, ""))
		if len(desc) < 3 {
			continue
		}

		out = append(out, model.Transaction{
			ID:          uuid.NewString(),
			Date:        date,
			Description: desc,
			Amount:      amount,
			Currency:    "INR",
			SourceLine:  line,
		})
	}

	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
