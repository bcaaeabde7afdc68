package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/model"
)

var (
	smsAmountRe   = regexp.MustCompile(`(?i)Rs\.?\s*([\d,]+(?:\.\d+)?)`)
	smsCreditRe   = regexp.MustCompile(`(?i)\b(credited|received|deposited)\b`)
	hdfcDescRe    = regexp.MustCompile(`(?i)to (?:VPA )?([A-Z0-9@.\-]+)`)
	hdfcDateRe    = regexp.MustCompile(`(?i)on (\d{1,2}-\w{3}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})`)
	sbiDateRe     = regexp.MustCompile(`(?i)on (\d{1,2}/\d{1,2}/\d{2,4})`)
	sbiDescRe     = regexp.MustCompile(`(?i)\bto\b\s+(.+?)(?:\.|Available|Avl|Bal|Ref|$)`)
	bankSuffixRe  = regexp.MustCompile(`(?i)\b(ICICI|AXISBANK|HDFCBANK|SBI)\b`)
	smsDateLayout = []string{"2-Jan-06", "2/1/06", "2/1/2006", "2006-01-02"}
)

func parseSMSDate(token string) time.Time {
	token = strings.TrimSpace(token)
	for _, layout := range smsDateLayout {
		if t, err := time.Parse(layout, token); err == nil {
			return t
		}
	}
	return time.Now().Truncate(24 * time.Hour)
}

// ParseHDFCSMS parses an HDFC debit/credit alert, e.g.
// "HDFC Bank: Rs.450.00 debited from A/c XX1234 on 15-Jan-24 to VPA ZOMATO@ICICI Ref No 456789".
func ParseHDFCSMS(sms string) (model.Transaction, error) {
	if strings.TrimSpace(sms) == "" {
		return model.Transaction{}, fmt.Errorf("%w: empty SMS", common.ErrEmptyInput)
	}

	amountMatch := smsAmountRe.FindStringSubmatch(sms)
	if amountMatch == nil {
		return model.Transaction{}, fmt.Errorf("%w: no amount in SMS", common.ErrInvalidInput)
	}
	amount, ok := parseAmountToken(amountMatch[1])
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: unparseable amount %q", common.ErrInvalidInput, amountMatch[1])
	}
	if smsCreditRe.MatchString(sms) {
		amount = -amount
	}

	description := truncate(sms, 60)
	if m := hdfcDescRe.FindStringSubmatch(sms); m != nil {
		description = strings.TrimSpace(bankSuffixRe.ReplaceAllString(strings.ReplaceAll(m[1], "@", " "), ""))
	}

	date := time.Now().Truncate(24 * time.Hour)
	if m := hdfcDateRe.FindStringSubmatch(sms); m != nil {
		date = parseSMSDate(m[1])
	}

	return model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Currency:    "INR",
		SourceLine:  sms,
	}, nil
}

// ParseSBISMS parses an SBI debit/credit alert, e.g.
// "SBI: Your A/c XX5678 is debited by Rs.1,200.00 on 16/01/24 to BIGBASKET ORDER."
func ParseSBISMS(sms string) (model.Transaction, error) {
	if strings.TrimSpace(sms) == "" {
		return model.Transaction{}, fmt.Errorf("%w: empty SMS", common.ErrEmptyInput)
	}

	amountMatch := smsAmountRe.FindStringSubmatch(sms)
	if amountMatch == nil {
		return model.Transaction{}, fmt.Errorf("%w: no amount in SMS", common.ErrInvalidInput)
	}
	amount, ok := parseAmountToken(amountMatch[1])
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: unparseable amount %q", common.ErrInvalidInput, amountMatch[1])
	}
	if smsCreditRe.MatchString(sms) {
		amount = -amount
	}

	description := truncate(sms, 60)
	if m := sbiDescRe.FindStringSubmatch(sms); m != nil {
		description = strings.TrimSpace(m[1])
	}

	date := time.Now().Truncate(24 * time.Hour)
	if m := sbiDateRe.FindStringSubmatch(sms); m != nil {
		date = parseSMSDate(m[1])
	}

	return model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Currency:    "INR",
		SourceLine:  sms,
	}, nil
}

// ParseSMS dispatches on the sender bank name.
func ParseSMS(bank, sms string) (model.Transaction, error) {
	switch strings.ToLower(strings.TrimSpace(bank)) {
	case "hdfc":
		return ParseHDFCSMS(sms)
	case "sbi":
		return ParseSBISMS(sms)
	default:
		return model.Transaction{}, fmt.Errorf("%w: unsupported SMS bank %q", common.ErrInvalidInput, bank)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
