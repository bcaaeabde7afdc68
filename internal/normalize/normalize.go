// Package normalize cleans raw transaction narrations into stable forms
// used for rule lookups, pattern keys, and duplicate detection.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var (
	accountMaskRe = regexp.MustCompile(`(?i)\b(?:a/c\s*)?[x*]{2,}\s*\d{2,6}\b`)
	refNumberRe   = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?|utr|rrn|txn)\s*(?:no\.?|id)?\s*[:#]?\s*\d{4,}\b`)
	dateTokenRe   = regexp.MustCompile(`\b\d{1,2}[-/][A-Za-z0-9]{2,3}[-/]\d{2,4}\b`)
	longDigitsRe  = regexp.MustCompile(`\b\d{6,}\b`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9@\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	lettersOnlyRe = regexp.MustCompile(`[^a-z\s]`)
)

// noiseTokens carry no categorization signal and are dropped from pattern keys.
var noiseTokens = map[string]struct{}{
	"payment":     {},
	"purchase":    {},
	"txn":         {},
	"transaction": {},
	"ref":         {},
	"pg":          {},
	"gateway":     {},
	"pvt":         {},
	"ltd":         {},
	"india":       {},
}

// Description lowercases a narration, strips reference numbers, dates and
// account-mask tokens, and collapses whitespace. The result preserves
// merchant words and UPI handles so both rule lookup and transfer detection
// can run on it.
func Description(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = accountMaskRe.ReplaceAllString(s, " ")
	s = refNumberRe.ReplaceAllString(s, " ")
	s = dateTokenRe.ReplaceAllString(s, " ")
	s = longDigitsRe.ReplaceAllString(s, " ")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PatternKey derives a stable lookup key from a narration: letters only,
// noise tokens dropped, the first five unique tokens sorted. Two narrations
// for the same merchant with different reference tails map to the same key.
func PatternKey(raw string) string {
	s := strings.ToLower(raw)
	s = lettersOnlyRe.ReplaceAllString(s, " ")

	seen := make(map[string]struct{})
	tokens := make([]string, 0, 5)
	for _, tok := range strings.Fields(s) {
		if len(tok) < 2 {
			continue
		}
		if _, noisy := noiseTokens[tok]; noisy {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
		if len(tokens) == 5 {
			break
		}
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Tokens splits a normalized description into words for the statistical
// classifier, dropping noise tokens.
func Tokens(raw string) []string {
	s := Description(raw)
	s = strings.ReplaceAll(s, "@", " ")
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if _, noisy := noiseTokens[tok]; noisy {
			continue
		}
		out = append(out, tok)
	}
	return out
}
