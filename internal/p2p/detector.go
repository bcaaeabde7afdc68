// Package p2p recognizes peer-to-peer transfers (UPI/NEFT/IMPS/RTGS/wallet)
// in raw bank narrations and extracts direction and counterparty identity.
package p2p

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

// Result describes the transfer attributes detected in one narration.
// Detection never fails; a non-transfer simply comes back with IsP2P false.
type Result struct {
	Direction          model.P2PDirection
	Relationship       string // personal | obligation | income | gift | unknown
	RelationshipDetail string // friend | family | landlord | loan | employer | freelance | unknown
	TransferMode       string // upi | neft | imps | rtgs | other
	Counterparty       string
	CounterpartyVPA    string
	CounterpartyPhone  string
	Subcategory        string
	Reason             string
	Confidence         float64
	IsP2P              bool
}

// p2pThreshold is the cumulative score at which a narration is called a
// transfer between individuals.
const p2pThreshold = 0.5

var (
	vpaRe = regexp.MustCompile(`(?i)\b([a-z0-9._+\-]{3,}@(?:okaxis|oksbi|okicici|okhdfcbank|ybl|axl|ibl|upi|paytm|apl|waaxis|waicici|wahdfcbank|wasbi|naviaxis|freecharge|kotak|indus|rbl|federal|equitas|barodampay|aubank|idfc|dbs|citi|hsbc|boi|cub|kvb|tmb|dcb|ucb|uco|pnb|cnrb|sib|jkb|kbl|nsdl|idbi|axisbank|hdfcbank|icicibank|sbibank|fifederal|airtel|jio|phonepe|gpay|bhim|slice|jupiter|fi|postbank|airtelpaymentsbank|jiopay|amazonpay))\b`)

	phoneRe = regexp.MustCompile(`\b([6-9]\d{9})\b`)

	neftNameRe = regexp.MustCompile(`(?i)(?:NEFT|IMPS|RTGS)[/\-\s]+(?:\d+[/\-\s]+)?([A-Z][A-Z\s]{3,30}?)(?:[/\-]|$)`)

	upiNameRe = regexp.MustCompile(`(?i)UPI[/\-\s]+([A-Z][A-Z\s]{2,25}?)[/\-@]`)

	appTransferRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:phonepe|gpay|google pay|paytm|bhim)\s*(?:p2p|send|transfer|upi)`),
		regexp.MustCompile(`(?i)pay to\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)`),
		regexp.MustCompile(`(?i)(?:sent to|received from|transfer (?:to|from))\s+([A-Z][a-z\s]+)`),
	}

	bareTransferRefRe = regexp.MustCompile(`(?i)^(NEFT|IMPS|UPI|RTGS)[/\-\s]+\d+`)

	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	vpaSeparatorRe  = regexp.MustCompile(`[._\-]`)
)

var transferModeRes = []struct {
	re   *regexp.Regexp
	mode string
}{
	{regexp.MustCompile(`(?i)\b(upi|vpa|gpay|phonepe|bhim|paytm\s*upi)\b`), "upi"},
	{regexp.MustCompile(`(?i)\bneft\b`), "neft"},
	{regexp.MustCompile(`(?i)\bimps\b`), "imps"},
	{regexp.MustCompile(`(?i)\brtgs\b`), "rtgs"},
}

// notP2PSignals mark merchant or institutional counterparties. Any hit means
// the narration is a purchase, not a personal transfer.
var notP2PSignals = []string{
	"pvt ltd", "private limited", "limited", "llp", "inc",
	"store", "shop", "mart", "enterprises", "traders", "agency",
	"services", "solutions", "technologies", "tech", "digital",
	"foods", "restaurant", "hotel", "school", "college",
	"hospital", "clinic", "pharmacy", "medical", "petrol", "pump", "motors",
	"amazon", "flipkart", "swiggy", "zomato",
	"razorpay", "cashfree", "instamojo", "billdesk",
}

var salaryKeywords = []string{
	"salary", "sal ", "sal/", "payroll", "stipend", "wages",
	"monthly pay", "pay slip", "hr dept", "accounts dept",
}

var freelanceKeywords = []string{
	"invoice", "payment for", "freelance", "consulting",
	"client", "professional fee",
}

var familyKeywords = []string{
	"mom", "maa", "mother", "dad", "papa", "father", "bhai", "brother",
	"didi", "sister", "sis", "bro", "wife", "husband", "beta", "beti",
	"son", "daughter", "chacha", "chachi", "mama", "mami", "nana", "nani",
	"dada", "dadi", "jiju", "family",
}

var friendKeywords = []string{
	"friend", "yaar", "dost", "buddy", "roommate", "flatmate", "colleague",
}

var rentKeywords = []string{
	"rent", "landlord", "house rent", "pg rent", "room rent",
}

var loanKeywords = []string{
	"lent", "lend", "borrowed", "borrow", "loan repay",
	"settle", "settlement", "split", "owe",
}

var giftKeywords = []string{
	"gift", "birthday", "anniversary", "wedding gift", "shaadi gift",
	"festival", "diwali", "eid", "holi", "rakhi", "christmas",
}

// individualHandles are UPI suffixes issued to personal accounts.
var individualHandles = map[string]struct{}{
	"okaxis": {}, "oksbi": {}, "okicici": {}, "okhdfcbank": {},
	"ybl": {}, "axl": {}, "ibl": {}, "apl": {}, "waaxis": {},
	"naviaxis": {}, "freecharge": {}, "kotak": {}, "indus": {},
	"rbl": {}, "federal": {}, "aubank": {}, "idfc": {},
}

// businessHandles are UPI suffixes issued to merchant aggregators.
var businessHandles = map[string]struct{}{
	"razorpay": {}, "cashfree": {}, "paytmqr": {}, "sbiepay": {}, "hdfcbankltd": {},
}

// Detector classifies narrations as personal transfers or not. It holds only
// compiled patterns and is safe for concurrent use.
type Detector struct {
	merchantNames map[string]struct{}
}

// NewDetector creates a detector. merchantNames, typically the registry's
// seeded patterns, veto P2P when a narration leads with a known merchant.
func NewDetector(merchantNames []string) *Detector {
	names := make(map[string]struct{}, len(merchantNames))
	for _, n := range merchantNames {
		names[strings.ToLower(n)] = struct{}{}
	}
	return &Detector{merchantNames: names}
}

// Detect inspects a narration and signed amount (positive = debit) and
// reports transfer attributes. No match is a normal outcome, not an error.
func (d *Detector) Detect(description string, amount float64) Result {
	desc := strings.TrimSpace(description)
	descLower := strings.ToLower(desc)

	res := Result{
		Direction:          model.DirectionSent,
		Relationship:       "unknown",
		RelationshipDetail: "unknown",
		TransferMode:       "other",
	}
	if amount < 0 {
		res.Direction = model.DirectionReceived
	}

	var (
		confidence float64
		reasons    []string
	)

	for _, tm := range transferModeRes {
		if tm.re.MatchString(desc) {
			res.TransferMode = tm.mode
			break
		}
	}

	for _, signal := range notP2PSignals {
		if matchesSignal(descLower, signal) {
			return notP2P("merchant signal: " + signal)
		}
	}

	if d.leadsWithKnownMerchant(descLower) {
		return notP2P("known merchant")
	}

	for _, kw := range salaryKeywords {
		if strings.Contains(descLower, kw) {
			res.IsP2P = true
			res.Confidence = 0.93
			res.Direction = model.DirectionReceived
			res.Relationship = "income"
			res.RelationshipDetail = "employer"
			res.Counterparty = extractOrgName(desc)
			res.Subcategory = buildSubcategory(res.Direction, res.TransferMode, "income", "employer")
			res.Reason = "salary keyword: " + kw
			return res
		}
	}

	for _, kw := range freelanceKeywords {
		if strings.Contains(descLower, kw) {
			confidence = maxFloat(confidence, 0.8)
			res.Relationship = "income"
			res.RelationshipDetail = "freelance"
			reasons = append(reasons, "freelance keyword: "+kw)
			break
		}
	}

	if m := vpaRe.FindStringSubmatch(desc); m != nil {
		vpa := strings.ToLower(m[1])
		res.CounterpartyVPA = vpa
		res.TransferMode = "upi"
		handle := vpa[strings.LastIndex(vpa, "@")+1:]

		switch {
		case inSet(businessHandles, handle):
			confidence = maxFloat(confidence, 0.15)
		case inSet(individualHandles, handle):
			confidence = maxFloat(confidence, 0.88)
			reasons = append(reasons, "individual UPI handle: "+vpa)
		default:
			confidence = maxFloat(confidence, 0.72)
			reasons = append(reasons, "UPI ID: "+vpa)
		}

		prefix := vpa[:strings.Index(vpa, "@")]
		if !containsDigit(prefix) {
			res.Counterparty = vpaToName(prefix)
		}
	}

	if m := phoneRe.FindStringSubmatch(desc); m != nil {
		phone := m[1]
		res.CounterpartyPhone = phone
		if res.Counterparty == "" {
			res.Counterparty = "Contact " + phone[len(phone)-4:]
		}
		if res.CounterpartyVPA != "" && strings.Contains(res.CounterpartyVPA, phone) {
			confidence = maxFloat(confidence, 0.91)
			res.TransferMode = "upi"
			reasons = append(reasons, "phone-based UPI: "+phone)
		} else {
			confidence = maxFloat(confidence, 0.7)
			reasons = append(reasons, "phone number: "+phone)
		}
	}

	if m := neftNameRe.FindStringSubmatch(desc); m != nil {
		name := titleCase(strings.TrimSpace(m[1]))
		if looksLikePersonName(name) {
			res.Counterparty = name
			confidence = maxFloat(confidence, 0.8)
			reasons = append(reasons, "NEFT/IMPS name: "+name)
		}
	}

	if m := upiNameRe.FindStringSubmatch(desc); m != nil {
		name := titleCase(strings.TrimSpace(m[1]))
		if looksLikePersonName(name) {
			res.Counterparty = name
			confidence = maxFloat(confidence, 0.82)
			reasons = append(reasons, "UPI name: "+name)
		}
	}

	for _, re := range appTransferRes {
		if m := re.FindStringSubmatch(desc); m != nil {
			confidence = maxFloat(confidence, 0.75)
			res.TransferMode = "upi"
			if len(m) > 1 && m[1] != "" {
				if name := titleCase(strings.TrimSpace(m[1])); looksLikePersonName(name) {
					res.Counterparty = name
				}
			}
			reasons = append(reasons, "transfer app pattern")
			break
		}
	}

	for _, kw := range familyKeywords {
		if containsWord(descLower, kw) {
			res.Relationship = "personal"
			res.RelationshipDetail = "family"
			if res.Counterparty == "" {
				res.Counterparty = titleCase(kw)
			}
			confidence = maxFloat(confidence, 0.72)
			reasons = append(reasons, "family keyword: "+kw)
			break
		}
	}

	if res.Relationship == "unknown" {
		for _, kw := range friendKeywords {
			if containsWord(descLower, kw) {
				res.Relationship = "personal"
				res.RelationshipDetail = "friend"
				confidence = maxFloat(confidence, 0.68)
				reasons = append(reasons, "friend keyword: "+kw)
				break
			}
		}
	}

	for _, kw := range rentKeywords {
		if strings.Contains(descLower, kw) {
			res.Relationship = "obligation"
			res.RelationshipDetail = "landlord"
			confidence = maxFloat(confidence, 0.7)
			reasons = append(reasons, "rent keyword: "+kw)
			break
		}
	}

	for _, kw := range loanKeywords {
		if strings.Contains(descLower, kw) {
			if res.Relationship == "unknown" {
				res.Relationship = "obligation"
				res.RelationshipDetail = "loan"
			}
			confidence = maxFloat(confidence, 0.68)
			reasons = append(reasons, "loan/settle keyword: "+kw)
			break
		}
	}

	for _, kw := range giftKeywords {
		if strings.Contains(descLower, kw) {
			res.Relationship = "gift"
			res.RelationshipDetail = "friend"
			for _, f := range familyKeywords {
				if containsWord(descLower, f) {
					res.RelationshipDetail = "family"
					break
				}
			}
			confidence = maxFloat(confidence, 0.7)
			reasons = append(reasons, "gift keyword: "+kw)
			break
		}
	}

	if confidence >= p2pThreshold && res.Relationship == "unknown" {
		res.Relationship = "personal"
	}

	if bareTransferRefRe.MatchString(desc) && confidence < 0.4 {
		confidence = 0.45
		reasons = append(reasons, "bare transfer reference")
	}

	if res.Relationship == "income" {
		res.Direction = model.DirectionReceived
	}

	if confidence < p2pThreshold {
		return notP2P(strings.Join(reasons, " | "))
	}

	res.IsP2P = true
	res.Confidence = confidence
	res.Subcategory = buildSubcategory(res.Direction, res.TransferMode, res.Relationship, res.RelationshipDetail)
	res.Reason = strings.Join(reasons, " | ")
	if res.Counterparty == "" {
		res.Counterparty = "Unknown Person"
	}
	return res
}

func (d *Detector) leadsWithKnownMerchant(descLower string) bool {
	words := strings.Fields(descLower)
	if len(words) == 0 {
		return false
	}
	if _, ok := d.merchantNames[words[0]]; ok {
		return true
	}
	if len(words) >= 2 {
		if _, ok := d.merchantNames[words[0]+" "+words[1]]; ok {
			return true
		}
	}
	return false
}

func notP2P(reason string) Result {
	return Result{
		Direction:          model.DirectionNone,
		Relationship:       "unknown",
		RelationshipDetail: "unknown",
		TransferMode:       "other",
		Reason:             reason,
	}
}

var relationshipLabels = map[string]string{
	"personal/friend":     "Friends & Family",
	"personal/family":     "Friends & Family",
	"personal/unknown":    "Friends & Family",
	"obligation/landlord": "Rent",
	"obligation/loan":     "Lending & Settling",
	"income/employer":     "Salary",
	"income/freelance":    "Freelance Income",
	"income/unknown":      "Money Received",
	"gift/family":         "Gift",
	"gift/friend":         "Gift",
	"gift/unknown":        "Gift",
	"unknown/unknown":     "P2P Transfer",
}

func buildSubcategory(direction model.P2PDirection, mode, relationship, detail string) string {
	dirLabel := "Sent"
	if direction == model.DirectionReceived {
		dirLabel = "Received"
	}

	label, ok := relationshipLabels[relationship+"/"+detail]
	if !ok {
		label, ok = relationshipLabels[relationship+"/unknown"]
		if !ok {
			label = "P2P Transfer"
		}
	}

	return strings.ToUpper(mode) + " " + dirLabel + " - " + label
}

func vpaToName(prefix string) string {
	name := camelBoundaryRe.ReplaceAllString(prefix, "$1 $2")
	name = vpaSeparatorRe.ReplaceAllString(name, " ")
	parts := make([]string, 0, 3)
	for _, p := range strings.Fields(name) {
		if len(p) > 1 {
			parts = append(parts, p)
		}
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) == 0 {
		return titleCase(prefix)
	}
	return titleCase(strings.Join(parts, " "))
}

func looksLikePersonName(text string) bool {
	text = strings.TrimSpace(text)
	words := strings.Fields(text)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		digits := 0
		for _, r := range w {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits > 1 {
			return false
		}
	}
	textLower := strings.ToLower(text)
	for _, signal := range notP2PSignals {
		if matchesSignal(textLower, signal) {
			return false
		}
	}
	return len(text) >= 3
}

var leadingRailRe = regexp.MustCompile(`(?i)^(NEFT|IMPS|RTGS|UPI|CR|DR)[/\-\s]+\d*[/\-\s]*`)

func extractOrgName(desc string) string {
	cleaned := strings.TrimSpace(leadingRailRe.ReplaceAllString(desc, ""))
	words := strings.Fields(cleaned)
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return "Employer"
	}
	return titleCase(strings.Join(words, " "))
}

// matchesSignal matches multi-word signals as substrings and single words
// on word boundaries, so "inc" does not fire on "income".
func matchesSignal(descLower, signal string) bool {
	if strings.Contains(signal, " ") {
		return strings.Contains(descLower, signal)
	}
	return containsWord(descLower, signal)
}

func containsWord(haystack, word string) bool {
	fields := strings.FieldsFunc(haystack, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range fields {
		if w == word {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
