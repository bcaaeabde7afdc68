package orchestrator

import (
	"fmt"
	"strings"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

// ValidCategory reports whether the model returned a category from the
// shared taxonomy. Answers outside it are coerced to Uncategorized at
// validation.
func ValidCategory(category string) bool {
	return model.KnownCategory(category)
}

// taxonomySummary renders the shared vocabulary for the classify prompt,
// in the fixed taxonomy order.
func taxonomySummary() string {
	var b strings.Builder
	for _, cat := range model.TaxonomyOrder {
		subs := model.Taxonomy[cat]
		if len(subs) == 0 {
			fmt.Fprintf(&b, "- %s\n", cat)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", cat, strings.Join(subs, ", "))
	}
	return b.String()
}

const extractionSystem = "You are a bank statement parser for Indian bank and wallet statements. " +
	"You MUST respond with ONLY a valid JSON array. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON."

func extractionPrompt(chunk string) string {
	return "Extract every financial transaction from the statement text below.\n" +
		"Return a JSON array where each element has:\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
		"- \"description\": string, the transaction narration\n" +
		"- \"amount\": number, positive for money OUT (debit), negative for money IN (credit)\n" +
		"- \"currency\": string, e.g. \"INR\"\n\n" +
		"Rules:\n" +
		"- One element per transaction row. Skip headers, footers and running balances.\n" +
		"- Amounts use Indian formatting; \"1,23,456.78\" means 123456.78.\n" +
		"- Dr/DEBIT means money out, Cr/CREDIT means money in.\n" +
		"- Return ONLY the raw JSON array. Output must begin with \"[\" and end with \"]\".\n\n" +
		"Statement text:\n" + chunk
}

func strictExtractionPrompt(chunk string) string {
	return "Your previous answer was not valid JSON. This time you MUST return " +
		"ONLY a syntactically valid JSON array, nothing else. No markdown fences, " +
		"no prose, no trailing commas.\n\n" + extractionPrompt(chunk)
}

const classifySystem = "You are a financial transaction classifier for Indian personal finance. " +
	"You MUST respond with ONLY a valid JSON array. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON."

func batchClassifyPrompt(txns []model.Transaction) string {
	var b strings.Builder
	b.WriteString("Classify each numbered transaction into exactly one category and subcategory ")
	b.WriteString("from this taxonomy:\n\n")
	b.WriteString(taxonomySummary())
	b.WriteString("\nTransactions:\n")
	for i, txn := range txns {
		kind := "debit"
		if txn.IsCredit() {
			kind = "credit"
		}
		fmt.Fprintf(&b, "%d. %s | %.2f INR %s\n", i+1, txn.Description, abs(txn.Amount), kind)
	}
	b.WriteString("\nReturn a JSON array with exactly one element per transaction, in the same order, where each element has:\n")
	b.WriteString("- \"index\": number, the transaction number above (1-based)\n")
	b.WriteString("- \"category\": string, from the taxonomy\n")
	b.WriteString("- \"subcategory\": string, from the taxonomy (\"\" if none fits)\n")
	b.WriteString("- \"merchant\": string, the merchant or counterparty name (\"\" if unknown)\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n\n")
	b.WriteString("Return ONLY the raw JSON array. Output must begin with \"[\" and end with \"]\".\n")
	return b.String()
}

func strictBatchClassifyPrompt(txns []model.Transaction) string {
	return fmt.Sprintf("Your previous answer was not a valid JSON array of exactly %d elements. "+
		"This time you MUST return ONLY a syntactically valid JSON array with one element "+
		"per transaction, nothing else.\n\n", len(txns)) + batchClassifyPrompt(txns)
}

func singleClassifyPrompt(txn model.Transaction) string {
	return batchClassifyPrompt([]model.Transaction{txn})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
