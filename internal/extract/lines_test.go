package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementLinesGeneric(t *testing.T) {
	text := `HDFC BANK STATEMENT
Account: XX1234
15/01/2024 UPI-ZOMATO ORDER 789456 450.00 12,550.00
16/01/2024 NEFT SALARY ACME CORP Cr 85,000.00 97,550.00
17/01/2024 POS BIG BAZAAR MUMBAI Dr 2,340.50 95,209.50
Closing balance 95,209.50`

	txns := ParseStatementLines(text)
	require.Len(t, txns, 3)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Contains(t, txns[0].Description, "ZOMATO")
	assert.InDelta(t, 450.00, txns[0].Amount, 0.001)

	assert.InDelta(t, -85000.00, txns[1].Amount, 0.001, "Cr marker makes it a credit")
	assert.InDelta(t, 2340.50, txns[2].Amount, 0.001, "Dr marker makes it a debit")
	assert.NotEmpty(t, txns[0].ID)
	assert.Equal(t, "INR", txns[0].Currency)
}

func TestParseStatementLinesIndianGrouping(t *testing.T) {
	txns := ParseStatementLines("05/02/2024 RTGS PROPERTY PAYMENT Dr 1,23,456.78 2,00,000.00")
	require.Len(t, txns, 1)
	assert.InDelta(t, 123456.78, txns[0].Amount, 0.001)
}

func TestParseStatementLinesSkipsNoise(t *testing.T) {
	text := `Statement of account
Opening balance 10,000.00
Thank you for banking with us`

	assert.Empty(t, ParseStatementLines(text))
}

func TestParseStatementLinesDateWithMonthName(t *testing.T) {
	txns := ParseStatementLines("15-Jan-24 SWIGGY INSTAMART 640.00 9,360.00")
	require.Len(t, txns, 1)
	assert.Equal(t, 2024, txns[0].Date.Year())
	assert.Equal(t, time.January, txns[0].Date.Month())
}

func TestGuessAmountBalanceHeuristic(t *testing.T) {
	// No Dr/Cr marker: last numeric is the balance, preceding is the amount.
	amount, ok := guessAmount("15/01/2024 SOMETHING 450.00 12550.00", []float64{15, 1, 2024, 450.00, 12550.00})
	require.True(t, ok)
	assert.InDelta(t, 450.00, amount, 0.001)
}
