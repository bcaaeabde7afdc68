package mlclass

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredict_KnownMerchants(t *testing.T) {
	c := New()

	tests := []struct {
		description  string
		wantCategory string
	}{
		{"zomato order dinner", "Food & Dining"},
		{"uber ride to airport", "Transportation"},
		{"netflix monthly subscription", "Entertainment"},
		{"zerodha brokerage charges", "Financial Services"},
		{"irctc train ticket", "Transportation"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			pred := c.Predict(tt.description)
			assert.Equal(t, tt.wantCategory, pred.Category)
			assert.Greater(t, pred.Confidence, 0.5,
				"expected a confident prediction for a corpus merchant")
		})
	}
}

func TestPredict_CorpusDescriptionClearsEngineThreshold(t *testing.T) {
	c := New()

	// Verbatim corpus descriptions must score high enough to win a
	// transaction outright at the 0.70 decision threshold.
	for _, desc := range []string{
		"zomato order food delivery",
		"uber cab ride bangalore",
		"irctc train ticket booking",
	} {
		pred := c.Predict(desc)
		assert.GreaterOrEqual(t, pred.Confidence, 0.70, "description %q", desc)
	}
}

func TestPredict_AmbiguousDescriptionStaysBelowThreshold(t *testing.T) {
	c := New()

	// "payment" appears across many categories; no single category should
	// look confident.
	pred := c.Predict("payment")
	assert.Less(t, pred.Confidence, 0.70)
}

func TestPredict_UnknownDescriptionLowConfidence(t *testing.T) {
	c := New()

	pred := c.Predict("xqzvk wrmbl unknowable narration")
	assert.LessOrEqual(t, pred.Confidence, 0.10)
}

func TestPredict_EmptyDescription(t *testing.T) {
	c := New()

	pred := c.Predict("")
	assert.Zero(t, pred.Confidence)
}

func TestPredict_Deterministic(t *testing.T) {
	c := New()

	first := c.Predict("swiggy order lunch")
	second := c.Predict("swiggy order lunch")
	assert.Equal(t, first, second)
}

func TestLearn_RetrainsAtThreshold(t *testing.T) {
	c := New()

	for i := 0; i < RetrainThreshold-1; i++ {
		retrained := c.Learn(Example{
			Description: fmt.Sprintf("chaipoint tea order %d", i),
			Category:    "Food & Dining",
			Subcategory: "Cafes & Coffee",
		})
		assert.False(t, retrained)
	}

	retrained := c.Learn(Example{
		Description: "chaipoint tea order final",
		Category:    "Food & Dining",
		Subcategory: "Cafes & Coffee",
	})
	assert.True(t, retrained)

	pred := c.Predict("chaipoint tea order")
	assert.Equal(t, "Food & Dining", pred.Category)
	assert.Equal(t, "Cafes & Coffee", pred.Subcategory)
}
