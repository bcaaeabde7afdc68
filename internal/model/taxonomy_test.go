package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyOrderCoversEveryCategory(t *testing.T) {
	ordered := make(map[string]bool, len(TaxonomyOrder))
	for _, cat := range TaxonomyOrder {
		ordered[cat] = true
	}

	for cat := range Taxonomy {
		assert.True(t, ordered[cat], "category %q missing from TaxonomyOrder", cat)
	}
	assert.Len(t, TaxonomyOrder, len(Taxonomy)+1, "order holds every category plus Uncategorized")
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory("Food & Dining"))
	assert.True(t, KnownCategory(CategoryUncategorized))
	assert.False(t, KnownCategory("Cryptocurrency Gambling"))
	assert.False(t, KnownCategory(""))
}
