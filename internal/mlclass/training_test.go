package mlclass

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

func TestSeedExamplesUseSharedTaxonomy(t *testing.T) {
	for _, ex := range SeedExamples() {
		assert.True(t, model.KnownCategory(ex.Category),
			"example %q has category %q outside the taxonomy", ex.Description, ex.Category)
		assert.Contains(t, model.Taxonomy[ex.Category], ex.Subcategory,
			"example %q has subcategory %q outside %q", ex.Description, ex.Subcategory, ex.Category)
	}
}
