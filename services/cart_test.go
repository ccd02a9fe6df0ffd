package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherlygood/models"
)

func TestValidateItemSpec(t *testing.T) {
	tests := []struct {
		name string
		spec ItemSpec
		ok   bool
	}{
		{"product with base id", ItemSpec{Type: "product", BaseProductID: "p1"}, true},
		{"upsell with base id", ItemSpec{Type: "upsell", BaseUpsellID: "u1"}, true},
		{"product missing base id", ItemSpec{Type: "product"}, false},
		{"upsell missing base id", ItemSpec{Type: "upsell"}, false},
		{"unknown type", ItemSpec{Type: "bundle", BaseProductID: "p1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateItemSpec(tt.spec)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrValidation))
			}
		})
	}
}

func TestAppendDistinctItemsKeepsContiguousIndexes(t *testing.T) {
	specs := []ItemSpec{
		{Type: "product", BaseProductID: "p1", SelectedOptions: map[string]string{"color": "Red", "size": "M"}},
		{Type: "product", BaseProductID: "p1", SelectedOptions: map[string]string{"color": "Blue", "size": "M"}},
		{Type: "product", BaseProductID: "p2", SelectedOptions: map[string]string{"color": "Red", "size": "M"}},
		{Type: "upsell", BaseUpsellID: "u1", SelectedOptions: nil},
	}

	var items []models.CartItem
	for _, spec := range specs {
		require.False(t, hasDuplicate(items, spec))
		items = append(items, newCartItem(spec, len(items)+1))
	}

	require.Len(t, items, len(specs))
	variantIDs := make(map[string]bool)
	for i, item := range items {
		assert.Equal(t, i+1, item.Index)
		assert.False(t, variantIDs[item.VariantID], "variant id reused")
		variantIDs[item.VariantID] = true
	}
}

func TestHasDuplicateIgnoresOptionOrder(t *testing.T) {
	items := []models.CartItem{{
		Type:            "product",
		BaseProductID:   "p1",
		SelectedOptions: map[string]string{"color": "Red", "size": "M"},
		VariantID:       "v1",
		Index:           1,
	}}

	// same options regardless of how the caller ordered them
	assert.True(t, hasDuplicate(items, ItemSpec{
		Type:            "product",
		BaseProductID:   "p1",
		SelectedOptions: map[string]string{"size": "M", "color": "Red"},
	}))

	assert.False(t, hasDuplicate(items, ItemSpec{
		Type:            "product",
		BaseProductID:   "p1",
		SelectedOptions: map[string]string{"size": "L", "color": "Red"},
	}))

	// same base id under a different tagged type is not a duplicate
	assert.False(t, hasDuplicate(items, ItemSpec{
		Type:            "upsell",
		BaseUpsellID:    "p1",
		SelectedOptions: map[string]string{"color": "Red", "size": "M"},
	}))
}

func TestSameOptions(t *testing.T) {
	assert.True(t, sameOptions(nil, nil))
	assert.True(t, sameOptions(map[string]string{}, nil))
	assert.True(t, sameOptions(map[string]string{"a": "1"}, map[string]string{"a": "1"}))
	assert.False(t, sameOptions(map[string]string{"a": "1"}, map[string]string{"a": "2"}))
	assert.False(t, sameOptions(map[string]string{"a": "1"}, map[string]string{"b": "1"}))
	assert.False(t, sameOptions(map[string]string{"a": "1"}, map[string]string{"a": "1", "b": "2"}))
}

func TestPruneItemsReindexesAfterFiltering(t *testing.T) {
	items := []models.CartItem{
		{Type: "product", BaseProductID: "p1", VariantID: "v1", Index: 1},
		{Type: "product", BaseProductID: "gone", VariantID: "v2", Index: 2},
		{Type: "upsell", BaseUpsellID: "u1", VariantID: "v3", Index: 3},
		{Type: "mystery", VariantID: "v4", Index: 4},
		{Type: "upsell", BaseUpsellID: "gone-too", VariantID: "v5", Index: 5},
	}
	existingProducts := map[string]bool{"p1": true}
	existingUpsells := map[string]bool{"u1": true}

	kept, changed := pruneItems(items, existingProducts, existingUpsells)
	require.True(t, changed)
	require.Len(t, kept, 2)

	kept = reindexItems(kept)
	assert.Equal(t, "v1", kept[0].VariantID)
	assert.Equal(t, 1, kept[0].Index)
	assert.Equal(t, "v3", kept[1].VariantID)
	assert.Equal(t, 2, kept[1].Index)
}

func TestPruneItemsNoChange(t *testing.T) {
	items := []models.CartItem{
		{Type: "product", BaseProductID: "p1", VariantID: "v1", Index: 1},
		{Type: "upsell", BaseUpsellID: "u1", VariantID: "v2", Index: 2},
	}
	kept, changed := pruneItems(items, map[string]bool{"p1": true}, map[string]bool{"u1": true})
	assert.False(t, changed)
	assert.Equal(t, items, kept)
}

func TestReindexItemsLargeCart(t *testing.T) {
	var items []models.CartItem
	for i := 0; i < 12; i++ {
		items = append(items, models.CartItem{
			Type:          "product",
			BaseProductID: fmt.Sprintf("p%d", i),
			VariantID:     fmt.Sprintf("v%d", i),
			Index:         99, // deliberately wrong
		})
	}
	for i, item := range reindexItems(items) {
		assert.Equal(t, i+1, item.Index)
	}
}
