package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"cherlygood/models"
)

func TestProjectionForEmptyMeansFullDocument(t *testing.T) {
	assert.Nil(t, projectionFor(nil, "created_at", "updated_at"))
}

func TestProjectionForAlwaysKeepsRequiredFields(t *testing.T) {
	proj := projectionFor([]string{"name", "pricing"}, "created_at", "updated_at")
	require.NotNil(t, proj)

	keys := make(map[string]bool, len(proj))
	for _, e := range proj {
		assert.False(t, keys[e.Key], "duplicate projection key %s", e.Key)
		keys[e.Key] = true
	}
	for _, want := range []string{"_id", "name", "pricing", "created_at", "updated_at"} {
		assert.True(t, keys[want], "projection missing %s", want)
	}
}

func TestProjectionForDeduplicates(t *testing.T) {
	proj := projectionFor([]string{"name", "name", "updated_at"}, "updated_at")
	assert.Equal(t, bson.D{
		{Key: "_id", Value: 1},
		{Key: "name", Value: 1},
		{Key: "updated_at", Value: 1},
	}, proj)
}

func TestMergeUpsellProductOverridesSnapshot(t *testing.T) {
	live := &models.Product{
		ID:   "p1",
		Slug: "summer-dress",
		Name: "Summer Dress",
		Pricing: models.Pricing{
			BasePrice: 49.99,
		},
		Images: models.ProductImages{Main: "dress.jpg"},
	}
	ref := models.UpsellProductRef{
		Index:     2,
		ID:        "p1",
		Name:      "Summer Dress (Bundle)",
		BasePrice: 39.99,
	}

	merged := mergeUpsellProduct(ref, live)
	assert.Equal(t, 2, merged.Index)
	assert.Equal(t, "summer-dress", merged.Slug)             // from the live product
	assert.Equal(t, "Summer Dress (Bundle)", merged.Name)    // embedded override wins
	assert.Equal(t, 39.99, merged.BasePrice)                 // embedded override wins
	assert.Equal(t, "dress.jpg", merged.Images.Main)         // from the live product
}

func TestMergeUpsellProductMissingProductKeepsSnapshot(t *testing.T) {
	ref := models.UpsellProductRef{Index: 1, ID: "gone", Name: "Discontinued"}
	assert.Equal(t, ref, mergeUpsellProduct(ref, nil))
}

func TestHasField(t *testing.T) {
	assert.True(t, hasField([]string{"name", "upsell"}, "upsell"))
	assert.False(t, hasField([]string{"name"}, "upsell"))
	assert.False(t, hasField(nil, "upsell"))
}
