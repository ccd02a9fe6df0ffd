package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherlygood/models"
)

func TestDefaultCategories(t *testing.T) {
	require.Len(t, defaultCategories, 8)
	for i, c := range defaultCategories {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, models.VisibilityHidden, c.Visibility)
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Image)
	}
}

func TestReconcileCategoriesNoChangeOnDefaults(t *testing.T) {
	stored := make([]models.Category, len(defaultCategories))
	copy(stored, defaultCategories)

	reconciled, changed := reconcileCategories(stored)
	assert.False(t, changed)
	assert.Equal(t, defaultCategories, reconciled)
}

func TestReconcileCategoriesAddsMissingDefault(t *testing.T) {
	stored := make([]models.Category, 0, len(defaultCategories)-1)
	for _, c := range defaultCategories {
		if c.Name != "Shoes" {
			stored = append(stored, c)
		}
	}

	reconciled, changed := reconcileCategories(stored)
	require.True(t, changed)
	require.Len(t, reconciled, 8)
	assert.Equal(t, "Shoes", reconciled[4].Name)
}

func TestReconcileCategoriesRepairsDrift(t *testing.T) {
	stored := make([]models.Category, len(defaultCategories))
	copy(stored, defaultCategories)
	stored[2].Index = 42
	stored[2].Image = "old-bottoms.png"
	stored[2].Visibility = models.VisibilityPublished // merchant's choice, must survive

	reconciled, changed := reconcileCategories(stored)
	require.True(t, changed)
	assert.Equal(t, "Bottoms", reconciled[2].Name)
	assert.Equal(t, 2, reconciled[2].Index)
	assert.Equal(t, "bottoms.png", reconciled[2].Image)
	assert.Equal(t, models.VisibilityPublished, reconciled[2].Visibility)
}

func TestReconcileCategoriesPreservesCustom(t *testing.T) {
	stored := make([]models.Category, len(defaultCategories))
	copy(stored, defaultCategories)
	custom := models.Category{Index: 8, Name: "Swimwear", Image: "swimwear.png", Visibility: models.VisibilityPublished}
	stored = append(stored, custom)

	reconciled, changed := reconcileCategories(stored)
	assert.False(t, changed)
	require.Len(t, reconciled, 9)
	assert.Equal(t, custom, reconciled[8])
}

func TestReconcileCategoriesSortsByIndex(t *testing.T) {
	stored := []models.Category{defaultCategories[7], defaultCategories[0], defaultCategories[3]}

	reconciled, changed := reconcileCategories(stored)
	require.True(t, changed) // five defaults were missing
	for i, c := range reconciled {
		assert.Equal(t, i, c.Index)
	}
}
