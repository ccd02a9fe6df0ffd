package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidateBumpsGeneration(t *testing.T) {
	rc := NewRouteCache()
	assert.Equal(t, uint64(0), rc.Generation("/cart"))

	rc.Invalidate("/cart")
	rc.Invalidate("/cart")
	assert.Equal(t, uint64(2), rc.Generation("/cart"))

	// other paths are independent
	assert.Equal(t, uint64(0), rc.Generation("/"))
}

func TestETagChangesOnInvalidate(t *testing.T) {
	rc := NewRouteCache()
	before := rc.ETag("/cart")
	rc.Invalidate("/cart")
	assert.NotEqual(t, before, rc.ETag("/cart"))
}
