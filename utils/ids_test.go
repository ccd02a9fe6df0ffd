package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInvoiceCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewInvoiceCode()
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	// collisions over 100 draws from a 62^8 space would indicate a broken generator
	assert.Len(t, seen, 100)
}

func TestNewDeviceIdentifierIsUnique(t *testing.T) {
	assert.NotEqual(t, NewDeviceIdentifier(), NewDeviceIdentifier())
	assert.NotEmpty(t, NewVariantID())
}
