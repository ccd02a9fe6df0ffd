package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const invoiceCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewDeviceIdentifier generates the opaque token stored in the cart cookie.
func NewDeviceIdentifier() string {
	return uuid.NewString()
}

// NewVariantID generates the unique id assigned to a cart line at append time.
func NewVariantID() string {
	return uuid.NewString()
}

// NewInvoiceCode generates the 8-character alphanumeric invoice code.
func NewInvoiceCode() string {
	code := make([]byte, 8)
	max := big.NewInt(int64(len(invoiceCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		code[i] = invoiceCodeAlphabet[n.Int64()]
	}
	return string(code)
}
