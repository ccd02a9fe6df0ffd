package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The public lookup only answers invoice-id queries. Anything else must be
// rejected before the order store is consulted, so a nil service is enough
// to exercise the guard.
func TestTrackOrdersRequiresInvoiceIDs(t *testing.T) {
	oc := NewOrderController(nil)

	for _, target := range []string{
		"/orders",
		"/orders?payerEmail=jo@example.com",
		"/orders?transactionId=txn-1",
		"/orders?ids=a,b",
	} {
		w := httptest.NewRecorder()
		oc.TrackOrders(w, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code, "expected rejection for %s", target)

		var body apiResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "invoiceIds is required", body.Message)
	}
}
