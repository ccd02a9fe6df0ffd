package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherlygood/models"
)

func TestNormalizeInvoiceID(t *testing.T) {
	want := "543B2D3F — enter at cherlygood.com/track"

	got, err := NormalizeInvoiceID("543B2D3F")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = NormalizeInvoiceID("543B2D3F — enter at cherlygood.com/track")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = NormalizeInvoiceID("  543B2D3F  ")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNormalizeInvoiceIDRejectsBadCodes(t *testing.T) {
	for _, raw := range []string{
		"bad",
		"",
		"543B2D3",            // 7 chars
		"543B2D3F9",          // 9 chars
		"543B2D3!",           // non-alphanumeric
		" — enter at cherlygood.com/track", // suffix only
	} {
		_, err := NormalizeInvoiceID(raw)
		assert.True(t, errors.Is(err, ErrValidation), "expected validation error for %q", raw)
	}
}

func TestApplyTrackingUpdateAppendsOncePerStatusChange(t *testing.T) {
	now := time.Now()
	tracking := models.OrderTracking{
		CurrentStatus: models.TrackingStatusProcessing,
		StatusHistory: []models.TrackingHistoryEntry{{
			Status:    models.TrackingStatusProcessing,
			Timestamp: now.Add(-time.Hour),
		}},
	}

	changed := applyTrackingUpdate(&tracking, TrackingUpdate{CurrentStatus: models.TrackingStatusShipped}, now)
	require.True(t, changed)
	require.Len(t, tracking.StatusHistory, 2)
	assert.Equal(t, models.TrackingStatusShipped, tracking.CurrentStatus)
	assert.Equal(t, "Your order has been shipped.", tracking.StatusHistory[1].Message)

	// repeating the same status appends nothing
	later := now.Add(time.Minute)
	changed = applyTrackingUpdate(&tracking, TrackingUpdate{CurrentStatus: models.TrackingStatusShipped}, later)
	assert.False(t, changed)
	assert.Len(t, tracking.StatusHistory, 2)
	assert.Equal(t, later, tracking.LastUpdated)
}

func TestApplyTrackingUpdateMergesOptionalFields(t *testing.T) {
	now := time.Now()
	tracking := models.OrderTracking{
		CurrentStatus:  models.TrackingStatusShipped,
		TrackingNumber: "1Z999",
	}

	// omitted optional fields leave prior values untouched
	applyTrackingUpdate(&tracking, TrackingUpdate{CurrentStatus: models.TrackingStatusShipped}, now)
	assert.Equal(t, "1Z999", tracking.TrackingNumber)

	number := "1Z000"
	eta := "2026-09-04"
	applyTrackingUpdate(&tracking, TrackingUpdate{
		CurrentStatus:         models.TrackingStatusShipped,
		TrackingNumber:        &number,
		EstimatedDeliveryDate: &eta,
	}, now)
	assert.Equal(t, "1Z000", tracking.TrackingNumber)
	assert.Equal(t, "2026-09-04", tracking.EstimatedDeliveryDate)
}

func TestEmailSendAllowed(t *testing.T) {
	assert.True(t, emailSendAllowed(models.EmailCounter{SentCount: 0, MaxAllowed: 2}))
	assert.True(t, emailSendAllowed(models.EmailCounter{SentCount: 1, MaxAllowed: 2}))
	assert.False(t, emailSendAllowed(models.EmailCounter{SentCount: 2, MaxAllowed: 2}))
	assert.False(t, emailSendAllowed(models.EmailCounter{SentCount: 3, MaxAllowed: 2}))
	assert.False(t, emailSendAllowed(models.EmailCounter{}))
}

type fakeMailer struct {
	calls int
	err   error
}

func (f *fakeMailer) SendEmail(toEmail, subject, htmlContent string) error {
	f.calls++
	return f.err
}

func TestDispatchStatusEmailIncrementsOnceOnSuccess(t *testing.T) {
	now := time.Now()
	mail := &fakeMailer{}
	order := &models.Order{
		InvoiceID: "543B2D3F" + InvoiceSuffix,
		Payer:     models.Payer{Email: "jo@example.com"},
		Emails: map[string]models.EmailCounter{
			models.EmailKindShipped: {MaxAllowed: 2},
		},
	}

	err := dispatchStatusEmail(order, models.EmailKindShipped, "Your order is on its way", mail, now)
	require.NoError(t, err)
	assert.Equal(t, 1, mail.calls)
	assert.Equal(t, 1, order.Emails[models.EmailKindShipped].SentCount)
	assert.Equal(t, now, order.Emails[models.EmailKindShipped].LastSent)
}

func TestDispatchStatusEmailLeavesCounterOnProviderFailure(t *testing.T) {
	mail := &fakeMailer{err: errors.New("sendgrid: 500")}
	order := &models.Order{
		Payer: models.Payer{Email: "jo@example.com"},
		Emails: map[string]models.EmailCounter{
			models.EmailKindShipped: {SentCount: 1, MaxAllowed: 2},
		},
	}

	err := dispatchStatusEmail(order, models.EmailKindShipped, "Your order is on its way", mail, time.Now())
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, 1, mail.calls)
	assert.Equal(t, 1, order.Emails[models.EmailKindShipped].SentCount)
}

func TestDispatchStatusEmailEnforcesCapBeforeSending(t *testing.T) {
	mail := &fakeMailer{}
	order := &models.Order{
		Payer: models.Payer{Email: "jo@example.com"},
		Emails: map[string]models.EmailCounter{
			models.EmailKindShipped: {SentCount: 2, MaxAllowed: 2},
		},
	}

	err := dispatchStatusEmail(order, models.EmailKindShipped, "Your order is on its way", mail, time.Now())
	assert.True(t, errors.Is(err, ErrLimitExceeded))
	assert.Equal(t, 0, mail.calls)
	assert.Equal(t, 2, order.Emails[models.EmailKindShipped].SentCount)
}

func TestGetOrdersRejectsMixedModes(t *testing.T) {
	s := &OrderService{}
	for _, q := range []OrderQuery{
		{IDs: []string{"a"}, InvoiceIDs: []string{"543B2D3F"}},
		{IDs: []string{"a"}, PayerEmail: "jo@example.com"},
		{IDs: []string{"a"}, TransactionID: "txn-1"},
		{InvoiceIDs: []string{"543B2D3F"}, PayerEmail: "jo@example.com"},
		{InvoiceIDs: []string{"543B2D3F"}, TransactionID: "txn-1"},
	} {
		_, err := s.GetOrders(context.Background(), q)
		assert.True(t, errors.Is(err, ErrValidation), "expected validation error for %+v", q)
	}
}

func TestLockOrderEvictsReleasedEntries(t *testing.T) {
	s := &OrderService{locks: make(map[string]*orderLock)}

	unlock := s.lockOrder("order-1")
	assert.Len(t, s.locks, 1)
	unlock()
	assert.Empty(t, s.locks)

	// a second holder keeps the entry alive until both release
	first := s.lockOrder("order-2")
	done := make(chan struct{})
	go func() {
		second := s.lockOrder("order-2")
		second()
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, s.locks, 1)
	first()
	<-done
	assert.Empty(t, s.locks)
}
