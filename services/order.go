package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cherlygood/models"
	"cherlygood/utils"
)

// InvoiceSuffix is the fixed human-readable tail of every invoice id.
const InvoiceSuffix = " — enter at cherlygood.com/track"

var invoiceCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

// trackingMessages holds the history message written for each status change.
var trackingMessages = map[string]string{
	models.TrackingStatusProcessing: "Your order is being processed.",
	models.TrackingStatusShipped:    "Your order has been shipped.",
	models.TrackingStatusDelivered:  "Your order has been delivered.",
}

// statusEmailSubjects maps email kinds to their subject lines.
var statusEmailSubjects = map[string]string{
	models.EmailKindConfirmed: "Your order is confirmed",
	models.EmailKindShipped:   "Your order is on its way",
	models.EmailKindDelivered: "Your order has been delivered",
}

// emailMaxSends is the per-kind send cap seeded on new orders.
const emailMaxSends = 2

// Mailer sends transactional email. Implemented by utils.EmailService.
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// OrderQuery selects orders by exactly one of: ids, invoice ids, or the
// payer-email/transaction-id filter.
type OrderQuery struct {
	IDs           []string
	InvoiceIDs    []string
	PayerEmail    string
	TransactionID string
	Fields        []string
}

// TrackingUpdate carries a tracking mutation. Nil optional fields leave the
// stored values untouched.
type TrackingUpdate struct {
	CurrentStatus         string
	TrackingNumber        *string
	EstimatedDeliveryDate *string
}

// NewOrder is the input for persisting a captured order.
type NewOrder struct {
	ProviderOrderID string
	TransactionID   string
	PayerEmail      string
	PayerName       string
	AmountValue     float64
	Currency        string
	Items           []models.OrderItem
}

// OrderService reads and mutates orders
type OrderService struct {
	orders *mongo.Collection
	mail   Mailer
	log    zerolog.Logger

	// Tracking and email-counter writes are full sub-document rewrites, so
	// concurrent writers to the same order are serialized per order id.
	// Cross-process writers still race; accepted for single-instance deploys.
	mu    sync.Mutex
	locks map[string]*orderLock
}

// orderLock is a per-order mutex with a holder count so released entries can
// be evicted from the lock map.
type orderLock struct {
	mu   sync.Mutex
	refs int
}

// NewOrderService creates a new OrderService
func NewOrderService(client *mongo.Client, db string, mail Mailer, log zerolog.Logger) *OrderService {
	return &OrderService{
		orders: client.Database(db).Collection("orders"),
		mail:   mail,
		log:    log,
		locks:  make(map[string]*orderLock),
	}
}

// NormalizeInvoiceID canonicalizes a human-entered invoice id: the bare
// 8-character code and the full suffixed form both normalize to the suffixed
// form.
func NormalizeInvoiceID(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	code = strings.TrimSpace(strings.TrimSuffix(code, strings.TrimSpace(InvoiceSuffix)))
	if !invoiceCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: invoice id must be an 8-character alphanumeric code", ErrValidation)
	}
	return code + InvoiceSuffix, nil
}

// GetOrders fetches orders by ids, by invoice ids, or by filter. Filtered
// results are sorted by timestamp descending.
func (s *OrderService) GetOrders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	filtered := q.PayerEmail != "" || q.TransactionID != ""
	if len(q.IDs) > 0 && (len(q.InvoiceIDs) > 0 || filtered) {
		return nil, fmt.Errorf("%w: ids cannot be combined with invoiceIds or filters", ErrValidation)
	}
	if len(q.InvoiceIDs) > 0 && filtered {
		return nil, fmt.Errorf("%w: invoiceIds cannot be combined with filters", ErrValidation)
	}

	proj := projectionFor(q.Fields, "timestamp")

	switch {
	case len(q.IDs) > 0:
		orders, err := fetchInChunks(ctx, q.IDs, func(ctx context.Context, chunk []string) ([]models.Order, error) {
			return s.findOrders(ctx, bson.M{"_id": bson.M{"$in": chunk}}, proj, nil)
		})
		if err != nil {
			s.log.Error().Err(err).Str("collection", "orders").Msg("order query failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return orders, nil

	case len(q.InvoiceIDs) > 0:
		normalized := make([]string, len(q.InvoiceIDs))
		for i, raw := range q.InvoiceIDs {
			id, err := NormalizeInvoiceID(raw)
			if err != nil {
				return nil, err
			}
			normalized[i] = id
		}
		orders, err := fetchInChunks(ctx, normalized, func(ctx context.Context, chunk []string) ([]models.Order, error) {
			return s.findOrders(ctx, bson.M{"invoice_id": bson.M{"$in": chunk}}, proj, nil)
		})
		if err != nil {
			s.log.Error().Err(err).Str("collection", "orders").Msg("order query failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return orders, nil

	default:
		filter := bson.M{}
		if q.PayerEmail != "" {
			filter["payer.email"] = strings.ToLower(strings.TrimSpace(q.PayerEmail))
		}
		if q.TransactionID != "" {
			filter["transaction_id"] = q.TransactionID
		}
		orders, err := s.findOrders(ctx, filter, proj, bson.D{{Key: "timestamp", Value: -1}})
		if err != nil {
			s.log.Error().Err(err).Str("collection", "orders").Msg("order query failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return orders, nil
	}
}

// Create persists a captured order with a fresh invoice id, seeded email
// counters and an initial PROCESSING tracking state.
func (s *OrderService) Create(ctx context.Context, in NewOrder) (*models.Order, error) {
	if in.ProviderOrderID == "" {
		return nil, fmt.Errorf("%w: provider order id is required", ErrValidation)
	}

	now := time.Now()
	order := models.Order{
		ID:            in.ProviderOrderID,
		InvoiceID:     utils.NewInvoiceCode() + InvoiceSuffix,
		TransactionID: in.TransactionID,
		Payer: models.Payer{
			Email: strings.ToLower(strings.TrimSpace(in.PayerEmail)),
			Name:  in.PayerName,
		},
		Items: in.Items,
		Amount: models.OrderAmount{
			Value:    in.AmountValue,
			Currency: in.Currency,
		},
		Timestamp: now,
		Tracking: models.OrderTracking{
			CurrentStatus: models.TrackingStatusProcessing,
			StatusHistory: []models.TrackingHistoryEntry{{
				Status:    models.TrackingStatusProcessing,
				Message:   trackingMessages[models.TrackingStatusProcessing],
				Timestamp: now,
			}},
			LastUpdated: now,
		},
		Emails: map[string]models.EmailCounter{
			models.EmailKindConfirmed: {MaxAllowed: emailMaxSends},
			models.EmailKindShipped:   {MaxAllowed: emailMaxSends},
			models.EmailKindDelivered: {MaxAllowed: emailMaxSends},
		},
	}

	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		s.log.Error().Err(err).Str("collection", "orders").Msg("order insert failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &order, nil
}

// UpdateTracking mutates an order's tracking state. A history entry is
// appended only when the status actually changes; optional fields are merged
// only when provided; lastUpdated is always refreshed.
func (s *OrderService) UpdateTracking(ctx context.Context, id string, upd TrackingUpdate) (*models.Order, error) {
	if _, ok := trackingMessages[upd.CurrentStatus]; !ok {
		return nil, fmt.Errorf("%w: unknown tracking status %q", ErrValidation, upd.CurrentStatus)
	}

	unlock := s.lockOrder(id)
	defer unlock()

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	applyTrackingUpdate(&order.Tracking, upd, time.Now())

	update := bson.M{"$set": bson.M{"tracking": order.Tracking}}
	if _, err := s.orders.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		s.log.Error().Err(err).Str("collection", "orders").Msg("tracking update failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return order, nil
}

// SendStatusEmail sends the transactional email of the given kind for an
// order, enforcing the per-kind send cap before any send. The counter is
// incremented only after the provider accepts the email.
func (s *OrderService) SendStatusEmail(ctx context.Context, orderID, kind string) error {
	subject, ok := statusEmailSubjects[kind]
	if !ok {
		return fmt.Errorf("%w: unknown email kind %q", ErrValidation, kind)
	}

	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if err := dispatchStatusEmail(order, kind, subject, s.mail, time.Now()); err != nil {
		if errors.Is(err, ErrUpstream) {
			s.log.Error().Err(err).Str("order_id", orderID).Str("kind", kind).Msg("status email failed")
		}
		return err
	}

	update := bson.M{"$set": bson.M{"emails": order.Emails}}
	if _, err := s.orders.UpdateOne(ctx, bson.M{"_id": orderID}, update); err != nil {
		s.log.Error().Err(err).Str("collection", "orders").Msg("email counter update failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

func (s *OrderService) getOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		s.log.Error().Err(err).Str("collection", "orders").Msg("order lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &order, nil
}

func (s *OrderService) findOrders(ctx context.Context, filter bson.M, proj bson.D, sortSpec bson.D) ([]models.Order, error) {
	opts := options.Find()
	if proj != nil {
		opts.SetProjection(proj)
	}
	if sortSpec != nil {
		opts.SetSort(sortSpec)
	}
	cur, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// lockOrder acquires the per-order write mutex and returns its release func.
// The map entry is dropped once the last holder releases, so the map only
// holds ids with writes in flight.
func (s *OrderService) lockOrder(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &orderLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// emailSendAllowed gates sends on the per-kind cap. Checked before any call
// to the provider.
func emailSendAllowed(c models.EmailCounter) bool {
	return c.SentCount < c.MaxAllowed
}

// dispatchStatusEmail gates the send on the per-kind cap, calls the provider,
// and increments the order's counter only after the provider accepts the
// email. A provider failure leaves the counter untouched.
func dispatchStatusEmail(order *models.Order, kind, subject string, mail Mailer, now time.Time) error {
	counter, ok := order.Emails[kind]
	if !ok {
		counter = models.EmailCounter{MaxAllowed: emailMaxSends}
	}
	if !emailSendAllowed(counter) {
		return fmt.Errorf("%w: %s email already sent %d times", ErrLimitExceeded, kind, counter.SentCount)
	}

	if err := mail.SendEmail(order.Payer.Email, subject, statusEmailBody(kind, order)); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	counter.SentCount++
	counter.LastSent = now
	if order.Emails == nil {
		order.Emails = make(map[string]models.EmailCounter)
	}
	order.Emails[kind] = counter
	return nil
}

// applyTrackingUpdate folds a TrackingUpdate into the stored tracking state.
// Reports whether the current status changed.
func applyTrackingUpdate(t *models.OrderTracking, upd TrackingUpdate, now time.Time) bool {
	changed := false
	if upd.CurrentStatus != t.CurrentStatus {
		t.CurrentStatus = upd.CurrentStatus
		t.StatusHistory = append(t.StatusHistory, models.TrackingHistoryEntry{
			Status:    upd.CurrentStatus,
			Message:   trackingMessages[upd.CurrentStatus],
			Timestamp: now,
		})
		changed = true
	}
	if upd.TrackingNumber != nil {
		t.TrackingNumber = *upd.TrackingNumber
	}
	if upd.EstimatedDeliveryDate != nil {
		t.EstimatedDeliveryDate = *upd.EstimatedDeliveryDate
	}
	t.LastUpdated = now
	return changed
}

func statusEmailBody(kind string, order *models.Order) string {
	switch kind {
	case models.EmailKindShipped:
		body := fmt.Sprintf("<p>Good news! Your order <strong>%s</strong> has shipped.</p>", order.InvoiceID)
		if order.Tracking.TrackingNumber != "" {
			body += fmt.Sprintf("<p>Tracking number: <strong>%s</strong></p>", order.Tracking.TrackingNumber)
		}
		return body
	case models.EmailKindDelivered:
		return fmt.Sprintf("<p>Your order <strong>%s</strong> has been delivered. Enjoy!</p>", order.InvoiceID)
	default:
		return fmt.Sprintf(
			"<p>Thank you for your purchase! Your order has been placed successfully.</p><p>Invoice: <strong>%s</strong></p><p>Total: <strong>%.2f %s</strong></p>",
			order.InvoiceID, order.Amount.Value, order.Amount.Currency,
		)
	}
}
