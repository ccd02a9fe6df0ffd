package models

import (
	"time"
)

// Tracking statuses an order moves through after capture.
const (
	TrackingStatusProcessing = "PROCESSING"
	TrackingStatusShipped    = "SHIPPED"
	TrackingStatusDelivered  = "DELIVERED"
)

// Transactional email kinds, keyed into Order.Emails.
const (
	EmailKindConfirmed = "confirmed"
	EmailKindShipped   = "shipped"
	EmailKindDelivered = "delivered"
)

// Payer identifies who paid for an order, as reported by the payment provider
type Payer struct {
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
}

// OrderAmount is the captured total
type OrderAmount struct {
	Value    float64 `bson:"value" json:"value"`
	Currency string  `bson:"currency" json:"currency"`
}

// OrderItem is a purchased line, snapshotted from the cart at capture time
type OrderItem struct {
	Type            string            `bson:"type" json:"type"`
	BaseProductID   string            `bson:"base_product_id,omitempty" json:"baseProductId,omitempty"`
	BaseUpsellID    string            `bson:"base_upsell_id,omitempty" json:"baseUpsellId,omitempty"`
	VariantID       string            `bson:"variant_id" json:"variantId"`
	SelectedOptions map[string]string `bson:"selected_options,omitempty" json:"selectedOptions,omitempty"`
	Name            string            `bson:"name,omitempty" json:"name,omitempty"`
	Slug            string            `bson:"slug,omitempty" json:"slug,omitempty"`
	Price           float64           `bson:"price,omitempty" json:"price,omitempty"`
}

// TrackingHistoryEntry records one status change
type TrackingHistoryEntry struct {
	Status    string    `bson:"status" json:"status"`
	Message   string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// OrderTracking holds the delivery state of an order. A history entry is
// appended only when the current status actually changes.
type OrderTracking struct {
	CurrentStatus         string                 `bson:"current_status" json:"currentStatus"`
	StatusHistory         []TrackingHistoryEntry `bson:"status_history" json:"statusHistory"`
	TrackingNumber        string                 `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDeliveryDate string                 `bson:"estimated_delivery_date,omitempty" json:"estimatedDeliveryDate,omitempty"`
	LastUpdated           time.Time              `bson:"last_updated" json:"lastUpdated"`
}

// EmailCounter caps how many times a transactional email kind may be sent for
// an order. SentCount never exceeds MaxAllowed.
type EmailCounter struct {
	SentCount  int       `bson:"sent_count" json:"sentCount"`
	MaxAllowed int       `bson:"max_allowed" json:"maxAllowed"`
	LastSent   time.Time `bson:"last_sent,omitempty" json:"lastSent,omitempty"`
}

// Order represents a captured order. ID is the payment provider's order id;
// InvoiceID is the human-shareable lookup code.
type Order struct {
	ID            string                  `bson:"_id" json:"id"`
	InvoiceID     string                  `bson:"invoice_id" json:"invoiceId"`
	TransactionID string                  `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	Payer         Payer                   `bson:"payer" json:"payer"`
	Items         []OrderItem             `bson:"items" json:"items"`
	Amount        OrderAmount             `bson:"amount" json:"amount"`
	Timestamp     time.Time               `bson:"timestamp" json:"timestamp"`
	Tracking      OrderTracking           `bson:"tracking" json:"tracking"`
	Emails        map[string]EmailCounter `bson:"emails" json:"emails"`
}
