package models

import (
	"time"
)

// NewsletterSubscriber is keyed by the lowercased subscriber email
type NewsletterSubscriber struct {
	Email        string    `bson:"_id" json:"email"`
	SubscribedAt time.Time `bson:"subscribed_at" json:"subscribedAt"`
}
