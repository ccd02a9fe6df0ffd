package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cherlygood/models"
)

var validate = validator.New()

// NewsletterService manages the subscriber list
type NewsletterService struct {
	subscribers *mongo.Collection
	log         zerolog.Logger
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(client *mongo.Client, db string, log zerolog.Logger) *NewsletterService {
	return &NewsletterService{
		subscribers: client.Database(db).Collection("newsletter_subscribers"),
		log:         log,
	}
}

// Subscribe adds an email to the subscriber list. Subscribing twice is a
// no-op.
func (ns *NewsletterService) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	update := bson.M{"$setOnInsert": bson.M{"subscribed_at": time.Now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := ns.subscribers.UpdateOne(ctx, bson.M{"_id": email}, update, opts); err != nil {
		ns.log.Error().Err(err).Str("collection", "newsletter_subscribers").Msg("subscribe failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// List returns every subscriber, newest first (admin only)
func (ns *NewsletterService) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	opts := options.Find().SetSort(bson.D{{Key: "subscribed_at", Value: -1}})
	cur, err := ns.subscribers.Find(ctx, bson.M{}, opts)
	if err != nil {
		ns.log.Error().Err(err).Str("collection", "newsletter_subscribers").Msg("subscriber list failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	var subscribers []models.NewsletterSubscriber
	if err := cur.All(ctx, &subscribers); err != nil {
		ns.log.Error().Err(err).Str("collection", "newsletter_subscribers").Msg("subscriber list failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return subscribers, nil
}
