package models

import (
	"time"
)

// Category is one entry in the storefront category list
type Category struct {
	Index      int    `bson:"index" json:"index"`
	Name       string `bson:"name" json:"name"`
	Image      string `bson:"image" json:"image"`
	Visibility string `bson:"visibility" json:"visibility"`
}

// CategorySettings is the singleton category list document
type CategorySettings struct {
	ID         string     `bson:"_id" json:"id"`
	Categories []Category `bson:"categories" json:"categories"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
}

// PageHeroImages holds the hero banner assets per viewport
type PageHeroImages struct {
	Desktop string `bson:"desktop" json:"desktop"`
	Mobile  string `bson:"mobile" json:"mobile"`
}

// PageHero is the singleton homepage hero document
type PageHero struct {
	ID             string         `bson:"_id" json:"id"`
	Images         PageHeroImages `bson:"images" json:"images"`
	Title          string         `bson:"title" json:"title"`
	DestinationURL string         `bson:"destination_url" json:"destinationUrl"`
	Visibility     string         `bson:"visibility" json:"visibility"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updatedAt"`
}

// DiscoveryProductsSettings controls on which pages the discovery-products
// strip is shown
type DiscoveryProductsSettings struct {
	ID             string          `bson:"_id" json:"id"`
	VisibleOnPages map[string]bool `bson:"visible_on_pages" json:"visibleOnPages"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updatedAt"`
}
