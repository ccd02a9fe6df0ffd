package models

import (
	"time"
)

// UpsellProductRef is an embedded snapshot of a product bundled into an
// upsell. Fields set here override the live product when the upsell is
// returned with its products resolved.
type UpsellProductRef struct {
	Index     int            `bson:"index" json:"index"`
	ID        string         `bson:"id" json:"id"`
	Slug      string         `bson:"slug,omitempty" json:"slug,omitempty"`
	Name      string         `bson:"name,omitempty" json:"name,omitempty"`
	BasePrice float64        `bson:"base_price,omitempty" json:"basePrice,omitempty"`
	Images    ProductImages  `bson:"images,omitempty" json:"images,omitempty"`
	Options   ProductOptions `bson:"options,omitempty" json:"options,omitempty"`
}

// Upsell is a bundled offer referencing multiple base products with its own
// pricing
type Upsell struct {
	ID         string             `bson:"_id" json:"id"`
	MainImage  string             `bson:"main_image" json:"mainImage"`
	Pricing    Pricing            `bson:"pricing" json:"pricing"`
	Products   []UpsellProductRef `bson:"products" json:"products"`
	Visibility string             `bson:"visibility" json:"visibility"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}
