package models

import (
	"time"
)

// Visibility states shared by products, upsells, categories and the page hero.
const (
	VisibilityDraft     = "DRAFT"
	VisibilityPublished = "PUBLISHED"
	VisibilityHidden    = "HIDDEN"
)

// Pricing holds the price breakdown for a product or upsell
type Pricing struct {
	BasePrice          float64 `bson:"base_price" json:"basePrice"`
	SalePrice          float64 `bson:"sale_price,omitempty" json:"salePrice,omitempty"`
	DiscountPercentage float64 `bson:"discount_percentage,omitempty" json:"discountPercentage,omitempty"`
}

// ProductImages holds the main image and the gallery for a product
type ProductImages struct {
	Main    string   `bson:"main" json:"main"`
	Gallery []string `bson:"gallery" json:"gallery"`
}

// ColorOption is a selectable color variant
type ColorOption struct {
	Name  string `bson:"name" json:"name"`
	Image string `bson:"image" json:"image"`
}

// SizeChart describes the size options as a measurement table. Rows map a
// column label (e.g. "Length") to its value for that size.
type SizeChart struct {
	Columns []string            `bson:"columns,omitempty" json:"columns,omitempty"`
	Rows    []map[string]string `bson:"rows,omitempty" json:"rows,omitempty"`
}

// ProductOptions holds the variant definitions for a product
type ProductOptions struct {
	Colors []ColorOption `bson:"colors,omitempty" json:"colors,omitempty"`
	Sizes  SizeChart     `bson:"sizes,omitempty" json:"sizes,omitempty"`
}

// Product represents a catalog product
type Product struct {
	ID         string         `bson:"_id" json:"id"`
	Slug       string         `bson:"slug" json:"slug"`
	Name       string         `bson:"name" json:"name"`
	Pricing    Pricing        `bson:"pricing" json:"pricing"`
	Images     ProductImages  `bson:"images" json:"images"`
	Options    ProductOptions `bson:"options" json:"options"`
	Upsell     string         `bson:"upsell,omitempty" json:"upsell,omitempty"`
	Visibility string         `bson:"visibility" json:"visibility"`
	Category   string         `bson:"category" json:"category"`
	CreatedAt  time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `bson:"updated_at" json:"updatedAt"`
}
