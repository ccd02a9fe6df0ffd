package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart item variants. Each cart line is tagged with one of these.
const (
	CartItemTypeProduct = "product"
	CartItemTypeUpsell  = "upsell"
)

// CartItem represents one line in a cart. Type decides which base id field is
// meaningful. Index is the 1-based position of the item in the cart and stays
// contiguous across every mutation; VariantID is unique per line and assigned
// when the line is appended.
type CartItem struct {
	Type            string            `bson:"type" json:"type"`
	BaseProductID   string            `bson:"base_product_id,omitempty" json:"baseProductId,omitempty"`
	BaseUpsellID    string            `bson:"base_upsell_id,omitempty" json:"baseUpsellId,omitempty"`
	SelectedOptions map[string]string `bson:"selected_options" json:"selectedOptions"`
	VariantID       string            `bson:"variant_id" json:"variantId"`
	Index           int               `bson:"index" json:"index"`
}

// BaseID returns the referenced catalog id for either item variant.
func (ci CartItem) BaseID() string {
	if ci.Type == CartItemTypeUpsell {
		return ci.BaseUpsellID
	}
	return ci.BaseProductID
}

// Cart represents an anonymous shopping cart keyed by the opaque device
// identifier stored in the visitor's cookie
type Cart struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DeviceIdentifier string             `bson:"device_identifier" json:"deviceIdentifier"`
	Items            []CartItem         `bson:"items" json:"items"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}
