package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"cherlygood/cache"
	"cherlygood/models"
	"cherlygood/utils"
)

// CartRoutePath is the presentation route invalidated after cart mutations.
const CartRoutePath = "/cart"

// AddItem outcomes.
const (
	AddStatusAdded         = "added"
	AddStatusAlreadyInCart = "already_in_cart"
)

// ItemSpec describes the item a visitor wants to add. Type picks the variant;
// the matching base id must be set.
type ItemSpec struct {
	Type            string            `json:"type"`
	BaseProductID   string            `json:"baseProductId,omitempty"`
	BaseUpsellID    string            `json:"baseUpsellId,omitempty"`
	SelectedOptions map[string]string `json:"selectedOptions"`
}

// AddItemResult reports what AddItem did. DeviceIdentifier is set only when a
// new cart was created, so the controller can issue the cookie.
type AddItemResult struct {
	Status           string
	DeviceIdentifier string
}

// CartService owns the per-device shopping cart documents
type CartService struct {
	carts   *mongo.Collection
	catalog *CatalogService
	routes  *cache.RouteCache
	log     zerolog.Logger
}

// NewCartService creates a new CartService
func NewCartService(client *mongo.Client, db string, catalog *CatalogService, routes *cache.RouteCache, log zerolog.Logger) *CartService {
	return &CartService{
		carts:   client.Database(db).Collection("carts"),
		catalog: catalog,
		routes:  routes,
		log:     log,
	}
}

// AddItem appends an item to the device's cart, creating the cart (and a new
// device identifier) when none exists. Adding an item that is already in the
// cart is a neutral outcome, not an error.
func (cs *CartService) AddItem(ctx context.Context, deviceID string, spec ItemSpec) (*AddItemResult, error) {
	if err := validateItemSpec(spec); err != nil {
		return nil, err
	}

	var cart models.Cart
	haveCart := false
	if deviceID != "" {
		err := cs.carts.FindOne(ctx, bson.M{"device_identifier": deviceID}).Decode(&cart)
		switch {
		case err == nil:
			haveCart = true
		case errors.Is(err, mongo.ErrNoDocuments):
		default:
			cs.log.Error().Err(err).Str("collection", "carts").Msg("cart lookup failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	now := time.Now()

	if !haveCart {
		newDeviceID := utils.NewDeviceIdentifier()
		cart = models.Cart{
			DeviceIdentifier: newDeviceID,
			Items:            []models.CartItem{newCartItem(spec, 1)},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if _, err := cs.carts.InsertOne(ctx, cart); err != nil {
			cs.log.Error().Err(err).Str("collection", "carts").Msg("cart create failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		cs.routes.Invalidate(CartRoutePath)
		return &AddItemResult{Status: AddStatusAdded, DeviceIdentifier: newDeviceID}, nil
	}

	if hasDuplicate(cart.Items, spec) {
		return &AddItemResult{Status: AddStatusAlreadyInCart}, nil
	}

	cart.Items = append(cart.Items, newCartItem(spec, len(cart.Items)+1))
	update := bson.M{"$set": bson.M{"items": cart.Items, "updated_at": now}}
	if _, err := cs.carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, update); err != nil {
		cs.log.Error().Err(err).Str("collection", "carts").Msg("cart update failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	cs.routes.Invalidate(CartRoutePath)
	return &AddItemResult{Status: AddStatusAdded}, nil
}

// GetCart returns the device's cart after validating every item against the
// live catalog. Items whose product or upsell no longer exists are pruned and
// the cart is rewritten with freshly contiguous indexes. Returns nil when the
// device has no cart.
func (cs *CartService) GetCart(ctx context.Context, deviceID string) (*models.Cart, error) {
	if deviceID == "" {
		return nil, nil
	}

	var cart models.Cart
	err := cs.carts.FindOne(ctx, bson.M{"device_identifier": deviceID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "carts").Msg("cart lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var productIDs, upsellIDs []string
	for _, item := range cart.Items {
		switch item.Type {
		case models.CartItemTypeProduct:
			productIDs = append(productIDs, item.BaseProductID)
		case models.CartItemTypeUpsell:
			upsellIDs = append(upsellIDs, item.BaseUpsellID)
		}
	}

	var existingProducts, existingUpsells map[string]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		existingProducts, err = cs.catalog.ExistingProductIDs(gctx, productIDs)
		return err
	})
	g.Go(func() error {
		var err error
		existingUpsells, err = cs.catalog.ExistingUpsellIDs(gctx, upsellIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept, changed := pruneItems(cart.Items, existingProducts, existingUpsells)
	if changed {
		cart.Items = reindexItems(kept)
		cart.UpdatedAt = time.Now()
		update := bson.M{"$set": bson.M{"items": cart.Items, "updated_at": cart.UpdatedAt}}
		if _, err := cs.carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, update); err != nil {
			cs.log.Error().Err(err).Str("collection", "carts").Msg("cart reindex failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		cs.routes.Invalidate(CartRoutePath)
	}

	return &cart, nil
}

// RemoveFromCart removes the line with the given variant id. A cart left
// empty is deleted; otherwise remaining items are reindexed.
func (cs *CartService) RemoveFromCart(ctx context.Context, deviceID, variantID string) error {
	cart, err := cs.requireCart(ctx, deviceID)
	if err != nil {
		return err
	}

	kept := cart.Items[:0:0]
	for _, item := range cart.Items {
		if item.VariantID != variantID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart.Items) {
		return fmt.Errorf("%w: cart item %s", ErrNotFound, variantID)
	}

	return cs.rewriteItems(ctx, cart, kept)
}

// ClearPurchasedItems removes the lines captured by a completed payment.
// Variant ids no longer in the cart are ignored.
func (cs *CartService) ClearPurchasedItems(ctx context.Context, deviceID string, variantIDs []string) error {
	cart, err := cs.requireCart(ctx, deviceID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	purchased := make(map[string]bool, len(variantIDs))
	for _, id := range variantIDs {
		purchased[id] = true
	}

	kept := cart.Items[:0:0]
	for _, item := range cart.Items {
		if !purchased[item.VariantID] {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart.Items) {
		return nil
	}

	return cs.rewriteItems(ctx, cart, kept)
}

func (cs *CartService) requireCart(ctx context.Context, deviceID string) (*models.Cart, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device identifier is required", ErrValidation)
	}
	var cart models.Cart
	err := cs.carts.FindOne(ctx, bson.M{"device_identifier": deviceID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: cart", ErrNotFound)
	}
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "carts").Msg("cart lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &cart, nil
}

func (cs *CartService) rewriteItems(ctx context.Context, cart *models.Cart, kept []models.CartItem) error {
	if len(kept) == 0 {
		if _, err := cs.carts.DeleteOne(ctx, bson.M{"_id": cart.ID}); err != nil {
			cs.log.Error().Err(err).Str("collection", "carts").Msg("cart delete failed")
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	} else {
		update := bson.M{"$set": bson.M{"items": reindexItems(kept), "updated_at": time.Now()}}
		if _, err := cs.carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, update); err != nil {
			cs.log.Error().Err(err).Str("collection", "carts").Msg("cart update failed")
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}
	cs.routes.Invalidate(CartRoutePath)
	return nil
}

func validateItemSpec(spec ItemSpec) error {
	switch spec.Type {
	case models.CartItemTypeProduct:
		if spec.BaseProductID == "" {
			return fmt.Errorf("%w: baseProductId is required for product items", ErrValidation)
		}
	case models.CartItemTypeUpsell:
		if spec.BaseUpsellID == "" {
			return fmt.Errorf("%w: baseUpsellId is required for upsell items", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown item type %q", ErrValidation, spec.Type)
	}
	return nil
}

func newCartItem(spec ItemSpec, index int) models.CartItem {
	return models.CartItem{
		Type:            spec.Type,
		BaseProductID:   spec.BaseProductID,
		BaseUpsellID:    spec.BaseUpsellID,
		SelectedOptions: spec.SelectedOptions,
		VariantID:       utils.NewVariantID(),
		Index:           index,
	}
}

// hasDuplicate reports whether the cart already holds an item of the same
// tagged type, base id and selected options.
func hasDuplicate(items []models.CartItem, spec ItemSpec) bool {
	baseID := spec.BaseProductID
	if spec.Type == models.CartItemTypeUpsell {
		baseID = spec.BaseUpsellID
	}
	for _, item := range items {
		if item.Type == spec.Type && item.BaseID() == baseID && sameOptions(item.SelectedOptions, spec.SelectedOptions) {
			return true
		}
	}
	return false
}

// sameOptions compares option maps by key/value, independent of any
// serialization order.
func sameOptions(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if other, ok := b[k]; !ok || other != v {
			return false
		}
	}
	return true
}

// pruneItems drops items with an unrecognized type or a dead catalog
// reference.
func pruneItems(items []models.CartItem, existingProducts, existingUpsells map[string]bool) ([]models.CartItem, bool) {
	kept := items[:0:0]
	for _, item := range items {
		switch item.Type {
		case models.CartItemTypeProduct:
			if existingProducts[item.BaseProductID] {
				kept = append(kept, item)
			}
		case models.CartItemTypeUpsell:
			if existingUpsells[item.BaseUpsellID] {
				kept = append(kept, item)
			}
		}
	}
	return kept, len(kept) != len(items)
}

// reindexItems rewrites every item's index to its contiguous 1-based
// position.
func reindexItems(items []models.CartItem) []models.CartItem {
	for i := range items {
		items[i].Index = i + 1
	}
	return items
}
