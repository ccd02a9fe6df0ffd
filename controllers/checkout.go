package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"cherlygood/config"
	"cherlygood/models"
	"cherlygood/payment"
	"cherlygood/services"
)

const (
	clearItemsRetries = 3
	clearItemsDelay   = time.Second
)

// CheckoutController drives the PayPal checkout: create a provider order for
// the device's cart, then capture it and persist the resulting order.
type CheckoutController struct {
	Config  *config.Config
	PayPal  *payment.Client
	Orders  *services.OrderService
	Carts   *services.CartService
	Catalog *services.CatalogService
	Log     zerolog.Logger
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(cfg *config.Config, pp *payment.Client, orders *services.OrderService, carts *services.CartService, catalog *services.CatalogService, log zerolog.Logger) *CheckoutController {
	return &CheckoutController{
		Config:  cfg,
		PayPal:  pp,
		Orders:  orders,
		Carts:   carts,
		Catalog: catalog,
		Log:     log,
	}
}

// CreateOrder prices the device's cart and creates the provider order
func (cc *CheckoutController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	cart, err := cc.Carts.GetCart(ctx, deviceCookie(r, cc.Config.CartCookieName))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cart == nil || len(cart.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Your cart is empty"})
		return
	}

	total, _, err := cc.priceCart(ctx, cart)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	created, err := cc.PayPal.CreateOrder(ctx, total, "USD")
	if err != nil {
		cc.Log.Error().Err(err).Msg("paypal create order failed")
		writeJSON(w, http.StatusBadGateway, apiResponse{Success: false, Message: genericFailureMessage})
		return
	}
	writeData(w, created)
}

// CaptureOrder captures the provider order, persists it, sends the
// confirmation email and clears the purchased cart lines
func (cc *CheckoutController) CaptureOrder(w http.ResponseWriter, r *http.Request) {
	providerOrderID := mux.Vars(r)["id"]
	deviceID := deviceCookie(r, cc.Config.CartCookieName)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	cart, err := cc.Carts.GetCart(ctx, deviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cart == nil || len(cart.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Your cart is empty"})
		return
	}

	capture, err := cc.PayPal.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		cc.Log.Error().Err(err).Str("provider_order_id", providerOrderID).Msg("paypal capture failed")
		writeJSON(w, http.StatusBadGateway, apiResponse{Success: false, Message: genericFailureMessage})
		return
	}
	if capture.Status != "COMPLETED" {
		writeJSON(w, http.StatusBadGateway, apiResponse{Success: false, Message: "Payment was not completed"})
		return
	}

	total, items, err := cc.priceCart(ctx, cart)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if capture.AmountValue != 0 {
		total = capture.AmountValue
	}

	order, err := cc.Orders.Create(ctx, services.NewOrder{
		ProviderOrderID: capture.OrderID,
		TransactionID:   capture.TransactionID,
		PayerEmail:      capture.PayerEmail,
		PayerName:       capture.PayerName,
		AmountValue:     total,
		Currency:        capture.Currency,
		Items:           items,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Confirmation failure must not fail the capture; the counter allows a
	// manual resend from the back-office.
	if err := cc.Orders.SendStatusEmail(ctx, order.ID, models.EmailKindConfirmed); err != nil {
		cc.Log.Error().Err(err).Str("order_id", order.ID).Msg("confirmation email failed")
	}

	cc.clearPurchased(ctx, deviceID, cart.Items)

	writeData(w, order)
}

// priceCart totals the cart against live catalog pricing and snapshots the
// purchased lines.
func (cc *CheckoutController) priceCart(ctx context.Context, cart *models.Cart) (float64, []models.OrderItem, error) {
	var productIDs, upsellIDs []string
	for _, item := range cart.Items {
		switch item.Type {
		case models.CartItemTypeProduct:
			productIDs = append(productIDs, item.BaseProductID)
		case models.CartItemTypeUpsell:
			upsellIDs = append(upsellIDs, item.BaseUpsellID)
		}
	}

	products, err := cc.Catalog.GetProducts(ctx, services.ProductQuery{
		IDs:    productIDs,
		Fields: []string{"name", "slug", "pricing"},
	})
	if err != nil {
		return 0, nil, err
	}
	upsells, err := cc.Catalog.GetUpsells(ctx, services.UpsellQuery{
		IDs:    upsellIDs,
		Fields: []string{"pricing"},
	})
	if err != nil {
		return 0, nil, err
	}

	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p.Product
	}
	upsellByID := make(map[string]models.Upsell, len(upsells))
	for _, u := range upsells {
		upsellByID[u.ID] = u
	}

	var total float64
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		item := models.OrderItem{
			Type:            line.Type,
			BaseProductID:   line.BaseProductID,
			BaseUpsellID:    line.BaseUpsellID,
			VariantID:       line.VariantID,
			SelectedOptions: line.SelectedOptions,
		}
		switch line.Type {
		case models.CartItemTypeProduct:
			p := productByID[line.BaseProductID]
			item.Name = p.Name
			item.Slug = p.Slug
			item.Price = effectivePrice(p.Pricing)
		case models.CartItemTypeUpsell:
			item.Price = effectivePrice(upsellByID[line.BaseUpsellID].Pricing)
		}
		total += item.Price
		items = append(items, item)
	}
	return total, items, nil
}

// clearPurchased removes the captured lines from the cart, retrying a fixed
// number of times; the payment already succeeded, so failure is only logged.
func (cc *CheckoutController) clearPurchased(ctx context.Context, deviceID string, purchased []models.CartItem) {
	variantIDs := make([]string, len(purchased))
	for i, item := range purchased {
		variantIDs[i] = item.VariantID
	}

	var err error
	for attempt := 1; attempt <= clearItemsRetries; attempt++ {
		if err = cc.Carts.ClearPurchasedItems(ctx, deviceID, variantIDs); err == nil {
			return
		}
		time.Sleep(clearItemsDelay)
	}
	cc.Log.Error().Err(err).Str("device_identifier", deviceID).Msg("failed to clear purchased items")
}

func effectivePrice(p models.Pricing) float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.BasePrice
}

func deviceCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
