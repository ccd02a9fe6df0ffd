package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cherlygood/cache"
	"cherlygood/config"
	"cherlygood/services"
)

const cartCookieMaxAge = 30 * 24 * 60 * 60 // 30 days

// CartController handles cart-related requests
type CartController struct {
	Config *config.Config
	Carts  *services.CartService
	Routes *cache.RouteCache
}

// NewCartController creates a new CartController
func NewCartController(cfg *config.Config, carts *services.CartService, routes *cache.RouteCache) *CartController {
	return &CartController{
		Config: cfg,
		Carts:  carts,
		Routes: routes,
	}
}

// AddToCart adds an item to the device's cart, creating the cart and its
// cookie on first add
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var spec services.ItemSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := cc.Carts.AddItem(ctx, cc.deviceIdentifier(r), spec)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if result.DeviceIdentifier != "" {
		cc.setDeviceCookie(w, result.DeviceIdentifier)
	}

	if result.Status == services.AddStatusAlreadyInCart {
		writeMessage(w, "Item is already in your cart")
		return
	}
	writeMessage(w, "Item added to cart")
}

// GetCart retrieves the device's validated cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cart, err := cc.Carts.GetCart(ctx, cc.deviceIdentifier(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("ETag", cc.Routes.ETag(services.CartRoutePath))
	writeData(w, cart)
}

// RemoveFromCart removes one line from the device's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	variantID := mux.Vars(r)["variant_id"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := cc.Carts.RemoveFromCart(ctx, cc.deviceIdentifier(r), variantID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Item removed from cart")
}

func (cc *CartController) deviceIdentifier(r *http.Request) string {
	cookie, err := r.Cookie(cc.Config.CartCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (cc *CartController) setDeviceCookie(w http.ResponseWriter, deviceID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cc.Config.CartCookieName,
		Value:    deviceID,
		Path:     "/",
		MaxAge:   cartCookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
