// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"cherlygood/controllers"
	"cherlygood/middleware"
)

// Controllers bundles everything RegisterRoutes wires up
type Controllers struct {
	Auth       *controllers.AuthController
	Product    *controllers.ProductController
	Cart       *controllers.CartController
	Order      *controllers.OrderController
	Checkout   *controllers.CheckoutController
	Settings   *controllers.SettingsController
	Newsletter *controllers.NewsletterController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.Auth, c Controllers) {
	// Public storefront routes
	router.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
	router.HandleFunc("/upsells", c.Product.GetUpsells).Methods("GET")
	router.HandleFunc("/categories", c.Settings.GetCategories).Methods("GET")
	router.HandleFunc("/page-hero", c.Settings.GetPageHero).Methods("GET")
	router.HandleFunc("/discovery-products", c.Settings.GetDiscoveryProducts).Methods("GET")
	router.HandleFunc("/newsletter/subscribe", c.Newsletter.Subscribe).Methods("POST")

	// Cart routes
	router.HandleFunc("/cart", c.Cart.AddToCart).Methods("POST")
	router.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	router.HandleFunc("/cart/items/{variant_id}", c.Cart.RemoveFromCart).Methods("DELETE")

	// Checkout routes
	router.HandleFunc("/checkout/orders", c.Checkout.CreateOrder).Methods("POST")
	router.HandleFunc("/checkout/orders/{id}/capture", c.Checkout.CaptureOrder).Methods("POST")

	// Order tracking lookup (public, by invoice id only)
	router.HandleFunc("/orders", c.Order.TrackOrders).Methods("GET")

	// Admin session
	router.HandleFunc("/admin/login", c.Auth.Login).Methods("POST")
	router.HandleFunc("/admin/logout", c.Auth.Logout).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Authenticate)
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", c.Product.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", c.Product.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/orders", c.Order.GetOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/tracking", c.Order.UpdateTracking).Methods("PUT")
	admin.HandleFunc("/orders/{id}/emails/{kind}", c.Order.SendStatusEmail).Methods("POST")
	admin.HandleFunc("/categories", c.Settings.UpdateCategories).Methods("PUT")
	admin.HandleFunc("/page-hero", c.Settings.UpdatePageHero).Methods("PUT")
	admin.HandleFunc("/discovery-products", c.Settings.UpdateDiscoveryProducts).Methods("PUT")
	admin.HandleFunc("/newsletter/subscribers", c.Newsletter.ListSubscribers).Methods("GET")
}
