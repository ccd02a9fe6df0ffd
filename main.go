// main.go
package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"cherlygood/cache"
	"cherlygood/config"
	"cherlygood/controllers"
	"cherlygood/middleware"
	"cherlygood/payment"
	"cherlygood/routes"
	"cherlygood/services"
	"cherlygood/utils"
)

func main() {
	logger := utils.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	// Connect to MongoDB
	client := utils.ConnectDB(cfg.MongoURI)
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			logger.Fatal().Err(err).Msg("mongo disconnect failed")
		}
	}()

	emailService := utils.NewEmailService(cfg.SendGridAPIKey, cfg.EmailSender)
	routeCache := cache.NewRouteCache()
	paypalClient := payment.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret)

	// Initialize services
	catalogService := services.NewCatalogService(client, cfg.MongoDB, logger)
	cartService := services.NewCartService(client, cfg.MongoDB, catalogService, routeCache, logger)
	orderService := services.NewOrderService(client, cfg.MongoDB, emailService, logger)
	settingsService := services.NewSettingsService(client, cfg.MongoDB, logger)
	newsletterService := services.NewNewsletterService(client, cfg.MongoDB, logger)

	// Initialize controllers
	ctrls := routes.Controllers{
		Auth:       controllers.NewAuthController(cfg),
		Product:    controllers.NewProductController(catalogService),
		Cart:       controllers.NewCartController(cfg, cartService, routeCache),
		Order:      controllers.NewOrderController(orderService),
		Checkout:   controllers.NewCheckoutController(cfg, paypalClient, orderService, cartService, catalogService, logger),
		Settings:   controllers.NewSettingsController(settingsService),
		Newsletter: controllers.NewNewsletterController(newsletterService),
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, middleware.NewAuth(cfg), ctrls)

	logger.Info().Str("port", cfg.Port).Msg("server is running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
