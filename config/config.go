package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting. It is built once in main and
// passed by pointer to the components that need it.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	JWTSecret []byte

	SendGridAPIKey string
	EmailSender    string

	PayPalBaseURL  string
	PayPalClientID string
	PayPalSecret   string

	SessionVerifyURL string

	AdminEmail        string
	AdminPasswordHash string

	CartCookieName string
}

// Load reads the .env file if present and builds the Config from environment
// variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg := &Config{
		Port:              getenv("PORT", "8000"),
		MongoURI:          getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getenv("MONGO_DB", "cherlygood"),
		JWTSecret:         []byte(os.Getenv("JWT_SECRET")),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		EmailSender:       os.Getenv("EMAIL_SENDER"),
		PayPalBaseURL:     getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:    os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:      os.Getenv("PAYPAL_SECRET"),
		SessionVerifyURL:  os.Getenv("SESSION_VERIFY_URL"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CartCookieName:    getenv("CART_COOKIE_NAME", "device_identifier"),
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
