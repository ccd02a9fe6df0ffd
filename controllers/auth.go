package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"cherlygood/config"
	"cherlygood/middleware"
	"cherlygood/utils"
)

// AuthController handles the admin back-office login
type AuthController struct {
	Config *config.Config
}

// NewAuthController creates a new AuthController
func NewAuthController(cfg *config.Config) *AuthController {
	return &AuthController{Config: cfg}
}

// Login checks the admin credentials and issues the session cookie
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email != strings.ToLower(ac.Config.AdminEmail) {
		writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ac.Config.AdminPasswordHash), []byte(body.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(ac.Config.JWTSecret, email, "admin")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: genericFailureMessage})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeMessage(w, "Logged in")
}

// Logout clears the session cookie
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeMessage(w, "Logged out")
}
