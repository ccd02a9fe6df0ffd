package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cherlygood/services"
)

// NewsletterController handles newsletter subscriptions
type NewsletterController struct {
	Newsletter *services.NewsletterService
}

// NewNewsletterController creates a new NewsletterController
func NewNewsletterController(newsletter *services.NewsletterService) *NewsletterController {
	return &NewsletterController{Newsletter: newsletter}
}

// Subscribe adds an email to the subscriber list
func (nc *NewsletterController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := nc.Newsletter.Subscribe(ctx, body.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "You're subscribed!")
}

// ListSubscribers returns every subscriber (Admin only)
func (nc *NewsletterController) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	subscribers, err := nc.Newsletter.List(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, subscribers)
}
