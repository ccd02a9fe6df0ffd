package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cherlygood/models"
	"cherlygood/services"
)

// SettingsController handles the storefront settings documents
type SettingsController struct {
	Settings *services.SettingsService
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{Settings: settings}
}

// GetCategories returns the reconciled category list
func (sc *SettingsController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	categories, err := sc.Settings.GetCategories(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, categories)
}

// UpdateCategories replaces the category list (Admin only)
func (sc *SettingsController) UpdateCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := json.NewDecoder(r.Body).Decode(&categories); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := sc.Settings.UpdateCategories(ctx, categories); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Categories updated")
}

// GetPageHero returns the homepage hero
func (sc *SettingsController) GetPageHero(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	hero, err := sc.Settings.GetPageHero(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, hero)
}

// UpdatePageHero replaces the homepage hero (Admin only)
func (sc *SettingsController) UpdatePageHero(w http.ResponseWriter, r *http.Request) {
	var hero models.PageHero
	if err := json.NewDecoder(r.Body).Decode(&hero); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := sc.Settings.UpdatePageHero(ctx, hero); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Page hero updated")
}

// GetDiscoveryProducts returns the discovery-products visibility settings
func (sc *SettingsController) GetDiscoveryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	settings, err := sc.Settings.GetDiscoveryProducts(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, settings)
}

// UpdateDiscoveryProducts replaces the discovery-products settings (Admin
// only)
func (sc *SettingsController) UpdateDiscoveryProducts(w http.ResponseWriter, r *http.Request) {
	var settings models.DiscoveryProductsSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := sc.Settings.UpdateDiscoveryProducts(ctx, settings); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Discovery products settings updated")
}
