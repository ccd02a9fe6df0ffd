package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"cherlygood/models"
	"cherlygood/services"
)

// ProductController handles catalog requests
type ProductController struct {
	Catalog *services.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetProducts retrieves products by ids or by visibility/category filter.
// Query params: ids, fields (comma-separated), visibility, category.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := services.ProductQuery{
		IDs:        splitParam(r.URL.Query().Get("ids")),
		Fields:     splitParam(r.URL.Query().Get("fields")),
		Visibility: r.URL.Query().Get("visibility"),
		Category:   r.URL.Query().Get("category"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	products, err := pc.Catalog.GetProducts(ctx, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, products)
}

// GetUpsells retrieves upsells, optionally with their products resolved.
// Query params: ids, fields, includeProducts.
func (pc *ProductController) GetUpsells(w http.ResponseWriter, r *http.Request) {
	q := services.UpsellQuery{
		IDs:             splitParam(r.URL.Query().Get("ids")),
		Fields:          splitParam(r.URL.Query().Get("fields")),
		IncludeProducts: r.URL.Query().Get("includeProducts") == "true",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	upsells, err := pc.Catalog.GetUpsells(ctx, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, upsells)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := pc.Catalog.CreateProduct(ctx, &product); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: product})
}

// UpdateProduct handles a partial product update (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := pc.Catalog.UpdateProduct(ctx, id, fields); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Product updated")
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := pc.Catalog.DeleteProduct(ctx, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Product deleted")
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
