// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cherlygood/services"
)

// OrderController handles order lookup, tracking updates and transactional
// email dispatch
type OrderController struct {
	Orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// TrackOrders is the public order lookup. It only answers invoice-id queries;
// everything else about an order stays behind the admin routes.
func (oc *OrderController) TrackOrders(w http.ResponseWriter, r *http.Request) {
	invoiceIDs := splitParam(r.URL.Query().Get("invoiceIds"))
	if len(invoiceIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "invoiceIds is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := oc.Orders.GetOrders(ctx, services.OrderQuery{
		InvoiceIDs: invoiceIDs,
		Fields:     splitParam(r.URL.Query().Get("fields")),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, orders)
}

// GetOrders retrieves orders by ids, invoice ids, or payer/transaction
// filter. Query params: ids, invoiceIds, payerEmail, transactionId, fields.
// (Admin only)
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	q := services.OrderQuery{
		IDs:           splitParam(r.URL.Query().Get("ids")),
		InvoiceIDs:    splitParam(r.URL.Query().Get("invoiceIds")),
		PayerEmail:    r.URL.Query().Get("payerEmail"),
		TransactionID: r.URL.Query().Get("transactionId"),
		Fields:        splitParam(r.URL.Query().Get("fields")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := oc.Orders.GetOrders(ctx, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, orders)
}

// UpdateTracking updates an order's tracking state (Admin only)
func (oc *OrderController) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		CurrentStatus         string  `json:"currentStatus"`
		TrackingNumber        *string `json:"trackingNumber"`
		EstimatedDeliveryDate *string `json:"estimatedDeliveryDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.UpdateTracking(ctx, id, services.TrackingUpdate{
		CurrentStatus:         body.CurrentStatus,
		TrackingNumber:        body.TrackingNumber,
		EstimatedDeliveryDate: body.EstimatedDeliveryDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, order)
}

// SendStatusEmail dispatches the transactional email of the given kind for
// an order (Admin only)
func (oc *OrderController) SendStatusEmail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := oc.Orders.SendStatusEmail(ctx, vars["id"], vars["kind"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Email sent")
}
