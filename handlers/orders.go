package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bookcourier/backend/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrdersStore interface {
	userResolver
	InsertOrder(ctx context.Context, doc bson.M) (primitive.ObjectID, error)
	OrdersByEmail(ctx context.Context, email string) ([]bson.M, error)
	OwnedBookIDs(ctx context.Context, email string) ([]primitive.ObjectID, error)
	OrdersByBookIDs(ctx context.Context, ids []primitive.ObjectID) ([]bson.M, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error)
	OrderExists(ctx context.Context, id primitive.ObjectID, email string) (bool, error)
	MarkOrderPaid(ctx context.Context, id primitive.ObjectID, paymentID string) error
}

type OrdersHandler struct {
	DB OrdersStore
}

// Create places an order. POST /order, any authenticated caller. The body's
// userEmail must match the verified identity; everything else the caller sent
// (shipping details and so on) passes through, with the lifecycle fields
// forced to their initial values.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	doc := map[string]interface{}{}
	if err := decodeBody(r, &doc); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if email, _ := doc["userEmail"].(string); email != id.Email {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}
	rawBookID, _ := doc["bookId"].(string)
	bookID, ok := parseObjectID(w, rawBookID)
	if !ok {
		return
	}
	stripFields(doc, orderProtectedFields)
	doc["bookId"] = bookID
	doc["userEmail"] = id.Email
	doc["status"] = models.OrderStatusPending
	doc["paymentStatus"] = models.PaymentStatusUnpaid
	doc["orderedAt"] = time.Now()

	insertedID, err := h.DB.InsertOrder(r.Context(), bson.M(doc))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to place order")
		return
	}
	writeInserted(w, insertedID)
}

// Mine returns the caller's orders. GET /myorders.
func (h *OrdersHandler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	orders, err := h.DB.OrdersByEmail(r.Context(), id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// LibrarianList returns orders placed on the caller's books. GET
// /librarian/orders. Two-step lookup: the caller's book ids first, then the
// orders whose bookId is in that set.
func (h *OrdersHandler) LibrarianList(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin)
	if !ok {
		return
	}
	bookIDs, err := h.DB.OwnedBookIDs(r.Context(), id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	orders, err := h.DB.OrdersByBookIDs(r.Context(), bookIDs)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus sets an order's status to whatever string the caller supplied.
// PATCH /orders/{id}/status, librarian/admin. There is no transition table;
// the permissiveness is deliberate.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin); !ok {
		return
	}
	orderID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if _, err := h.DB.UpdateOrderStatus(r.Context(), orderID, req.Status); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to update order")
		return
	}
	writeSuccess(w)
}

// Cancel forces an order's status to cancelled. PATCH /orders/{id}/cancel,
// librarian/admin.
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin); !ok {
		return
	}
	orderID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if _, err := h.DB.UpdateOrderStatus(r.Context(), orderID, models.OrderStatusCancelled); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to cancel order")
		return
	}
	writeSuccess(w)
}

// Pay marks the caller's own order as paid, assigning a generated payment id.
// PATCH /orders/{id}/pay. Cancelled orders can still be paid; that matches
// observed behavior and is a flagged product decision, not an oversight.
func (h *OrdersHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	orderID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	exists, err := h.DB.OrderExists(r.Context(), orderID, id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load order")
		return
	}
	if !exists {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	if err := h.DB.MarkOrderPaid(r.Context(), orderID, newPaymentID()); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to pay order")
		return
	}
	writeSuccess(w)
}

func newPaymentID() string {
	return "PAY-" + uuid.New().String()
}
