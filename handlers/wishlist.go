package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bookcourier/backend/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistStore interface {
	WishlistExists(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error)
	InsertWishlistItem(ctx context.Context, item *models.WishlistItem) (primitive.ObjectID, error)
	WishlistByEmail(ctx context.Context, email string) ([]models.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, id primitive.ObjectID, email string) error
}

type WishlistHandler struct {
	DB WishlistStore
}

type addWishlistRequest struct {
	BookID string      `json:"bookId"`
	Title  string      `json:"title"`
	Image  string      `json:"image"`
	Price  interface{} `json:"price"`
}

// Add wishlists a book for the caller, snapshotting title/image/price.
// POST /wishlist. Re-adding the same book answers "Already wishlisted"; the
// existence check and insert are separate operations, so concurrent adds can
// still slip through (accepted best-effort semantics).
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req addWishlistRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	bookID, ok := parseObjectID(w, req.BookID)
	if !ok {
		return
	}
	exists, err := h.DB.WishlistExists(r.Context(), bookID, id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to check wishlist")
		return
	}
	if exists {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Already wishlisted"})
		return
	}
	item := &models.WishlistItem{
		BookID:    bookID,
		UserEmail: id.Email,
		Title:     req.Title,
		Image:     req.Image,
		Price:     req.Price,
		AddedAt:   time.Now(),
	}
	insertedID, err := h.DB.InsertWishlistItem(r.Context(), item)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}
	writeInserted(w, insertedID)
}

// List returns the caller's wishlist. GET /wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	items, err := h.DB.WishlistByEmail(r.Context(), id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list wishlist")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Delete removes a wishlist item the caller owns. DELETE /wishlist/{id}.
// The filter matches both id and owner, so deleting someone else's item is a
// no-op.
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	itemID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.DB.DeleteWishlistItem(r.Context(), itemID, id.Email); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to remove from wishlist")
		return
	}
	writeSuccess(w)
}
