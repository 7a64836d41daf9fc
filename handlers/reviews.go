package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewsStore interface {
	OrderExistsForBook(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error)
	InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	ReviewsByBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error)
}

type ReviewsHandler struct {
	DB ReviewsStore
}

type createReviewRequest struct {
	BookID  string  `json:"bookId"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// Create stores a review. POST /reviews. Gated on the caller having at least
// one order for that book; the order does not have to be paid, which is the
// intended behavior.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	bookID, ok := parseObjectID(w, req.BookID)
	if !ok {
		return
	}
	ordered, err := h.DB.OrderExistsForBook(r.Context(), bookID, id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to check orders")
		return
	}
	if !ordered {
		writeMessage(w, http.StatusForbidden, "Order required to review")
		return
	}
	name := id.Name
	if name == "" {
		name = "User"
	}
	review := &models.Review{
		BookID:    bookID,
		UserEmail: id.Email,
		UserName:  name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	insertedID, err := h.DB.InsertReview(r.Context(), review)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to add review")
		return
	}
	writeInserted(w, insertedID)
}

// List returns a book's reviews, newest first. GET /reviews?bookId=, public.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseObjectID(w, r.URL.Query().Get("bookId"))
	if !ok {
		return
	}
	reviews, err := h.DB.ReviewsByBook(r.Context(), bookID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
