package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bookcourier/backend/models"
	"github.com/bookcourier/backend/service"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const latestBooksLimit = 6

type BooksStore interface {
	userResolver
	InsertBook(ctx context.Context, doc bson.M) (primitive.ObjectID, error)
	AllBooks(ctx context.Context) ([]bson.M, error)
	PublishedBooks(ctx context.Context) ([]bson.M, error)
	LatestBooks(ctx context.Context, limit int64) ([]bson.M, error)
	BooksByOwner(ctx context.Context, email string) ([]bson.M, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	UpdateOwnedBook(ctx context.Context, id primitive.ObjectID, owner string, set bson.M) (int64, error)
	UpdateBookStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) (coverKey string, err error)
	DeleteOrdersByBook(ctx context.Context, bookID primitive.ObjectID) error
}

type BooksHandler struct {
	DB BooksStore
	S3 *service.S3Service
}

// AllBooks returns every published listing. GET /allbooks, public.
func (h *BooksHandler) AllBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.DB.PublishedBooks(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// LatestBooks returns the newest published listings. GET /latestbooks, public.
func (h *BooksHandler) LatestBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.DB.LatestBooks(r.Context(), latestBooksLimit)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// Get returns one listing. GET /book/{id}, public.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load book")
		return
	}
	if book == nil {
		writeMessage(w, http.StatusNotFound, "Book not found")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Create stores a new listing owned by the caller. POST /books,
// librarian/admin. The body is a free-form document; ownership fields are
// always overwritten from the verified identity.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin)
	if !ok {
		return
	}
	doc := map[string]interface{}{}
	if err := decodeBody(r, &doc); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	stripFields(doc, bookProtectedFields)
	doc["addedBy"] = id.Email
	doc["addedAt"] = time.Now()

	insertedID, err := h.DB.InsertBook(r.Context(), bson.M(doc))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to add book")
		return
	}
	writeInserted(w, insertedID)
}

// Mine returns the caller's own listings. GET /mybooks, librarian/admin.
func (h *BooksHandler) Mine(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin)
	if !ok {
		return
	}
	books, err := h.DB.BooksByOwner(r.Context(), id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// Update patches a listing. PATCH /books/{id}, librarian/admin. The filter
// matches both id and owner, so patching someone else's book is a successful
// no-op rather than a leak of its existence.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin)
	if !ok {
		return
	}
	bookID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	doc := map[string]interface{}{}
	if err := decodeBody(r, &doc); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	stripFields(doc, bookProtectedFields)
	if len(doc) == 0 {
		writeSuccess(w)
		return
	}
	if _, err := h.DB.UpdateOwnedBook(r.Context(), bookID, id.Email, bson.M(doc)); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to update book")
		return
	}
	writeSuccess(w)
}

// AdminList returns every listing regardless of status. GET /admin/books.
func (h *BooksHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleAdmin); !ok {
		return
	}
	books, err := h.DB.AllBooks(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus sets a listing's status. PATCH /admin/books/{id}/status.
// The status string is accepted as-is, matching observed data.
func (h *BooksHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleAdmin); !ok {
		return
	}
	bookID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if _, err := h.DB.UpdateBookStatus(r.Context(), bookID, req.Status); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to update status")
		return
	}
	writeSuccess(w)
}

// Delete removes a listing and every order referencing it. DELETE
// /admin/books/{id}. The two deletes are independent writes; a crash between
// them can leave orphaned orders, which is accepted.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleAdmin); !ok {
		return
	}
	bookID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	coverKey, err := h.DB.DeleteBook(r.Context(), bookID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}
	if err := h.DB.DeleteOrdersByBook(r.Context(), bookID); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete orders")
		return
	}
	if coverKey != "" && h.S3 != nil {
		if err := h.S3.Delete(r.Context(), coverKey); err != nil {
			log.Printf("delete cover %s: %v", coverKey, err)
		}
	}
	writeSuccess(w)
}
