package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/bookcourier/backend/models"
	"github.com/bookcourier/backend/service"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CoversStore interface {
	userResolver
	BookByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	SetBookCover(ctx context.Context, id primitive.ObjectID, coverKey, coverURL string) error
}

// CoversHandler stores book cover images in S3 and streams them back out.
type CoversHandler struct {
	DB       CoversStore
	S3       *service.S3Service
	MaxBytes int64
}

// Upload attaches a cover image to a listing. POST /books/{id}/cover,
// multipart field "cover", librarian/admin. Librarians may only cover their
// own listings; admin matches by id alone.
func (h *CoversHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, id, ok := requireRole(w, r, h.DB, models.RoleLibrarian, models.RoleAdmin)
	if !ok {
		return
	}
	bookID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if h.S3 == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Cover storage not configured")
		return
	}
	book, err := h.DB.BookByID(r.Context(), bookID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load book")
		return
	}
	if book == nil {
		writeMessage(w, http.StatusNotFound, "Book not found")
		return
	}
	if user.Role != models.RoleAdmin {
		if owner, _ := book["addedBy"].(string); owner != id.Email {
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing cover file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeMessage(w, http.StatusBadRequest, "Cover must be an image")
		return
	}

	key, err := h.S3.Upload(r.Context(), "covers/", header.Filename, file, contentType)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to store cover")
		return
	}
	coverURL := "/books/" + bookID.Hex() + "/cover"
	if err := h.DB.SetBookCover(r.Context(), bookID, key, coverURL); err != nil {
		if delErr := h.S3.Delete(r.Context(), key); delErr != nil {
			log.Printf("delete orphaned cover %s: %v", key, delErr)
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to update book")
		return
	}
	if oldKey, _ := book["coverKey"].(string); oldKey != "" && oldKey != key {
		if err := h.S3.Delete(r.Context(), oldKey); err != nil {
			log.Printf("delete replaced cover %s: %v", oldKey, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "coverUrl": coverURL})
}

// Get streams a listing's cover image. GET /books/{id}/cover, public so an
// img src can point at it.
func (h *CoversHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	book, err := h.DB.BookByID(r.Context(), bookID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load book")
		return
	}
	coverKey := ""
	if book != nil {
		coverKey, _ = book["coverKey"].(string)
	}
	if coverKey == "" || h.S3 == nil {
		writeMessage(w, http.StatusNotFound, "Cover not found")
		return
	}
	body, contentType, err := h.S3.GetObject(r.Context(), coverKey)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Cover not found")
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("stream cover %s: %v", coverKey, err)
	}
}
