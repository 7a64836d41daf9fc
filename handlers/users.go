package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookcourier/backend/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsersStore is the slice of the store this handler uses. *store.DB
// satisfies it; tests substitute an in-memory fake.
type UsersStore interface {
	userResolver
	GetOrCreateUser(ctx context.Context, email, name string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error)
}

type UsersHandler struct {
	DB UsersStore
}

// Me returns the caller's user record, provisioning one with role "user" on
// first contact. GET /user is the only route that auto-creates instead of
// answering 403.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	user, err := h.DB.GetOrCreateUser(r.Context(), id.Email, id.Name)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List returns all users. GET /admin/users, admin only.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleAdmin); !ok {
		return
	}
	users, err := h.DB.ListUsers(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role. PATCH /admin/users/{id}/role, admin only.
// Unknown roles are rejected: a typo here would lock the account out of every
// role gate.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireRole(w, r, h.DB, models.RoleAdmin); !ok {
		return
	}
	id, ok := parseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	role := strings.TrimSpace(strings.ToLower(req.Role))
	if !roleValid(role) {
		writeMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}
	matched, err := h.DB.UpdateUserRole(r.Context(), id, role)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to update role")
		return
	}
	if matched == 0 {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeSuccess(w)
}
