package handlers

import (
	"context"
	"net/http"

	"github.com/bookcourier/backend/identity"
	"github.com/bookcourier/backend/middleware"
	"github.com/bookcourier/backend/models"
)

// userResolver is the slice of the store the role gate needs. Every
// role-gated handler's store interface includes it.
type userResolver interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// caller returns the verified identity attached by the auth middleware,
// answering 401 when it is missing (route wired without the middleware).
func caller(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return id, true
}

// requireRole is the authorization gate shared by all role-restricted routes:
// it resolves the caller's stored user record and checks its role against the
// allow-list, answering 403 when there is no record or the role does not
// qualify. Authorization always derives from the stored role, never from
// anything the client sent.
func requireRole(w http.ResponseWriter, r *http.Request, db userResolver, allowed ...string) (*models.User, *identity.Identity, bool) {
	id, ok := caller(w, r)
	if !ok {
		return nil, nil, false
	}
	user, err := db.UserByEmail(r.Context(), id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to resolve user")
		return nil, nil, false
	}
	if user == nil || !roleAllowed(user.Role, allowed) {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return nil, nil, false
	}
	return user, id, true
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func roleValid(role string) bool {
	return roleAllowed(role, models.ValidRoles)
}
