package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

// decodeBody parses a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// Book and order bodies are schema-less passthroughs; the fields the server
// owns must never come from the client.
var (
	bookProtectedFields  = []string{"_id", "addedBy", "addedAt", "coverKey", "coverUrl"}
	orderProtectedFields = []string{"_id", "bookId", "userEmail", "status", "paymentStatus", "orderedAt", "paymentId", "date"}
)

// stripFields removes the named keys from a client-supplied document.
func stripFields(doc map[string]interface{}, fields []string) {
	for _, f := range fields {
		delete(doc, f)
	}
}
