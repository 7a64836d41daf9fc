package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bookcourier/backend/identity"
	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookCreateForbiddenForReader(t *testing.T) {
	db := newFakeStore()
	db.addUser("reader@example.com", models.RoleUser)
	h := &BooksHandler{DB: db}
	id := &identity.Identity{Email: "reader@example.com"}

	rec := doAuthed(t, id, h.Create, http.MethodPost, "/books", `{"title":"Dune"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(db.books) != 0 {
		t.Error("book was stored despite 403")
	}
}

func TestBookCreateForcesOwnership(t *testing.T) {
	db := newFakeStore()
	db.addUser("lib@example.com", models.RoleLibrarian)
	h := &BooksHandler{DB: db}
	id := &identity.Identity{Email: "lib@example.com"}
	body := `{"title":"Dune","price":"$12.50","addedBy":"attacker@example.com"}`

	rec := doAuthed(t, id, h.Create, http.MethodPost, "/books", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp["success"] != true || resp["insertedId"] == "" {
		t.Errorf("unexpected envelope: %v", resp)
	}
	if len(db.books) != 1 {
		t.Fatalf("stored books = %d, want 1", len(db.books))
	}
	for _, b := range db.books {
		if b["addedBy"] != "lib@example.com" {
			t.Errorf("addedBy = %v, want the verified caller", b["addedBy"])
		}
		if b["title"] != "Dune" {
			t.Errorf("title = %v, want Dune", b["title"])
		}
	}
}

func TestBookUpdateOtherOwnersBookIsNoOp(t *testing.T) {
	db := newFakeStore()
	db.addUser("a@example.com", models.RoleLibrarian)
	bookID := primitive.NewObjectID()
	db.books[bookID] = bson.M{"title": "B's book", "addedBy": "b@example.com"}
	h := &BooksHandler{DB: db}
	id := &identity.Identity{Email: "a@example.com"}

	rec := doAuthedRoute(t, id, http.MethodPatch, "/books/{id}",
		"/books/"+bookID.Hex(), `{"title":"hijacked"}`, h.Update)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("envelope = %v, want success:true no-op", resp)
	}
	if db.books[bookID]["title"] != "B's book" {
		t.Errorf("title = %v, B's book was modified", db.books[bookID]["title"])
	}
}

func TestBookUpdateOwnBook(t *testing.T) {
	db := newFakeStore()
	db.addUser("a@example.com", models.RoleLibrarian)
	bookID := primitive.NewObjectID()
	db.books[bookID] = bson.M{"title": "old", "addedBy": "a@example.com"}
	h := &BooksHandler{DB: db}
	id := &identity.Identity{Email: "a@example.com"}

	rec := doAuthedRoute(t, id, http.MethodPatch, "/books/{id}",
		"/books/"+bookID.Hex(), `{"title":"new"}`, h.Update)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if db.books[bookID]["title"] != "new" {
		t.Errorf("title = %v, want new", db.books[bookID]["title"])
	}
}

func TestAdminDeleteCascadesOrders(t *testing.T) {
	db := newFakeStore()
	db.addUser("admin@example.com", models.RoleAdmin)
	bookID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	db.books[bookID] = bson.M{"title": "doomed", "addedBy": "lib@example.com"}
	db.orders[primitive.NewObjectID()] = bson.M{"bookId": bookID, "userEmail": "reader@example.com"}
	db.orders[primitive.NewObjectID()] = bson.M{"bookId": otherID, "userEmail": "reader@example.com"}
	h := &BooksHandler{DB: db}
	id := &identity.Identity{Email: "admin@example.com"}

	rec := doAuthedRoute(t, id, http.MethodDelete, "/admin/books/{id}",
		"/admin/books/"+bookID.Hex(), "", h.Delete)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := db.books[bookID]; ok {
		t.Error("book still present")
	}
	for _, o := range db.orders {
		if o["bookId"] == bookID {
			t.Error("order referencing the deleted book survived")
		}
	}
	if len(db.orders) != 1 {
		t.Errorf("orders left = %d, want 1 (the unrelated one)", len(db.orders))
	}
}
