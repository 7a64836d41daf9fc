package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookcourier/backend/identity"
	"github.com/bookcourier/backend/middleware"
	"github.com/bookcourier/backend/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory stand-in for *store.DB covering every handler
// store interface.
type fakeStore struct {
	users     map[string]*models.User
	books     map[primitive.ObjectID]bson.M
	orders    map[primitive.ObjectID]bson.M
	wishlist  map[primitive.ObjectID]*models.WishlistItem
	reviews   []*models.Review
	paid      []models.PaidOrder
	summaries map[primitive.ObjectID]*models.BookSummary

	usersCreated int
}

var (
	_ UsersStore    = (*fakeStore)(nil)
	_ BooksStore    = (*fakeStore)(nil)
	_ OrdersStore   = (*fakeStore)(nil)
	_ WishlistStore = (*fakeStore)(nil)
	_ ReviewsStore  = (*fakeStore)(nil)
	_ InvoicesStore = (*fakeStore)(nil)
	_ CoversStore   = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*models.User{},
		books:     map[primitive.ObjectID]bson.M{},
		orders:    map[primitive.ObjectID]bson.M{},
		wishlist:  map[primitive.ObjectID]*models.WishlistItem{},
		summaries: map[primitive.ObjectID]*models.BookSummary{},
	}
}

func (f *fakeStore) addUser(email, role string) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Name: "Test", Email: email, Role: role, CreatedAt: time.Now()}
	f.users[email] = u
	return u
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeStore) GetOrCreateUser(ctx context.Context, email, name string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	if name == "" {
		name = "User"
	}
	u := &models.User{ID: primitive.NewObjectID(), Name: name, Email: email, Role: models.RoleUser, CreatedAt: time.Now()}
	f.users[email] = u
	f.usersCreated++
	return u, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error) {
	for _, u := range f.users {
		if u.ID == id {
			u.Role = role
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) InsertBook(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	f.books[id] = doc
	return id, nil
}

func (f *fakeStore) AllBooks(ctx context.Context) ([]bson.M, error) {
	out := []bson.M{}
	for _, b := range f.books {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) PublishedBooks(ctx context.Context) ([]bson.M, error) {
	out := []bson.M{}
	for _, b := range f.books {
		if b["status"] == models.BookStatusPublished {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) LatestBooks(ctx context.Context, limit int64) ([]bson.M, error) {
	out, _ := f.PublishedBooks(ctx)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) BooksByOwner(ctx context.Context, email string) ([]bson.M, error) {
	out := []bson.M{}
	for _, b := range f.books {
		if b["addedBy"] == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) BookByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	return f.books[id], nil
}

func (f *fakeStore) UpdateOwnedBook(ctx context.Context, id primitive.ObjectID, owner string, set bson.M) (int64, error) {
	b := f.books[id]
	if b == nil || b["addedBy"] != owner {
		return 0, nil
	}
	for k, v := range set {
		b[k] = v
	}
	return 1, nil
}

func (f *fakeStore) UpdateBookStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	b := f.books[id]
	if b == nil {
		return 0, nil
	}
	b["status"] = status
	return 1, nil
}

func (f *fakeStore) SetBookCover(ctx context.Context, id primitive.ObjectID, coverKey, coverURL string) error {
	if b := f.books[id]; b != nil {
		b["coverKey"] = coverKey
		b["coverUrl"] = coverURL
	}
	return nil
}

func (f *fakeStore) DeleteBook(ctx context.Context, id primitive.ObjectID) (string, error) {
	coverKey := ""
	if b := f.books[id]; b != nil {
		coverKey, _ = b["coverKey"].(string)
	}
	delete(f.books, id)
	return coverKey, nil
}

func (f *fakeStore) DeleteOrdersByBook(ctx context.Context, bookID primitive.ObjectID) error {
	for id, o := range f.orders {
		if o["bookId"] == bookID {
			delete(f.orders, id)
		}
	}
	return nil
}

func (f *fakeStore) InsertOrder(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	f.orders[id] = doc
	return id, nil
}

func (f *fakeStore) OrdersByEmail(ctx context.Context, email string) ([]bson.M, error) {
	out := []bson.M{}
	for _, o := range f.orders {
		if o["userEmail"] == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) OwnedBookIDs(ctx context.Context, email string) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{}
	for id, b := range f.books {
		if b["addedBy"] == email {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) OrdersByBookIDs(ctx context.Context, ids []primitive.ObjectID) ([]bson.M, error) {
	out := []bson.M{}
	for _, o := range f.orders {
		for _, id := range ids {
			if o["bookId"] == id {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	o := f.orders[id]
	if o == nil {
		return 0, nil
	}
	o["status"] = status
	return 1, nil
}

func (f *fakeStore) OrderExists(ctx context.Context, id primitive.ObjectID, email string) (bool, error) {
	o := f.orders[id]
	return o != nil && o["userEmail"] == email, nil
}

func (f *fakeStore) OrderExistsForBook(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error) {
	for _, o := range f.orders {
		if o["bookId"] == bookID && o["userEmail"] == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkOrderPaid(ctx context.Context, id primitive.ObjectID, paymentID string) error {
	if o := f.orders[id]; o != nil {
		o["paymentStatus"] = models.PaymentStatusPaid
		o["paymentId"] = paymentID
		o["date"] = time.Now()
	}
	return nil
}

func (f *fakeStore) PaidOrdersByEmail(ctx context.Context, email string) ([]models.PaidOrder, error) {
	return f.paid, nil
}

func (f *fakeStore) WishlistExists(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error) {
	for _, item := range f.wishlist {
		if item.BookID == bookID && item.UserEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertWishlistItem(ctx context.Context, item *models.WishlistItem) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	item.ID = id
	f.wishlist[id] = item
	return id, nil
}

func (f *fakeStore) WishlistByEmail(ctx context.Context, email string) ([]models.WishlistItem, error) {
	out := []models.WishlistItem{}
	for _, item := range f.wishlist {
		if item.UserEmail == email {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteWishlistItem(ctx context.Context, id primitive.ObjectID, email string) error {
	if item, ok := f.wishlist[id]; ok && item.UserEmail == email {
		delete(f.wishlist, id)
	}
	return nil
}

func (f *fakeStore) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	review.ID = primitive.NewObjectID()
	f.reviews = append(f.reviews, review)
	return review.ID, nil
}

func (f *fakeStore) ReviewsByBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error) {
	out := []models.Review{}
	for _, rev := range f.reviews {
		if rev.BookID == bookID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (f *fakeStore) BookSummaryByID(ctx context.Context, id primitive.ObjectID) (*models.BookSummary, error) {
	return f.summaries[id], nil
}

// doAuthedRoute serves one request through a chi route (so URL params
// resolve) wrapped in the auth middleware with the given caller identity.
func doAuthedRoute(t *testing.T, id *identity.Identity, method, pattern, target, body string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, fn)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	middleware.Auth(&stubVerifier{id: id})(r).ServeHTTP(rec, req)
	return rec
}
