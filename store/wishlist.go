package store

import (
	"context"

	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistExists reports whether email already wishlisted bookID. The check
// and the following insert are separate operations, so uniqueness is
// best-effort under concurrent adds.
func (db *DB) WishlistExists(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error) {
	n, err := db.Wishlist().CountDocuments(ctx, bson.M{"bookId": bookID, "userEmail": email})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *DB) InsertWishlistItem(ctx context.Context, item *models.WishlistItem) (primitive.ObjectID, error) {
	res, err := db.Wishlist().InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) WishlistByEmail(ctx context.Context, email string) ([]models.WishlistItem, error) {
	cur, err := db.Wishlist().Find(ctx, bson.M{"userEmail": email})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	items := []models.WishlistItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteWishlistItem removes the item only when it belongs to email.
func (db *DB) DeleteWishlistItem(ctx context.Context, id primitive.ObjectID, email string) error {
	_, err := db.Wishlist().DeleteOne(ctx, bson.M{"_id": id, "userEmail": email})
	return err
}
