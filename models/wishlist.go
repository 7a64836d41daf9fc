package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem snapshots the book's title/image/price at add time so the list
// stays renderable even if the listing changes or disappears.
type WishlistItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookID    primitive.ObjectID `bson:"bookId" json:"bookId"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	Title     string             `bson:"title" json:"title"`
	Image     string             `bson:"image" json:"image"`
	Price     interface{}        `bson:"price" json:"price"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}
