package store

import (
	"context"

	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Book documents are schema-less, so reads return raw bson.M documents rather
// than forcing them through a struct that would drop librarian-supplied fields.

func (db *DB) InsertBook(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) AllBooks(ctx context.Context) ([]bson.M, error) {
	return db.findBooks(ctx, bson.M{}, options.Find())
}

func (db *DB) PublishedBooks(ctx context.Context) ([]bson.M, error) {
	return db.findBooks(ctx, bson.M{"status": models.BookStatusPublished}, options.Find())
}

func (db *DB) LatestBooks(ctx context.Context, limit int64) ([]bson.M, error) {
	opts := options.Find().SetSort(bson.M{"addedAt": -1}).SetLimit(limit)
	return db.findBooks(ctx, bson.M{"status": models.BookStatusPublished}, opts)
}

func (db *DB) BooksByOwner(ctx context.Context, email string) ([]bson.M, error) {
	return db.findBooks(ctx, bson.M{"addedBy": email}, options.Find())
}

func (db *DB) findBooks(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]bson.M, error) {
	cur, err := db.Books().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []bson.M{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var book bson.M
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// BookSummaryByID returns the typed subset needed for the invoice join, or
// nil when the book no longer exists.
func (db *DB) BookSummaryByID(ctx context.Context, id primitive.ObjectID) (*models.BookSummary, error) {
	var b models.BookSummary
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// OwnedBookIDs returns the ids of all books added by email.
func (db *DB) OwnedBookIDs(ctx context.Context, email string) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := db.Books().Find(ctx, bson.M{"addedBy": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// UpdateOwnedBook applies set to the book only when both id and owner match,
// so a librarian cannot modify another librarian's listing. Returns the
// matched count; 0 means not found or not owned, which callers treat as a
// successful no-op.
func (db *DB) UpdateOwnedBook(ctx context.Context, id primitive.ObjectID, owner string, set bson.M) (int64, error) {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id, "addedBy": owner}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// UpdateBookStatus sets the status by id only (admin path, no ownership match).
func (db *DB) UpdateBookStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SetBookCover records the stored cover object key and public URL on the
// book. Ownership must already be checked by the caller.
func (db *DB) SetBookCover(ctx context.Context, id primitive.ObjectID, coverKey, coverURL string) error {
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"coverKey": coverKey, "coverUrl": coverURL}})
	return err
}

// DeleteBook removes the book and returns its stored cover key (if any) so
// the caller can clean up object storage.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (coverKey string, err error) {
	var book bson.M
	err = db.Books().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if k, ok := book["coverKey"].(string); ok {
		coverKey = k
	}
	return coverKey, nil
}
