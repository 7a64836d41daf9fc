package store

import (
	"context"
	"time"

	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertOrder(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	res, err := db.Orders().InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) OrdersByEmail(ctx context.Context, email string) ([]bson.M, error) {
	return db.findOrders(ctx, bson.M{"userEmail": email})
}

// OrdersByBookIDs returns orders whose bookId is one of ids. Used for the
// librarian view: fetch the caller's book ids first, then the orders on them.
func (db *DB) OrdersByBookIDs(ctx context.Context, ids []primitive.ObjectID) ([]bson.M, error) {
	return db.findOrders(ctx, bson.M{"bookId": bson.M{"$in": ids}})
}

func (db *DB) findOrders(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cur, err := db.Orders().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	orders := []bson.M{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (db *DB) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	res, err := db.Orders().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// OrderExists reports whether an order with the given id belongs to email.
func (db *DB) OrderExists(ctx context.Context, id primitive.ObjectID, email string) (bool, error) {
	n, err := db.Orders().CountDocuments(ctx, bson.M{"_id": id, "userEmail": email})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OrderExistsForBook reports whether email has any order for the given book.
// Used as the review gate; payment status is deliberately not checked.
func (db *DB) OrderExistsForBook(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error) {
	n, err := db.Orders().CountDocuments(ctx, bson.M{"bookId": bookID, "userEmail": email})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkOrderPaid sets the payment fields. Ownership must already be checked.
func (db *DB) MarkOrderPaid(ctx context.Context, id primitive.ObjectID, paymentID string) error {
	_, err := db.Orders().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"paymentStatus": models.PaymentStatusPaid,
		"paymentId":     paymentID,
		"date":          time.Now(),
	}})
	return err
}

// PaidOrdersByEmail returns the typed subset of email's paid orders used for
// invoice derivation.
func (db *DB) PaidOrdersByEmail(ctx context.Context, email string) ([]models.PaidOrder, error) {
	filter := bson.M{"userEmail": email, "paymentStatus": models.PaymentStatusPaid}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "bookId": 1, "orderedAt": 1})
	cur, err := db.Orders().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orders []models.PaidOrder
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// DeleteOrdersByBook removes all orders referencing bookID. Part of the book
// delete cascade; not atomic with the book delete itself.
func (db *DB) DeleteOrdersByBook(ctx context.Context, bookID primitive.ObjectID) error {
	_, err := db.Orders().DeleteMany(ctx, bson.M{"bookId": bookID})
	return err
}
