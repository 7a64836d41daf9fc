package store

import (
	"context"
	"time"

	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreateUser returns the user for email, provisioning one with role
// "user" if none exists. The upsert is a single FindOneAndUpdate so concurrent
// first requests for the same email cannot create duplicates.
func (db *DB) GetOrCreateUser(ctx context.Context, email, name string) (*models.User, error) {
	if name == "" {
		name = "User"
	}
	update := bson.M{"$setOnInsert": bson.M{
		"name":      name,
		"email":     email,
		"role":      models.RoleUser,
		"createdAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	if err := db.Users().FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := db.Users().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole sets the role of the user with the given id. Returns the
// number of matched documents so callers can distinguish a missing user.
func (db *DB) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error) {
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
