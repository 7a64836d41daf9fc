package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// PaidOrder is the typed subset of an order document needed to derive an
// invoice. Orders themselves are schema-less (they carry whatever shipping
// fields the reader submitted) and list reads return the raw documents.
type PaidOrder struct {
	ID        primitive.ObjectID `bson:"_id"`
	BookID    primitive.ObjectID `bson:"bookId"`
	OrderedAt time.Time          `bson:"orderedAt"`
}
