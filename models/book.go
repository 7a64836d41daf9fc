package models

// Books are schema-less documents: listings carry whatever fields the
// librarian submitted plus the server-owned addedBy/addedAt/status/cover
// fields. Reads pass the raw document through, so only the fields the backend
// itself inspects get a typed view.

// BookSummary is the typed subset used for the invoice join.
type BookSummary struct {
	Title string      `bson:"title"`
	Price interface{} `bson:"price"` // number or currency string, legacy data has both
}

// Book status values written by this backend. Admin status updates accept
// arbitrary strings, matching observed data.
const (
	BookStatusPending   = "pending"
	BookStatusPublished = "published"
)
