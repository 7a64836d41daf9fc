package handlers

import (
	"context"
	"net/http"

	"github.com/bookcourier/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvoicesStore interface {
	PaidOrdersByEmail(ctx context.Context, email string) ([]models.PaidOrder, error)
	BookSummaryByID(ctx context.Context, id primitive.ObjectID) (*models.BookSummary, error)
}

type InvoicesHandler struct {
	DB InvoicesStore
}

const unknownBookTitle = "Unknown"

// Mine derives one invoice per paid order owned by the caller, joined against
// its book at read time. GET /myinvoices. Invoices are never persisted.
func (h *InvoicesHandler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	orders, err := h.DB.PaidOrdersByEmail(r.Context(), id.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}
	invoices := make([]models.Invoice, 0, len(orders))
	for _, order := range orders {
		title := unknownBookTitle
		var amount float64
		book, err := h.DB.BookSummaryByID(r.Context(), order.BookID)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Failed to list invoices")
			return
		}
		if book != nil {
			if book.Title != "" {
				title = book.Title
			}
			amount = models.NormalizeAmount(book.Price)
		}
		invoices = append(invoices, models.Invoice{
			ID:        order.ID,
			PaymentID: order.ID.Hex(),
			BookTitle: title,
			Amount:    amount,
			Date:      order.OrderedAt,
		})
	}
	writeJSON(w, http.StatusOK, invoices)
}
