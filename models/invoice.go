package models

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice is derived from a paid order joined to its book. Never persisted;
// recomputed on every read.
type Invoice struct {
	ID        primitive.ObjectID `json:"_id"`
	PaymentID string             `json:"paymentId"`
	BookTitle string             `json:"bookTitle"`
	Amount    float64            `json:"amount"`
	Date      time.Time          `json:"date"`
}

// NormalizeAmount converts a stored price into a numeric amount. Prices are
// inconsistently typed in the data: sometimes a number, sometimes a currency
// string like "$12.50". Textual values are stripped of everything except
// digits and dots before parsing; anything unparseable becomes 0.
func NormalizeAmount(price interface{}) float64 {
	switch p := price.(type) {
	case nil:
		return 0
	case float64:
		return p
	case float32:
		return float64(p)
	case int:
		return float64(p)
	case int32:
		return float64(p)
	case int64:
		return float64(p)
	case primitive.Decimal128:
		return parseAmount(p.String())
	case string:
		return parseAmount(stripNonNumeric(p))
	default:
		return 0
	}
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseAmount(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}
