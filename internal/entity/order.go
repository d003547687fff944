package entity

import (
	"strings"

	"together-backend/internal/store"
)

// ParseOrder turns an order string into an OrderSpec. A leading "-" means
// descending; an empty string defaults to descending created_date.
func ParseOrder(orderStr string) store.OrderSpec {
	if orderStr == "" {
		return store.OrderSpec{Field: store.CreatedDateField, Desc: true}
	}
	if strings.HasPrefix(orderStr, "-") {
		return store.OrderSpec{Field: strings.TrimPrefix(orderStr, "-"), Desc: true}
	}
	return store.OrderSpec{Field: orderStr, Desc: false}
}
