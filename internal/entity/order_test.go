package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"together-backend/internal/store"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name  string
		order string
		want  store.OrderSpec
	}{
		{"empty defaults to newest first", "", store.OrderSpec{Field: "created_date", Desc: true}},
		{"leading dash is descending", "-last_seen", store.OrderSpec{Field: "last_seen", Desc: true}},
		{"plain field is ascending", "title", store.OrderSpec{Field: "title", Desc: false}},
		{"descending created_date", "-created_date", store.OrderSpec{Field: "created_date", Desc: true}},
		{"ascending created_date", "created_date", store.OrderSpec{Field: "created_date", Desc: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrder(tt.order))
		})
	}
}
