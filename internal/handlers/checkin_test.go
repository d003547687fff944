package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"together-backend/internal/entity"
	"together-backend/internal/services"
	"together-backend/internal/store"
)

func newCheckInRouter() *chi.Mux {
	reg := entity.NewRegistry(store.NewMemoryStore())
	h := NewCheckInHandler(services.NewCheckInService(reg))

	r := chi.NewRouter()
	r.Post("/api/v1/checkins", h.Submit)
	r.Get("/api/v1/checkins/today", h.Today)
	return r
}

func TestCheckInSubmitAndToday(t *testing.T) {
	router := newCheckInRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkins",
		`{"user_name":"ada","date":"2024-06-01","emotion":"happy"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/checkins/today?user_name=ada&date=2024-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out["checkin"])
	assert.Equal(t, "happy", out["checkin"]["emotion"])
}

func TestCheckInSubmitBadDateReturns400(t *testing.T) {
	router := newCheckInRouter()

	// A malformed date is the caller's mistake, not a server failure.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkins",
		`{"user_name":"ada","date":"not-a-date","emotion":"happy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid date")
}

func TestCheckInSubmitRequiresUserNameField(t *testing.T) {
	router := newCheckInRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkins", `{"emotion":"happy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
