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

func newSessionRouter() *chi.Mux {
	reg := entity.NewRegistry(store.NewMemoryStore())
	h := NewSessionHandler(services.NewSessionService(reg), nil)

	r := chi.NewRouter()
	r.Post("/api/v1/sessions/start", h.Start)
	r.Post("/api/v1/sessions/{id}/stop", h.Stop)
	r.Get("/api/v1/sessions/active", h.Active)
	return r
}

func TestSessionStartMissingTitleReturns400(t *testing.T) {
	router := newSessionRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", `{"artist":"someone"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
}

func TestSessionStartStopRoundTrip(t *testing.T) {
	router := newSessionRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/start",
		`{"title":"Song A","artist":"A","started_by":"ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/stop", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":null`)
}
