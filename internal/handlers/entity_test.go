package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"together-backend/internal/entity"
	"together-backend/internal/store"
)

func newEntityRouter() (*chi.Mux, *entity.Registry) {
	reg := entity.NewRegistry(store.NewMemoryStore())
	h := NewEntityHandler(reg, nil)

	r := chi.NewRouter()
	r.Route("/api/v1/entities/{collection}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r, reg
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEntityListEmptyCollection(t *testing.T) {
	router, _ := newEntityRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/entities/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestEntityCreateAndList(t *testing.T) {
	router, _ := newEntityRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `{"title":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])
	assert.NotEmpty(t, created["created_date"])
	assert.Equal(t, "hello", created["title"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/entities/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, created["id"], docs[0]["id"])
}

func TestEntityCreateRejectsEmptyBody(t *testing.T) {
	router, _ := newEntityRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntityListOrderAndLimit(t *testing.T) {
	router, _ := newEntityRouter()

	for _, title := range []string{"c", "a", "b"} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `{"title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/entities/notes?order=title&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["title"])
	assert.Equal(t, "b", docs[1]["title"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/entities/notes?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntityUpdate(t *testing.T) {
	router, _ := newEntityRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `{"title":"old","body":"keep"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/entities/notes/"+id, `{"title":"new"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "new", updated["title"])
	assert.Equal(t, "keep", updated["body"])
}

func TestEntityUpdateMissingReturns404(t *testing.T) {
	router, _ := newEntityRouter()

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/entities/notes/ghost", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntityDeleteIdempotent(t *testing.T) {
	router, _ := newEntityRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `{"title":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/entities/notes/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/entities/notes/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEntityChangeEventsPublished(t *testing.T) {
	router, reg := newEntityRouter()

	var events []entity.ChangeEvent
	reg.SetPublisher(publisherFunc(func(ev entity.ChangeEvent) {
		events = append(events, ev)
	}))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/entities/notes", `{"title":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	doJSON(t, router, http.MethodPatch, "/api/v1/entities/notes/"+id, `{"title":"y"}`)
	doJSON(t, router, http.MethodDelete, "/api/v1/entities/notes/"+id, "")

	require.Len(t, events, 3)
	assert.Equal(t, "created", events[0].Action)
	assert.Equal(t, "updated", events[1].Action)
	assert.Equal(t, "deleted", events[2].Action)
	for _, ev := range events {
		assert.Equal(t, "notes", ev.Collection)
		assert.Equal(t, id, ev.ID)
	}
}

type publisherFunc func(entity.ChangeEvent)

func (f publisherFunc) Publish(ev entity.ChangeEvent) { f(ev) }
