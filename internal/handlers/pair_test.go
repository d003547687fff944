package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"together-backend/internal/entity"
	"together-backend/internal/middleware"
	"together-backend/internal/models"
	"together-backend/internal/repository"
	"together-backend/internal/services"
	"together-backend/internal/store"
)

type pairRouterFixture struct {
	router      *chi.Mux
	userService *services.UserService
	pairService *services.PairService
}

func newPairRouter() *pairRouterFixture {
	reg := entity.NewRegistry(store.NewMemoryStore())
	userRepo := repository.NewUserRepository(reg)
	pairRepo := repository.NewPairRepository(reg)
	userService := services.NewUserService(userRepo, "test-secret")
	pairService := services.NewPairService(pairRepo, userRepo)
	h := NewPairHandler(pairService, services.NewWSHub(pairService))

	r := chi.NewRouter()
	r.Route("/api/v1/pairs", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(userService))
		r.Post("/", h.CreatePair)
		r.Delete("/{pair_id}", h.DeletePair)
	})
	return &pairRouterFixture{router: r, userService: userService, pairService: pairService}
}

func (f *pairRouterFixture) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := f.userService.CreateUser(context.Background(), name)
	require.NoError(t, err)
	return user
}

func (f *pairRouterFixture) doAs(t *testing.T, user *models.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, authWrap(f.router, user.Token), method, path, body)
}

// authWrap injects the bearer token before the request reaches the router.
func authWrap(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
		next.ServeHTTP(w, r)
	})
}

func TestPairCreateAndConflictStatuses(t *testing.T) {
	f := newPairRouter()

	ada := f.createUser(t, "Ada")
	grace := f.createUser(t, "Grace")
	alan := f.createUser(t, "Alan")

	// Pairing with yourself is a conflict, not a server error.
	res := f.doAs(t, ada, http.MethodPost, "/api/v1/pairs", `{"partner_code":"`+ada.Code+`"}`)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = f.doAs(t, ada, http.MethodPost, "/api/v1/pairs", `{"partner_code":"`+grace.Code+`"}`)
	require.Equal(t, http.StatusOK, res.Code)

	// Either side already paired maps to 409.
	res = f.doAs(t, alan, http.MethodPost, "/api/v1/pairs", `{"partner_code":"`+grace.Code+`"}`)
	assert.Equal(t, http.StatusConflict, res.Code)
	res = f.doAs(t, ada, http.MethodPost, "/api/v1/pairs", `{"partner_code":"`+alan.Code+`"}`)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestPairCreateUnknownCodeReturns404(t *testing.T) {
	f := newPairRouter()

	ada := f.createUser(t, "Ada")

	res := f.doAs(t, ada, http.MethodPost, "/api/v1/pairs", `{"partner_code":"ZZZZZZ"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestPairDeleteRequiresMembership(t *testing.T) {
	f := newPairRouter()
	ctx := context.Background()

	ada := f.createUser(t, "Ada")
	grace := f.createUser(t, "Grace")
	outsider := f.createUser(t, "Alan")

	pair, err := f.pairService.CreatePair(ctx, ada.ID, grace.Code)
	require.NoError(t, err)

	res := f.doAs(t, outsider, http.MethodDelete, "/api/v1/pairs/"+pair.ID, "")
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = f.doAs(t, ada, http.MethodDelete, "/api/v1/pairs/"+pair.ID, "")
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = f.doAs(t, ada, http.MethodDelete, "/api/v1/pairs/"+pair.ID, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}
