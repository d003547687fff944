package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterStoreBurstThenDeny(t *testing.T) {
	s := NewLimiterStore(1, 3, time.Minute)
	defer s.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, s.Allow("1.2.3.4"), "request %d within burst", i)
	}
	assert.False(t, s.Allow("1.2.3.4"))
}

func TestLimiterStoreKeysAreIndependent(t *testing.T) {
	s := NewLimiterStore(1, 1, time.Minute)
	defer s.Stop()

	assert.True(t, s.Allow("1.2.3.4"))
	assert.False(t, s.Allow("1.2.3.4"))
	assert.True(t, s.Allow("5.6.7.8"))
}

func TestRateLimitMiddleware(t *testing.T) {
	s := NewLimiterStore(1, 1, time.Minute)
	defer s.Stop()

	handler := RateLimit(s)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/music/search?q=test", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}
