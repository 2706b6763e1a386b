package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware(false)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/trains", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		middleware.RateLimit(5, time.Minute)(handler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/trains", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		limited := middleware.RateLimit(1, time.Minute)(handler)

		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("window slides", func(t *testing.T) {
		now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
		m := NewRateLimitMiddleware(false)
		m.now = func() time.Time { return now }
		limited := m.RateLimit(1, time.Minute)(handler)

		req := httptest.NewRequest("GET", "/api/trains", nil)
		req.RemoteAddr = "10.0.0.9:4000"

		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		now = now.Add(61 * time.Second)
		w = httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forwarded header does not bypass limit from untrusted peer", func(t *testing.T) {
		limited := NewRateLimitMiddleware(false).RateLimit(1, time.Minute)(handler)

		for i, spoofed := range []string{"203.0.113.1", "203.0.113.2"} {
			req := httptest.NewRequest("GET", "/api/trains", nil)
			req.RemoteAddr = "192.168.1.3:12345"
			req.Header.Set("X-Forwarded-For", spoofed)
			w := httptest.NewRecorder()
			limited.ServeHTTP(w, req)
			if i == 0 {
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
			}
		}
	})

	t.Run("trusted proxy limits per forwarded client", func(t *testing.T) {
		limited := NewRateLimitMiddleware(true).RateLimit(1, time.Minute)(handler)

		for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
			req := httptest.NewRequest("GET", "/api/trains", nil)
			req.RemoteAddr = "10.0.0.1:443"
			req.Header.Set("X-Forwarded-For", client)
			w := httptest.NewRecorder()
			limited.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("idle clients are evicted", func(t *testing.T) {
		now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
		m := NewRateLimitMiddleware(false)
		m.now = func() time.Time { return now }
		limited := m.RateLimit(5, time.Minute)(handler)

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
			req := httptest.NewRequest("GET", "/api/trains", nil)
			req.RemoteAddr = addr
			limited.ServeHTTP(httptest.NewRecorder(), req)
		}
		assert.Len(t, m.requests, 3)

		now = now.Add(2 * time.Minute)
		req := httptest.NewRequest("GET", "/api/trains", nil)
		req.RemoteAddr = "10.0.0.4:1"
		limited.ServeHTTP(httptest.NewRecorder(), req)

		assert.Len(t, m.requests, 1)
		assert.Contains(t, m.requests, "10.0.0.4")
	})

	t.Run("disabled when zero", func(t *testing.T) {
		limited := NewRateLimitMiddleware(false).RateLimit(0, time.Minute)(handler)
		for i := 0; i < 10; i++ {
			w := httptest.NewRecorder()
			limited.ServeHTTP(w, httptest.NewRequest("GET", "/api/trains", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.7:5555"
	assert.Equal(t, "192.168.1.7", getClientIP(req, true))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", getClientIP(req, true))

	req.Header.Set("X-Forwarded-For", "172.16.0.1, 10.0.0.1")
	assert.Equal(t, "172.16.0.1", getClientIP(req, true))

	// Without a trusted proxy the headers are ignored.
	assert.Equal(t, "192.168.1.7", getClientIP(req, false))
}
