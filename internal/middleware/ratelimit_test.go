package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newRateLimitRouter(t *testing.T, cfg RateLimitConfig) *gin.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	r := gin.New()
	r.POST("/login", RateLimitMiddleware(rdb, cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func postLogin(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// RateLimitMiddleware tests
// ---------------------------------------------------------------------------

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	r := newRateLimitRouter(t, AuthRateLimitConfig(10, 5))

	for i := 0; i < 5; i++ {
		if w := postLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	r := newRateLimitRouter(t, AuthRateLimitConfig(1, 2))

	postLogin(r, "10.0.0.2")
	postLogin(r, "10.0.0.2")
	w := postLogin(r, "10.0.0.2")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestRateLimit_KeysPerIP(t *testing.T) {
	r := newRateLimitRouter(t, AuthRateLimitConfig(1, 1))

	if w := postLogin(r, "10.0.0.3"); w.Code != http.StatusOK {
		t.Fatalf("first IP status = %d, want 200", w.Code)
	}
	if w := postLogin(r, "10.0.0.3"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first IP second request = %d, want 429", w.Code)
	}
	// A different client is unaffected.
	if w := postLogin(r, "10.0.0.4"); w.Code != http.StatusOK {
		t.Fatalf("second IP status = %d, want 200", w.Code)
	}
}

func TestRateLimit_SetsRemainingHeader(t *testing.T) {
	r := newRateLimitRouter(t, AuthRateLimitConfig(10, 5))

	w := postLogin(r, "10.0.0.5")
	if w.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("response missing X-RateLimit-Remaining header")
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", got)
	}
}

func TestRateLimit_FailsOpenWithoutRedis(t *testing.T) {
	// Client pointed at a closed port: limiter errors, requests pass.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { rdb.Close() })

	r := gin.New()
	r.POST("/login", RateLimitMiddleware(rdb, AuthRateLimitConfig(1, 1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if w := postLogin(r, "10.0.0.6"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 when Redis is down", i+1, w.Code)
		}
	}
}
