package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// newRequestIDRouter builds a minimal Gin engine with RequestIDMiddleware and
// a handler that echoes the request_id value stored in the context back as a
// response header.
func newRequestIDRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Get(RequestIDKey)
		c.Header("X-Context-Request-ID", id.(string))
		c.Status(http.StatusOK)
	})
	return r
}

// ---------------------------------------------------------------------------
// RequestIDMiddleware tests
// ---------------------------------------------------------------------------

func TestRequestIDMiddleware_GeneratesIDWhenAbsent(t *testing.T) {
	r := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Error("expected X-Request-ID response header to be set, got empty string")
	}
	// UUID v4 has 36 characters: xxxxxxxx-xxxx-4xxx-xxxx-xxxxxxxxxxxx
	if len(id) != 36 {
		t.Errorf("expected UUID-format request ID (length 36), got %q", id)
	}
}

func TestRequestIDMiddleware_PropagatesIncomingID(t *testing.T) {
	const upstreamID = "upstream-provided-request-id-001"
	r := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, upstreamID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != upstreamID {
		t.Errorf("response header = %q, want upstream id %q", got, upstreamID)
	}
	if got := w.Header().Get("X-Context-Request-ID"); got != upstreamID {
		t.Errorf("context value = %q, want upstream id %q", got, upstreamID)
	}
}

func TestRequestIDMiddleware_UniquePerRequest(t *testing.T) {
	r := newRequestIDRouter()

	ids := make(map[string]bool)
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		ids[w.Header().Get(RequestIDHeader)] = true
	}

	if len(ids) != 10 {
		t.Errorf("expected 10 unique request IDs, got %d", len(ids))
	}
}
