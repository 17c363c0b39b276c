package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewManager(rdb, time.Hour, false)
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range resp.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	return nil
}

func TestMiddleware_IssuesCookieAndPersists(t *testing.T) {
	m := newManager(t)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/login", func(c *gin.Context) {
		FromContext(c).SetProfile(42)
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", FromContext(c).ProfileID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))
	ck := sessionCookie(w)
	if ck == nil || ck.Value == "" {
		t.Fatal("no session cookie issued")
	}
	if !ck.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(ck)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Body.String() != "42" {
		t.Errorf("profile id = %q, want 42", w2.Body.String())
	}
}

func TestFlash_DisplayedExactlyOnce(t *testing.T) {
	m := newManager(t)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/set", func(c *gin.Context) {
		FromContext(c).Flash("success", "Saved.")
		c.Status(http.StatusOK)
	})
	r.GET("/pop", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", len(FromContext(c).PopFlashes()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/set", nil))
	ck := sessionCookie(w)

	// First read sees the message.
	req := httptest.NewRequest("GET", "/pop", nil)
	req.AddCookie(ck)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Body.String() != "1" {
		t.Fatalf("first pop = %s, want 1", w2.Body.String())
	}

	// Second read finds it cleared.
	req = httptest.NewRequest("GET", "/pop", nil)
	req.AddCookie(ck)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req)
	if w3.Body.String() != "0" {
		t.Errorf("second pop = %s, want 0", w3.Body.String())
	}
}

func TestRotate_InvalidatesOldID(t *testing.T) {
	m := newManager(t)
	var oldID string
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/login", func(c *gin.Context) {
		sess := FromContext(c)
		sess.SetProfile(7)
		oldID = sess.ID
		if err := m.Rotate(c, sess); err != nil {
			t.Errorf("rotate: %v", err)
		}
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", FromContext(c).ProfileID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))
	ck := sessionCookie(w)
	if ck.Value == oldID {
		t.Error("session id not rotated on login")
	}

	// The pre-login id no longer resolves to the authenticated session.
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: oldID})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Body.String() != "0" {
		t.Errorf("old id resolved to profile %s", w2.Body.String())
	}
}

func TestDestroy_ClearsState(t *testing.T) {
	m := newManager(t)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/login", func(c *gin.Context) {
		FromContext(c).SetProfile(7)
		c.Status(http.StatusOK)
	})
	r.GET("/logout", func(c *gin.Context) {
		if err := m.Destroy(c, FromContext(c)); err != nil {
			t.Errorf("destroy: %v", err)
		}
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", FromContext(c).ProfileID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))
	ck := sessionCookie(w)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(ck)
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(ck)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Body.String() != "0" {
		t.Errorf("profile id after logout = %s, want 0", w2.Body.String())
	}
}
