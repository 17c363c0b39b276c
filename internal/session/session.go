// Package session provides redis-backed browser sessions for the admin UI.
// Each session is an opaque UUID cookie pointing at a TTL-bounded redis key;
// the state itself (the logged-in profile id and any pending one-shot flash
// messages) never leaves the server. Handlers receive the request's Session
// explicitly from the gin context instead of reading ambient globals.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the browser cookie carrying the session id.
	CookieName = "inv_session"

	// ContextKey is the gin.Context key under which the request's *Session is
	// stored by the middleware.
	ContextKey = "session"

	keyPrefix = "session:"
)

// Flash is a one-shot message: queued by one request, displayed by the next,
// then gone. Kind is one of "success", "error", or "message".
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the per-request view of one browser session. Mutations mark it
// dirty; the middleware writes it back after the handler returns.
type Session struct {
	ID        string  `json:"-"`
	ProfileID int64   `json:"profile_id"`
	Flashes   []Flash `json:"flashes,omitempty"`

	dirty bool
}

// LoggedIn reports whether the session belongs to an authenticated profile.
func (s *Session) LoggedIn() bool {
	return s.ProfileID != 0
}

// SetProfile marks the session as belonging to the given profile.
func (s *Session) SetProfile(id int64) {
	s.ProfileID = id
	s.dirty = true
}

// Flash queues a one-shot message for the next rendered page.
func (s *Session) Flash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// PopFlashes returns the queued messages and clears them, so each is
// displayed exactly once.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return flashes
}

// Manager loads and stores sessions in redis.
type Manager struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	secure bool
}

// NewManager creates a session manager. ttl bounds how long an idle session
// survives; secure controls the cookie's Secure attribute.
func NewManager(rdb redis.UniversalClient, ttl time.Duration, secure bool) *Manager {
	return &Manager{rdb: rdb, ttl: ttl, secure: secure}
}

// FromContext returns the request's session placed there by Middleware.
func FromContext(c *gin.Context) *Session {
	return c.MustGet(ContextKey).(*Session)
}

// Middleware loads the session named by the cookie (or starts a fresh one),
// exposes it under ContextKey, and persists it after the handler chain when
// it was mutated.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.load(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(ContextKey, sess)

		c.Next()

		if sess.dirty {
			if err := m.save(c.Request.Context(), sess); err != nil {
				// The response is already written; all we can do is log.
				_ = c.Error(err)
			}
		}
	}
}

// Rotate issues the session a fresh id, discarding the old redis key. Called
// on login so an id captured pre-authentication cannot be replayed.
func (m *Manager) Rotate(c *gin.Context, sess *Session) error {
	if sess.ID != "" {
		if err := m.rdb.Del(c.Request.Context(), keyPrefix+sess.ID).Err(); err != nil {
			return fmt.Errorf("discarding old session: %w", err)
		}
	}
	sess.ID = uuid.New().String()
	sess.dirty = true
	m.setCookie(c, sess.ID, int(m.ttl.Seconds()))
	return nil
}

// Destroy removes the session from redis and expires the cookie. Called on
// logout.
func (m *Manager) Destroy(c *gin.Context, sess *Session) error {
	if sess.ID != "" {
		if err := m.rdb.Del(c.Request.Context(), keyPrefix+sess.ID).Err(); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}
	}
	*sess = Session{}
	m.setCookie(c, "", -1)
	return nil
}

func (m *Manager) load(c *gin.Context) (*Session, error) {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return m.fresh(c), nil
	}

	raw, err := m.rdb.Get(c.Request.Context(), keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired or never existed; start over rather than trusting the id.
		return m.fresh(c), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	sess := &Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return m.fresh(c), nil
	}
	sess.ID = id
	return sess, nil
}

func (m *Manager) fresh(c *gin.Context) *Session {
	id := uuid.New().String()
	m.setCookie(c, id, int(m.ttl.Seconds()))
	return &Session{ID: id}
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := m.rdb.Set(ctx, keyPrefix+sess.ID, raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	sess.dirty = false
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", m.secure, true)
}
