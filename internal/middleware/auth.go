// auth.go gates the signed-in area of the application. Anonymous requests
// are redirected to the login page; authenticated requests get the current
// profile loaded into the gin context once, so handlers never re-query it.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/session"
)

const (
	// ProfileContextKey is the gin.Context key holding the *models.Profile of
	// the signed-in user.
	ProfileContextKey = "current_profile"

	// ProfileIDContextKey mirrors the profile id for consumers that only
	// need the identifier (rate limit keys, logs).
	ProfileIDContextKey = "profile_id"
)

// LoginRequired returns middleware that rejects anonymous requests with a
// redirect to /login and resolves the session's profile id to a full profile
// row for authenticated ones.
//
// A session pointing at a profile that no longer exists is treated as
// anonymous; the row may have been deleted while the cookie was still live.
func LoginRequired(profiles *repositories.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if sess == nil || !sess.LoggedIn() {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		profile, err := profiles.GetByID(c.Request.Context(), sess.ProfileID)
		if err != nil {
			slog.Error("failed to load current profile", "profile_id", sess.ProfileID, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if profile == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set(ProfileContextKey, profile)
		c.Set(ProfileIDContextKey, profile.ID)

		c.Next()
	}
}

// CurrentProfile returns the signed-in profile loaded by LoginRequired, or
// nil on routes outside its scope.
func CurrentProfile(c *gin.Context) *models.Profile {
	v, exists := c.Get(ProfileContextKey)
	if !exists {
		return nil
	}
	profile, ok := v.(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
