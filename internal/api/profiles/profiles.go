// Package profiles serves the user screens: the user list, the profile view,
// and the signed-in user's own edit form with its optional photo upload.
package profiles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/auth"
	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/middleware"
	"github.com/inventory-admin/inventory-admin/internal/session"
	"github.com/inventory-admin/inventory-admin/internal/telemetry"
	"github.com/inventory-admin/inventory-admin/internal/uploads"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// photoURLTTL bounds how long a generated photo link stays valid on backends
// that sign their URLs.
const photoURLTTL = time.Hour

// Handler serves the profile screens.
type Handler struct {
	profiles *repositories.ProfileRepository
	uploads  *uploads.Service
	render   *web.Renderer
}

// NewHandler creates a profile handler.
func NewHandler(profiles *repositories.ProfileRepository, uploadSvc *uploads.Service, render *web.Renderer) *Handler {
	return &Handler{profiles: profiles, uploads: uploadSvc, render: render}
}

// viewPayload feeds the profile_view template.
type viewPayload struct {
	Profile  *models.Profile
	PhotoURL string
	Own      bool
}

// List renders all profiles.
// GET /user_list
func (h *Handler) List(c *gin.Context) {
	rows, err := h.profiles.List(c.Request.Context())
	if err != nil {
		h.fail(c, "listing profiles", err)
		return
	}
	h.render.HTML(c, http.StatusOK, "user_list.html", &web.Data{
		Title:   "Users",
		Payload: rows,
	})
}

// View renders a single profile.
// GET /profiles/:id/view
func (h *Handler) View(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "loading profile", err)
		return
	}
	if profile == nil {
		c.Status(http.StatusNotFound)
		return
	}

	payload := viewPayload{Profile: profile}
	if current := middleware.CurrentProfile(c); current != nil && current.ID == profile.ID {
		payload.Own = true
	}
	if profile.Photo != nil {
		url, err := h.uploads.URL(c.Request.Context(), *profile.Photo, photoURLTTL)
		if err != nil {
			// A missing photo object should not take down the page.
			slog.Warn("resolving profile photo", "profile_id", profile.ID, "error", err)
		} else {
			payload.PhotoURL = url
		}
	}

	h.render.HTML(c, http.StatusOK, "profile_view.html", &web.Data{
		Title:   profile.Username,
		Payload: payload,
	})
}

// ShowEdit renders the signed-in user's edit form pre-filled with the stored
// values.
// GET /profiles/edit
func (h *Handler) ShowEdit(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	h.render.HTML(c, http.StatusOK, "profile_edit.html", &web.Data{
		Title: "Edit profile",
		Form: map[string]string{
			"name":     profile.Name,
			"username": profile.Username,
			"email":    profile.Email,
			"country":  profile.Country,
		},
	})
}

// Edit updates the signed-in user's profile. The password only changes when a
// new one is submitted, and the photo only changes when a new file is
// uploaded; blank submissions keep the stored values.
// POST /profiles/edit
func (h *Handler) Edit(c *gin.Context) {
	profile := middleware.CurrentProfile(c)

	form := map[string]string{
		"name":     c.PostForm("name"),
		"username": c.PostForm("username"),
		"email":    c.PostForm("email"),
		"country":  c.PostForm("country"),
	}
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	verrs := validation.ValidateProfileEdit(form["name"], form["username"], form["email"], password, confirm, form["country"])

	file, _ := c.FormFile("photo")
	storedPhoto, uploadErrs, err := h.uploads.Store(c.Request.Context(), file, validation.ProfilePhotoPolicy, false, "photos")
	if err != nil {
		h.fail(c, "storing profile photo", err)
		return
	}
	verrs.Merge(uploadErrs)
	if !uploadErrs.Empty() {
		telemetry.UploadsRejectedTotal.WithLabelValues("profile_photo").Inc()
	}

	if !verrs.Empty() {
		// The photo may already be on disk; no row will ever reference it.
		h.removeStored(c, storedPhoto)
		h.render.HTML(c, http.StatusUnprocessableEntity, "profile_edit.html", &web.Data{
			Title:  "Edit profile",
			Errors: verrs.Messages(),
			Form:   form,
		})
		return
	}

	var newHash string
	if password != "" {
		newHash, err = auth.HashPassword(password)
		if err != nil {
			h.fail(c, "hashing password", err)
			return
		}
	}

	err = h.profiles.Update(c.Request.Context(), profile.ID,
		form["name"], form["username"], form["email"], form["country"],
		&storedPhoto, newHash)
	if err != nil {
		h.removeStored(c, storedPhoto)
		if errors.Is(err, repositories.ErrUsernameTaken) {
			verrs.Add(validation.CodeUsernameTaken, "Username already exists")
			h.render.HTML(c, http.StatusUnprocessableEntity, "profile_edit.html", &web.Data{
				Title:  "Edit profile",
				Errors: verrs.Messages(),
				Form:   form,
			})
			return
		}
		h.fail(c, "updating profile", err)
		return
	}

	if storedPhoto != "" && file != nil {
		telemetry.UploadsTotal.WithLabelValues("profile_photo").Inc()
		telemetry.UploadBytesTotal.WithLabelValues("profile_photo").Add(float64(file.Size))
	}

	if sess := session.FromContext(c); sess != nil {
		sess.Flash("success", "Profile updated successfully.")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// removeStored best-effort deletes a photo the profile row will not
// reference. A failure only leaks the file, so it is logged and swallowed.
func (h *Handler) removeStored(c *gin.Context, path string) {
	if path == "" {
		return
	}
	if err := h.uploads.Remove(c.Request.Context(), path); err != nil {
		slog.Warn("removing superseded file", "path", path, "error", err)
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	slog.Error(op, "error", err)
	h.render.HTML(c, http.StatusInternalServerError, "error.html", &web.Data{Title: "Error"})
}
