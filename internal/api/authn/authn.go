// Package authn serves the account screens: register, login, logout, and the
// two-step password reset. Validation failures re-render the submitted form
// with every message and the user's input intact; successes flash a one-shot
// notice and redirect, so a refresh never replays the mutation.
package authn

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/auth"
	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/session"
	"github.com/inventory-admin/inventory-admin/internal/telemetry"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// Handler serves the authentication pages.
type Handler struct {
	profiles *repositories.ProfileRepository
	resets   *auth.ResetManager
	sessions *session.Manager
	render   *web.Renderer
	baseURL  string
}

// NewHandler creates an authentication handler.
func NewHandler(profiles *repositories.ProfileRepository, resets *auth.ResetManager, sessions *session.Manager, render *web.Renderer, baseURL string) *Handler {
	return &Handler{
		profiles: profiles,
		resets:   resets,
		sessions: sessions,
		render:   render,
		baseURL:  baseURL,
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

// ShowRegister renders the registration form.
// GET /register
func (h *Handler) ShowRegister(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "register.html", &web.Data{Title: "Register"})
}

// Register creates a new profile.
// POST /register
func (h *Handler) Register(c *gin.Context) {
	form := map[string]string{
		"name":     c.PostForm("name"),
		"username": c.PostForm("username"),
		"email":    c.PostForm("email"),
		"country":  c.PostForm("country"),
	}
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	verrs := validation.ValidateRegistration(form["name"], form["username"], form["email"], password, confirm, form["country"])
	if !verrs.Empty() {
		h.renderRegister(c, form, verrs)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.fail(c, "hashing password", err)
		return
	}

	profile := &models.Profile{
		Name:     form["name"],
		Username: form["username"],
		Email:    form["email"],
		Password: hash,
		Country:  form["country"],
	}
	if err := h.profiles.Create(c.Request.Context(), profile); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			// Lost the race with a concurrent registration; same message
			// as the advisory check.
			verrs.Add(validation.CodeUsernameTaken, "Username already exists")
			h.renderRegister(c, form, verrs)
			return
		}
		h.fail(c, "creating profile", err)
		return
	}

	if sess := session.FromContext(c); sess != nil {
		sess.Flash("success", "Account created. Please log in.")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) renderRegister(c *gin.Context, form map[string]string, verrs validation.Errors) {
	h.render.HTML(c, http.StatusUnprocessableEntity, "register.html", &web.Data{
		Title:  "Register",
		Errors: verrs.Messages(),
		Form:   form,
	})
}

// ---------------------------------------------------------------------------
// Login / logout
// ---------------------------------------------------------------------------

// ShowLogin renders the login form.
// GET /login
func (h *Handler) ShowLogin(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "login.html", &web.Data{Title: "Log in"})
}

// Login checks credentials and signs the user in.
// POST /login
func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	verrs := validation.ValidateLogin(email, password)
	if !verrs.Empty() {
		telemetry.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		h.renderLogin(c, email, verrs)
		return
	}

	profile, err := h.profiles.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.fail(c, "looking up profile", err)
		return
	}

	// One message for both unknown email and wrong password; the form
	// never discloses which half failed.
	if profile == nil || !auth.CheckPassword(password, profile.Password) {
		telemetry.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		verrs.Add(validation.CodeInvalidCredentials, "Invalid email or password")
		h.renderLogin(c, email, verrs)
		return
	}

	sess := session.FromContext(c)
	if sess == nil {
		h.fail(c, "loading session", errors.New("session missing from context"))
		return
	}
	sess.SetProfile(profile.ID)
	if err := h.sessions.Rotate(c, sess); err != nil {
		h.fail(c, "rotating session", err)
		return
	}

	telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) renderLogin(c *gin.Context, email string, verrs validation.Errors) {
	h.render.HTML(c, http.StatusUnprocessableEntity, "login.html", &web.Data{
		Title:  "Log in",
		Errors: verrs.Messages(),
		Form:   map[string]string{"email": email},
	})
}

// Logout destroys the session.
// GET /logout
func (h *Handler) Logout(c *gin.Context) {
	if sess := session.FromContext(c); sess != nil {
		if err := h.sessions.Destroy(c, sess); err != nil {
			slog.Error("destroying session", "error", err)
		}
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// ---------------------------------------------------------------------------
// Password reset
// ---------------------------------------------------------------------------

// ShowForgotPassword renders the reset-request form.
// GET /forgot_password
func (h *Handler) ShowForgotPassword(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "forgot_password.html", &web.Data{Title: "Forgot password"})
}

// ForgotPassword issues a reset token for a known email.
// POST /forgot_password
func (h *Handler) ForgotPassword(c *gin.Context) {
	email := c.PostForm("email")

	renderForm := func(messages ...string) {
		h.render.HTML(c, http.StatusUnprocessableEntity, "forgot_password.html", &web.Data{
			Title:  "Forgot password",
			Errors: messages,
			Form:   map[string]string{"email": email},
		})
	}

	// Only blankness is checked here; a well-formed but unknown address gets
	// the same not-found answer as a malformed one.
	if validation.Blank(email) {
		renderForm("Email cannot be blank.")
		return
	}

	token, err := h.resets.Issue(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrEmailNotFound) {
			renderForm("Email not found in our records.")
			return
		}
		h.fail(c, "issuing reset token", err)
		return
	}

	// Mail delivery is out of scope; the link lands in the log where an
	// operator can relay it.
	slog.Info("password reset link issued",
		"reset_url", fmt.Sprintf("%s/reset_password/%s", h.baseURL, token))
	telemetry.PasswordResetsTotal.WithLabelValues("requested").Inc()

	if sess := session.FromContext(c); sess != nil {
		sess.Flash("message", "Password reset link sent to your email.")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// ShowResetPassword renders the new-password form when the token is live.
// GET /reset_password/:token
func (h *Handler) ShowResetPassword(c *gin.Context) {
	token := c.Param("token")

	profile, err := h.resets.Resolve(c.Request.Context(), token)
	if err != nil && !errors.Is(err, auth.ErrInvalidToken) {
		h.fail(c, "resolving reset token", err)
		return
	}
	if profile == nil {
		telemetry.PasswordResetsTotal.WithLabelValues("expired").Inc()
		if sess := session.FromContext(c); sess != nil {
			sess.Flash("error", "Invalid or expired reset token.")
		}
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	h.render.HTML(c, http.StatusOK, "reset_password.html", &web.Data{
		Title: "Reset password",
		Form:  map[string]string{"token": token},
	})
}

// ResetPassword redeems a token and installs the new password.
// POST /reset_password
func (h *Handler) ResetPassword(c *gin.Context) {
	token := c.PostForm("token")
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	verrs, err := h.resets.Redeem(c.Request.Context(), token, password, confirm)
	if err != nil {
		h.fail(c, "redeeming reset token", err)
		return
	}
	if !verrs.Empty() {
		h.render.HTML(c, http.StatusUnprocessableEntity, "reset_password.html", &web.Data{
			Title:  "Reset password",
			Errors: verrs.Messages(),
			Form:   map[string]string{"token": token},
		})
		return
	}

	telemetry.PasswordResetsTotal.WithLabelValues("redeemed").Inc()
	if sess := session.FromContext(c); sess != nil {
		sess.Flash("message", "Password reset successfully. Please log in.")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// fail logs a storage or crypto fault and renders the error page.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	slog.Error(op, "error", err)
	h.render.HTML(c, http.StatusInternalServerError, "error.html", &web.Data{Title: "Error"})
}
