package authn

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/inventory-admin/inventory-admin/internal/auth"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/session"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	render, err := web.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	profiles := repositories.NewProfileRepository(db)
	resets := auth.NewResetManager(profiles, time.Hour)
	sessions := session.NewManager(rdb, time.Hour, false)
	h := NewHandler(profiles, resets, sessions, render, "http://localhost:8080")

	r := gin.New()
	r.Use(sessions.Middleware())
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/forgot_password", h.ShowForgotPassword)
	r.POST("/forgot_password", h.ForgotPassword)
	r.GET("/reset_password/:token", h.ShowResetPassword)
	r.POST("/reset_password", h.ResetPassword)
	return r, mock
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505", Constraint: "profiles_username_key"}
}

func profileRows(id int64, email, hash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "username", "email", "password", "country", "photo",
		"reset_token", "reset_issued_at", "created_at", "updated_at",
	}).AddRow(id, "Ada", "ada", email, hash, "UK", nil, nil, nil, now, now)
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestRegister_BlankFormListsEveryError(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, "/register", url.Values{})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	for _, msg := range []string{
		"Username cannot be blank.",
		"Name cannot be blank.",
		"Password cannot be blank.",
		"Country cannot be blank.",
	} {
		if !strings.Contains(body, msg) {
			t.Errorf("body missing %q", msg)
		}
	}
}

func TestRegister_KeepsSubmittedValuesOnError(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, "/register", url.Values{
		"name":     {"Ada Lovelace"},
		"username": {"ada"},
		"email":    {"ada@example.com"},
		"country":  {"UK"},
		"password": {"secret"},
		// confirmation missing
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Password do not match.") {
		t.Error("mismatch message missing")
	}
	if !strings.Contains(body, `value="ada@example.com"`) {
		t.Error("submitted email not re-rendered")
	}
}

func TestRegister_Success(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("Ada Lovelace", "ada", "ada@example.com", sqlmock.AnyArg(), "UK", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	w := postForm(r, "/register", url.Values{
		"name":             {"Ada Lovelace"},
		"username":         {"ada"},
		"email":            {"ada@example.com"},
		"country":          {"UK"},
		"password":         {"secret"},
		"confirm_password": {"secret"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRegister_UsernameRaceSurfacesAsFormError(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnError(uniqueViolation())

	w := postForm(r, "/register", url.Values{
		"name":             {"Ada Lovelace"},
		"username":         {"ada"},
		"email":            {"ada@example.com"},
		"country":          {"UK"},
		"password":         {"secret"},
		"confirm_password": {"secret"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Username already exists") {
		t.Error("duplicate-username message missing")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_UnknownEmail(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := postForm(r, "/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"whatever"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Error("credential message missing")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r, mock := newTestRouter(t)

	hash, err := auth.HashPassword("right-password")
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("ada@example.com").
		WillReturnRows(profileRows(1, "ada@example.com", hash))

	w := postForm(r, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"wrong-password"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Error("credential message missing")
	}
}

func TestLogin_SuccessSetsFreshSessionCookie(t *testing.T) {
	r, mock := newTestRouter(t)

	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("ada@example.com").
		WillReturnRows(profileRows(1, "ada@example.com", hash))

	w := postForm(r, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"secret"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	var found bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set on login")
	}
}

// ---------------------------------------------------------------------------
// Forgot password
// ---------------------------------------------------------------------------

func TestForgotPassword_UnknownEmail(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := postForm(r, "/forgot_password", url.Values{
		"email": {"ghost@example.com"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email not found in our records.") {
		t.Error("unknown-email message missing")
	}
}

func TestForgotPassword_BlankEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, "/forgot_password", url.Values{"email": {"   "}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email cannot be blank.") {
		t.Error("blank-email message missing")
	}
}

func TestForgotPassword_MalformedEmailAnswersNotFound(t *testing.T) {
	// No format check on this form; anything non-blank goes to the lookup and
	// an address with no account behind it reports not-found.
	r, mock := newTestRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := postForm(r, "/forgot_password", url.Values{"email": {"not-an-address"}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email not found in our records.") {
		t.Error("unknown-email message missing")
	}
}

func TestForgotPassword_IssuesTokenAndRedirects(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles")).
		WithArgs("ada@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postForm(r, "/forgot_password", url.Values{
		"email": {"ada@example.com"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// ---------------------------------------------------------------------------
// Reset password
// ---------------------------------------------------------------------------

const testToken = "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd"

func TestShowResetPassword_LiveTokenRendersForm(t *testing.T) {
	r, mock := newTestRouter(t)

	rows := profileRows(1, "ada@example.com", "hash")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(testToken).
		WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/reset_password/"+testToken, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), testToken) {
		t.Error("token not carried into the form")
	}
}

func TestShowResetPassword_DeadTokenRedirects(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(testToken).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/reset_password/"+testToken, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestResetPassword_MismatchKeepsToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, "/reset_password", url.Values{
		"token":            {testToken},
		"password":         {"one"},
		"confirm_password": {"two"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Password do not match.") {
		t.Error("mismatch message missing")
	}
	if !strings.Contains(body, testToken) {
		t.Error("token dropped from the re-rendered form")
	}
}

func TestResetPassword_Success(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(testToken).
		WillReturnRows(profileRows(1, "ada@example.com", "old-hash"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles")).
		WithArgs(testToken, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postForm(r, "/reset_password", url.Values{
		"token":            {testToken},
		"password":         {"new-secret"},
		"confirm_password": {"new-secret"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResetPassword_ConcurrentRedemptionFailsClosed(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(testToken).
		WillReturnRows(profileRows(1, "ada@example.com", "old-hash"))
	// The other request got there first; zero rows match the token now.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := postForm(r, "/reset_password", url.Values{
		"token":            {testToken},
		"password":         {"new-secret"},
		"confirm_password": {"new-secret"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid or expired reset token.") {
		t.Error("dead-token message missing")
	}
}
