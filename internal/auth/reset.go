// reset.go implements the password-recovery token manager. Per profile the
// token moves NoToken → TokenIssued → NoToken on redemption; issuing again
// while a token is outstanding overwrites it, so at most one token is ever
// valid per account.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/validation"
)

var (
	// ErrEmailNotFound is returned by Issue when no profile has the email.
	ErrEmailNotFound = errors.New("email not found")

	// ErrInvalidToken is returned when a token does not resolve to a profile:
	// never issued, already redeemed, overwritten by a newer issuance, or past
	// its configured lifetime. All four cases look identical to the caller.
	ErrInvalidToken = errors.New("invalid or expired reset token")
)

// tokenBytes is the entropy of a recovery token; hex-encoded to 40 characters.
const tokenBytes = 20

// ResetManager issues, resolves, and redeems password-recovery tokens.
type ResetManager struct {
	profiles *repositories.ProfileRepository
	ttl      time.Duration // 0 disables the expiry check
	now      func() time.Time
}

// NewResetManager creates a ResetManager. ttl bounds a token's lifetime from
// issuance; zero keeps tokens valid until redeemed or overwritten.
func NewResetManager(profiles *repositories.ProfileRepository, ttl time.Duration) *ResetManager {
	return &ResetManager{profiles: profiles, ttl: ttl, now: time.Now}
}

// Issue generates a fresh token and stores it on the profile with the given
// email, replacing any outstanding one. It returns ErrEmailNotFound when no
// such profile exists; delivery of the token is the caller's concern.
func (m *ResetManager) Issue(ctx context.Context, email string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	found, err := m.profiles.SetResetToken(ctx, email, token, m.now())
	if err != nil {
		return "", fmt.Errorf("storing reset token: %w", err)
	}
	if !found {
		return "", ErrEmailNotFound
	}
	return token, nil
}

// Resolve looks up the profile holding the token. It fails closed with
// ErrInvalidToken when no row matches or the token has outlived its ttl.
func (m *ResetManager) Resolve(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	profile, err := m.profiles.GetByResetToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolving reset token: %w", err)
	}
	if profile == nil {
		return nil, ErrInvalidToken
	}
	if m.expired(profile) {
		return nil, ErrInvalidToken
	}
	return profile, nil
}

// Redeem validates the submitted passwords and, if the token still resolves,
// stores the new hash and clears the token in one atomic update. Field
// problems come back as validation errors; an unresolvable token as
// ErrInvalidToken inside the list, matching how the form displays it.
func (m *ResetManager) Redeem(ctx context.Context, token, password, confirm string) (validation.Errors, error) {
	var errs validation.Errors
	if validation.Blank(password) || validation.Blank(confirm) {
		errs.Add(validation.CodeBlankPassword, "Password fields cannot be blank.")
		return errs, nil
	}
	if password != confirm {
		errs.Add(validation.CodePasswordMismatch, "Password do not match.")
		return errs, nil
	}

	// The ttl check needs the issuance timestamp, so resolve first. The final
	// update is still keyed on the token: a concurrent redemption brings the
	// matched-row count to zero and this request fails closed.
	if _, err := m.Resolve(ctx, token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			errs.Add(validation.CodeInvalidToken, "Invalid or expired reset token.")
			return errs, nil
		}
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	err = m.profiles.RedeemResetToken(ctx, token, hash)
	if errors.Is(err, repositories.ErrNoSuchToken) {
		errs.Add(validation.CodeInvalidToken, "Invalid or expired reset token.")
		return errs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redeeming reset token: %w", err)
	}
	return nil, nil
}

func (m *ResetManager) expired(p *models.Profile) bool {
	if m.ttl <= 0 || p.ResetIssuedAt == nil {
		return false
	}
	return m.now().Sub(*p.ResetIssuedAt) > m.ttl
}
