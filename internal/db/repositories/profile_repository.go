package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

// ProfileRepository handles profile database operations, including the
// reset-token lifecycle.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, name, username, email, password, country, photo,
	reset_token, reset_issued_at, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Username,
		&p.Email,
		&p.Password,
		&p.Country,
		&p.Photo,
		&p.ResetToken,
		&p.ResetIssuedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new profile. The password field must already be hashed.
// A collision on the username uniqueness constraint is reported as
// ErrUsernameTaken so the handler can fold it into the form's error list.
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO profiles (name, username, email, password, country, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		p.Name,
		p.Username,
		p.Email,
		p.Password,
		p.Country,
		p.Photo,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)

	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// GetByID retrieves a profile by id.
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a profile by email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, email))
}

// GetByResetToken retrieves the profile holding an outstanding recovery token.
func (r *ProfileRepository) GetByResetToken(ctx context.Context, token string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE reset_token = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, token))
}

// List retrieves all profiles ordered by creation time.
func (r *ProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update writes the editable profile fields. newHash updates the stored
// password only when non-empty; a blank submission keeps the current hash.
func (r *ProfileRepository) Update(ctx context.Context, id int64, name, username, email, country string, photo *string, newHash string) error {
	var err error
	if newHash != "" {
		query := `
			UPDATE profiles
			SET name = $2, username = $3, email = $4, country = $5,
			    photo = COALESCE(NULLIF($6, ''), photo),
			    password = $7, updated_at = $8
			WHERE id = $1
		`
		_, err = r.db.ExecContext(ctx, query, id, name, username, email, country, deref(photo), newHash, time.Now())
	} else {
		query := `
			UPDATE profiles
			SET name = $2, username = $3, email = $4, country = $5,
			    photo = COALESCE(NULLIF($6, ''), photo),
			    updated_at = $7
			WHERE id = $1
		`
		_, err = r.db.ExecContext(ctx, query, id, name, username, email, country, deref(photo), time.Now())
	}

	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// SetResetToken stores a freshly issued recovery token on the profile with the
// given email, overwriting any outstanding one. It reports whether a profile
// with that email exists.
func (r *ProfileRepository) SetResetToken(ctx context.Context, email, token string, issuedAt time.Time) (bool, error) {
	query := `
		UPDATE profiles
		SET reset_token = $2, reset_issued_at = $3, updated_at = $3
		WHERE email = $1
	`

	res, err := r.db.ExecContext(ctx, query, email, token, issuedAt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RedeemResetToken stores the new password hash and clears the token in one
// statement. The WHERE clause keys on the token itself, so of two concurrent
// redemptions exactly one matches a row; the other gets ErrNoSuchToken. A
// reader can never observe the new hash with the token still set, or the
// cleared token with the old hash.
func (r *ProfileRepository) RedeemResetToken(ctx context.Context, token, newHash string) error {
	query := `
		UPDATE profiles
		SET password = $2, reset_token = NULL, reset_issued_at = NULL, updated_at = $3
		WHERE reset_token = $1
	`

	res, err := r.db.ExecContext(ctx, query, token, newHash, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoSuchToken
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
