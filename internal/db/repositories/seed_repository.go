package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

// SeedRepository handles seed database operations.
type SeedRepository struct {
	db *sql.DB
}

// NewSeedRepository creates a new SeedRepository.
func NewSeedRepository(db *sql.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

func scanSeed(row interface{ Scan(...any) error }) (*models.Seed, error) {
	s := &models.Seed{}
	err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all seeds, newest first.
func (r *SeedRepository) List(ctx context.Context) ([]*models.Seed, error) {
	query := `SELECT id, name, created_at, updated_at FROM seeds ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seeds := make([]*models.Seed, 0)
	for rows.Next() {
		s, err := scanSeed(rows)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, s)
	}
	return seeds, rows.Err()
}

// GetByID retrieves a seed by id.
func (r *SeedRepository) GetByID(ctx context.Context, id int64) (*models.Seed, error) {
	query := `SELECT id, name, created_at, updated_at FROM seeds WHERE id = $1`
	return scanSeed(r.db.QueryRowContext(ctx, query, id))
}

// Exists reports whether a seed row with the id is present.
func (r *SeedRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seeds WHERE id = $1`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new seed.
func (r *SeedRepository) Create(ctx context.Context, s *models.Seed) error {
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt

	query := `INSERT INTO seeds (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.Name, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
}

// Update renames a seed.
func (r *SeedRepository) Update(ctx context.Context, id int64, name string) error {
	query := `UPDATE seeds SET name = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, name, time.Now())
	return err
}

// Delete removes a seed.
func (r *SeedRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM seeds WHERE id = $1`, id)
	return err
}
