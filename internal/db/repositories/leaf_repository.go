package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

// LeafRepository handles leaf database operations.
type LeafRepository struct {
	db *sql.DB
}

// NewLeafRepository creates a new LeafRepository.
func NewLeafRepository(db *sql.DB) *LeafRepository {
	return &LeafRepository{db: db}
}

const leafColumns = `id, name, type, age, description, created_at, updated_at`

func scanLeaf(row interface{ Scan(...any) error }) (*models.Leaf, error) {
	l := &models.Leaf{}
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Type,
		&l.Age,
		&l.Description,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List retrieves all leafs, newest first.
func (r *LeafRepository) List(ctx context.Context) ([]*models.Leaf, error) {
	query := `SELECT ` + leafColumns + ` FROM leafs ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leafs := make([]*models.Leaf, 0)
	for rows.Next() {
		l, err := scanLeaf(rows)
		if err != nil {
			return nil, err
		}
		leafs = append(leafs, l)
	}
	return leafs, rows.Err()
}

// GetByID retrieves a leaf by id.
func (r *LeafRepository) GetByID(ctx context.Context, id int64) (*models.Leaf, error) {
	query := `SELECT ` + leafColumns + ` FROM leafs WHERE id = $1`
	return scanLeaf(r.db.QueryRowContext(ctx, query, id))
}

// Exists reports whether a leaf row with the id is present. Tree validation
// uses it for the foreign-key existence check.
func (r *LeafRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leafs WHERE id = $1`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new leaf.
func (r *LeafRepository) Create(ctx context.Context, l *models.Leaf) error {
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt

	query := `
		INSERT INTO leafs (name, type, age, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	return r.db.QueryRowContext(ctx, query,
		l.Name,
		l.Type,
		l.Age,
		l.Description,
		l.CreatedAt,
		l.UpdatedAt,
	).Scan(&l.ID)
}

// Update writes all editable leaf fields.
func (r *LeafRepository) Update(ctx context.Context, id int64, l *models.Leaf) error {
	query := `
		UPDATE leafs
		SET name = $2, type = $3, age = $4, description = $5, updated_at = $6
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, l.Name, l.Type, l.Age, l.Description, time.Now())
	return err
}

// Delete removes a leaf.
func (r *LeafRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM leafs WHERE id = $1`, id)
	return err
}
