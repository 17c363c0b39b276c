package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

// TreeRepository handles tree database operations.
type TreeRepository struct {
	db *sql.DB
}

// NewTreeRepository creates a new TreeRepository.
func NewTreeRepository(db *sql.DB) *TreeRepository {
	return &TreeRepository{db: db}
}

const treeColumns = `id, name, type, leaf_id, seed_id, age, description, created_at, updated_at`

func scanTree(row interface{ Scan(...any) error }) (*models.Tree, error) {
	t := &models.Tree{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Type,
		&t.LeafID,
		&t.SeedID,
		&t.Age,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all trees joined with their leaf and seed names, newest
// first, for the tree list screen.
func (r *TreeRepository) List(ctx context.Context) ([]*models.TreeWithNames, error) {
	query := `
		SELECT t.id, t.name, t.type, t.leaf_id, t.seed_id, t.age, t.description,
		       t.created_at, t.updated_at, l.name AS leaf_name, s.name AS seed_name
		FROM trees t
		JOIN leafs l ON t.leaf_id = l.id
		JOIN seeds s ON t.seed_id = s.id
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trees := make([]*models.TreeWithNames, 0)
	for rows.Next() {
		t := &models.TreeWithNames{}
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Type,
			&t.LeafID,
			&t.SeedID,
			&t.Age,
			&t.Description,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.LeafName,
			&t.SeedName,
		)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, rows.Err()
}

// GetByID retrieves a tree by id.
func (r *TreeRepository) GetByID(ctx context.Context, id int64) (*models.Tree, error) {
	query := `SELECT ` + treeColumns + ` FROM trees WHERE id = $1`
	return scanTree(r.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new tree.
func (r *TreeRepository) Create(ctx context.Context, t *models.Tree) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	query := `
		INSERT INTO trees (name, type, leaf_id, seed_id, age, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Type,
		t.LeafID,
		t.SeedID,
		t.Age,
		t.Description,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID)
}

// Update writes all editable tree fields.
func (r *TreeRepository) Update(ctx context.Context, id int64, t *models.Tree) error {
	query := `
		UPDATE trees
		SET name = $2, type = $3, leaf_id = $4, seed_id = $5, age = $6,
		    description = $7, updated_at = $8
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		id, t.Name, t.Type, t.LeafID, t.SeedID, t.Age, t.Description, time.Now())
	return err
}

// Delete removes a tree.
func (r *TreeRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM trees WHERE id = $1`, id)
	return err
}
