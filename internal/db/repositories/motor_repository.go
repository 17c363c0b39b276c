package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

// MotorRepository handles motorcycle database operations.
type MotorRepository struct {
	db *sql.DB
}

// NewMotorRepository creates a new MotorRepository.
func NewMotorRepository(db *sql.DB) *MotorRepository {
	return &MotorRepository{db: db}
}

const motorColumns = `id, name, type, brand, chair, country, manufacture, price, photo,
	warranty, created_at, updated_at`

func scanMotor(row interface{ Scan(...any) error }) (*models.Motor, error) {
	m := &models.Motor{}
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Type,
		&m.Brand,
		&m.Chair,
		&m.Country,
		&m.Manufacture,
		&m.Price,
		&m.Photo,
		&m.Warranty,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List retrieves all motorcycles, newest first.
func (r *MotorRepository) List(ctx context.Context) ([]*models.Motor, error) {
	query := `SELECT ` + motorColumns + ` FROM motors ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	motors := make([]*models.Motor, 0)
	for rows.Next() {
		m, err := scanMotor(rows)
		if err != nil {
			return nil, err
		}
		motors = append(motors, m)
	}
	return motors, rows.Err()
}

// GetByID retrieves a motorcycle by id.
func (r *MotorRepository) GetByID(ctx context.Context, id int64) (*models.Motor, error) {
	query := `SELECT ` + motorColumns + ` FROM motors WHERE id = $1`
	return scanMotor(r.db.QueryRowContext(ctx, query, id))
}

// NameExists reports whether any motorcycle other than excludeID already uses
// the name, compared case-insensitively. Pass excludeID 0 on create.
func (r *MotorRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM motors WHERE lower(name) = lower($1) AND id <> $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new motorcycle. A race on the name uniqueness index is
// reported as ErrVehicleNameTaken.
func (r *MotorRepository) Create(ctx context.Context, m *models.Motor) error {
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	query := `
		INSERT INTO motors (name, type, brand, chair, country, manufacture, price, photo, warranty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		m.Name,
		m.Type,
		m.Brand,
		m.Chair,
		m.Country,
		m.Manufacture,
		m.Price,
		m.Photo,
		m.Warranty,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.ID)

	if isUniqueViolation(err) {
		return ErrVehicleNameTaken
	}
	return err
}

// Update writes all editable motorcycle fields. newPhoto and newWarranty
// replace the stored filenames only when non-empty; an empty value keeps the
// previous one.
func (r *MotorRepository) Update(ctx context.Context, id int64, m *models.Motor, newPhoto, newWarranty string) error {
	query := `
		UPDATE motors
		SET name = $2, type = $3, brand = $4, chair = $5, country = $6,
		    manufacture = $7, price = $8,
		    photo = COALESCE(NULLIF($9, ''), photo),
		    warranty = COALESCE(NULLIF($10, ''), warranty),
		    updated_at = $11
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		m.Name,
		m.Type,
		m.Brand,
		m.Chair,
		m.Country,
		m.Manufacture,
		m.Price,
		newPhoto,
		newWarranty,
		time.Now(),
	)

	if isUniqueViolation(err) {
		return ErrVehicleNameTaken
	}
	return err
}

// Delete removes a motorcycle.
func (r *MotorRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM motors WHERE id = $1`, id)
	return err
}
