package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

// CarRepository handles car database operations.
type CarRepository struct {
	db *sql.DB
}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

const carColumns = `id, name, type, brand, chair, country, manufacture, price, photo,
	created_at, updated_at`

func scanCar(row interface{ Scan(...any) error }) (*models.Car, error) {
	c := &models.Car{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Type,
		&c.Brand,
		&c.Chair,
		&c.Country,
		&c.Manufacture,
		&c.Price,
		&c.Photo,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves all cars, newest first.
func (r *CarRepository) List(ctx context.Context) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]*models.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// GetByID retrieves a car by id.
func (r *CarRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	return scanCar(r.db.QueryRowContext(ctx, query, id))
}

// NameExists reports whether any car other than excludeID already uses the
// name, compared case-insensitively. Pass excludeID 0 on create.
func (r *CarRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM cars WHERE lower(name) = lower($1) AND id <> $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new car. A race on the name uniqueness index is reported
// as ErrVehicleNameTaken.
func (r *CarRepository) Create(ctx context.Context, c *models.Car) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO cars (name, type, brand, chair, country, manufacture, price, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		c.Name,
		c.Type,
		c.Brand,
		c.Chair,
		c.Country,
		c.Manufacture,
		c.Price,
		c.Photo,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)

	if isUniqueViolation(err) {
		return ErrVehicleNameTaken
	}
	return err
}

// Update writes all editable car fields. newPhoto replaces the stored
// filename only when non-empty; otherwise the previous value is retained.
func (r *CarRepository) Update(ctx context.Context, id int64, c *models.Car, newPhoto string) error {
	query := `
		UPDATE cars
		SET name = $2, type = $3, brand = $4, chair = $5, country = $6,
		    manufacture = $7, price = $8,
		    photo = COALESCE(NULLIF($9, ''), photo),
		    updated_at = $10
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		c.Name,
		c.Type,
		c.Brand,
		c.Chair,
		c.Country,
		c.Manufacture,
		c.Price,
		newPhoto,
		time.Now(),
	)

	if isUniqueViolation(err) {
		return ErrVehicleNameTaken
	}
	return err
}

// Delete removes a car.
func (r *CarRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	return err
}
