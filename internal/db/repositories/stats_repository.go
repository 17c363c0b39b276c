// stats_repository.go aggregates row counts for the dashboard. It uses sqlx
// struct scanning since the counts map onto one flat struct rather than an
// entity model.
package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// StatsRepository aggregates dashboard statistics.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// DashboardStats holds the per-entity row counts shown on the dashboard.
type DashboardStats struct {
	Profiles int64 `db:"profiles"`
	Cars     int64 `db:"cars"`
	Motors   int64 `db:"motors"`
	Leafs    int64 `db:"leafs"`
	Seeds    int64 `db:"seeds"`
	Trees    int64 `db:"trees"`
}

// Dashboard returns the current row count of every entity table.
func (r *StatsRepository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM profiles) AS profiles,
			(SELECT COUNT(*) FROM cars)     AS cars,
			(SELECT COUNT(*) FROM motors)   AS motors,
			(SELECT COUNT(*) FROM leafs)    AS leafs,
			(SELECT COUNT(*) FROM seeds)    AS seeds,
			(SELECT COUNT(*) FROM trees)    AS trees
	`

	stats := &DashboardStats{}
	if err := r.db.GetContext(ctx, stats, query); err != nil {
		return nil, err
	}
	return stats, nil
}
