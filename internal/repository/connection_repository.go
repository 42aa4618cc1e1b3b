package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pmu-edge/internal/database"
)

// PostgresConnectionRepository implements ConnectionRepository for PostgreSQL
type PostgresConnectionRepository struct {
	db *database.DB
}

// NewPostgresConnectionRepository creates a new connection repository
func NewPostgresConnectionRepository(db *database.DB) ConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

// EnsureJockey returns the local id for a jockey name, inserting on first sight
func (r *PostgresConnectionRepository) EnsureJockey(ctx context.Context, name string) (int64, error) {
	return r.ensure(ctx, "jockeys", name)
}

// EnsureTrainer returns the local id for a trainer name, inserting on first sight
func (r *PostgresConnectionRepository) EnsureTrainer(ctx context.Context, name string) (int64, error) {
	return r.ensure(ctx, "trainers", name)
}

// ensure upserts by name and returns the row id. The DO UPDATE no-op makes
// RETURNING yield the existing id on conflict.
func (r *PostgresConnectionRepository) ensure(ctx context.Context, table, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("%s name is required", table)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, table)

	var id int64
	if err := r.db.GetPool().QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to ensure %s %q: %w", table, name, err)
	}

	return id, nil
}
