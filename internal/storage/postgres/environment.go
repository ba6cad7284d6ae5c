package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
)

// EnvironmentRepository implements storage.EnvironmentRepository using PostgreSQL.
type EnvironmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnvironmentRepository creates a new environment repository.
func NewEnvironmentRepository(pool *pgxpool.Pool) *EnvironmentRepository {
	return &EnvironmentRepository{pool: pool}
}

// Create stores a new environment.
func (r *EnvironmentRepository) Create(ctx context.Context, e *domain.Environment) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO environments (id, name, slug, tier, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID,
		e.Name,
		e.Slug,
		string(e.Tier),
		e.Description,
		e.CreatedAt,
		e.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves an environment by its ID.
func (r *EnvironmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, name, slug, tier, description, created_at, updated_at
		FROM environments WHERE id = $1`, id)

	return r.scanEnvironment(row)
}

// GetBySlug retrieves an environment by its slug.
func (r *EnvironmentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Environment, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, name, slug, tier, description, created_at, updated_at
		FROM environments WHERE slug = $1`, slug)

	return r.scanEnvironment(row)
}

// Update saves changes to an existing environment.
func (r *EnvironmentRepository) Update(ctx context.Context, e *domain.Environment) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE environments SET
			name = $2,
			tier = $3,
			description = $4,
			updated_at = $5
		WHERE id = $1`,
		e.ID,
		e.Name,
		string(e.Tier),
		e.Description,
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("environment not found")
	}

	return nil
}

// Delete removes an environment.
func (r *EnvironmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `DELETE FROM environments WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("environment not found")
	}

	return nil
}

// List retrieves all environments ordered by tier then name.
func (r *EnvironmentRepository) List(ctx context.Context) ([]domain.Environment, error) {
	db := getDB(ctx, r.pool)

	rows, err := db.Query(ctx, `
		SELECT id, name, slug, tier, description, created_at, updated_at
		FROM environments
		ORDER BY tier, name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var environments []domain.Environment
	for rows.Next() {
		e, err := r.scanEnvironment(rows)
		if err != nil {
			return nil, err
		}
		environments = append(environments, *e)
	}

	return environments, mapError(rows.Err())
}

func (r *EnvironmentRepository) scanEnvironment(row pgx.Row) (*domain.Environment, error) {
	var e domain.Environment
	var tier string

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Slug,
		&tier,
		&e.Description,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	e.Tier = domain.EnvironmentTier(tier)
	return &e, nil
}
