package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/storage"
)

// ComponentRepository implements storage.ComponentRepository using PostgreSQL.
type ComponentRepository struct {
	pool *pgxpool.Pool
}

// NewComponentRepository creates a new component repository.
func NewComponentRepository(pool *pgxpool.Pool) *ComponentRepository {
	return &ComponentRepository{pool: pool}
}

// Create stores a new component.
func (r *ComponentRepository) Create(ctx context.Context, c *domain.Component) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO components (
			id, name, slug, version, description, owner_id,
			status, labels, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID,
		c.Name,
		c.Slug,
		c.Version,
		c.Description,
		c.OwnerID,
		string(c.Status),
		c.Labels,
		c.CreatedAt,
		c.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves a component by its ID.
func (r *ComponentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Component, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, name, slug, version, description, owner_id,
			   status, labels, created_at, updated_at, deleted_at
		FROM components WHERE id = $1 AND deleted_at IS NULL`, id)

	return r.scanComponent(row)
}

// GetBySlugVersion retrieves a specific version of a component.
func (r *ComponentRepository) GetBySlugVersion(ctx context.Context, slug, version string) (*domain.Component, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, name, slug, version, description, owner_id,
			   status, labels, created_at, updated_at, deleted_at
		FROM components WHERE slug = $1 AND version = $2 AND deleted_at IS NULL`, slug, version)

	return r.scanComponent(row)
}

// Update saves changes to an existing component.
func (r *ComponentRepository) Update(ctx context.Context, c *domain.Component) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE components SET
			name = $2,
			description = $3,
			status = $4,
			labels = $5,
			updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID,
		c.Name,
		c.Description,
		string(c.Status),
		c.Labels,
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("component not found")
	}

	return nil
}

// Delete performs a soft delete.
func (r *ComponentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE components SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("component not found")
	}

	return nil
}

// List retrieves components with filtering and pagination.
func (r *ComponentRepository) List(ctx context.Context, filter storage.ComponentFilter) ([]domain.Component, int64, error) {
	db := getDB(ctx, r.pool)

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	where := "deleted_at IS NULL"
	args := []any{}
	argIndex := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.Owner != nil {
		where += fmt.Sprintf(" AND owner_id = $%d", argIndex)
		args = append(args, *filter.Owner)
		argIndex++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (LOWER(name) LIKE LOWER($%d) OR slug LIKE LOWER($%d) OR LOWER(description) LIKE LOWER($%d))",
			argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM components WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug, version, description, owner_id,
			   status, labels, created_at, updated_at, deleted_at
		FROM components WHERE %s
		ORDER BY slug, version
		LIMIT $%d OFFSET $%d`, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var components []domain.Component
	for rows.Next() {
		c, err := r.scanComponent(rows)
		if err != nil {
			return nil, 0, err
		}
		components = append(components, *c)
	}

	return components, total, mapError(rows.Err())
}

func (r *ComponentRepository) scanComponent(row pgx.Row) (*domain.Component, error) {
	var c domain.Component
	var status string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Version,
		&c.Description,
		&c.OwnerID,
		&status,
		&c.Labels,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	c.Status = domain.ComponentStatus(status)
	return &c, nil
}
