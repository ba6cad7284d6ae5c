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

// ContractRepository implements storage.ContractRepository using PostgreSQL.
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new contract repository.
func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

// Create stores a new contract.
func (r *ContractRepository) Create(ctx context.Context, c *domain.Contract) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO contracts (
			id, component_id, name, version, media_type,
			definition, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID,
		c.ComponentID,
		c.Name,
		c.Version,
		c.MediaType,
		c.Definition,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves a contract by its ID.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, component_id, name, version, media_type,
			   definition, status, created_at, updated_at
		FROM contracts WHERE id = $1`, id)

	return r.scanContract(row)
}

// Update saves changes to an existing contract.
func (r *ContractRepository) Update(ctx context.Context, c *domain.Contract) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE contracts SET
			name = $2,
			media_type = $3,
			definition = $4,
			status = $5,
			updated_at = $6
		WHERE id = $1`,
		c.ID,
		c.Name,
		c.MediaType,
		c.Definition,
		string(c.Status),
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("contract not found")
	}

	return nil
}

// Delete removes a contract.
func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("contract not found")
	}

	return nil
}

// ListByComponent retrieves all contracts published by a component.
func (r *ContractRepository) ListByComponent(ctx context.Context, componentID uuid.UUID) ([]domain.Contract, error) {
	db := getDB(ctx, r.pool)

	rows, err := db.Query(ctx, `
		SELECT id, component_id, name, version, media_type,
			   definition, status, created_at, updated_at
		FROM contracts
		WHERE component_id = $1
		ORDER BY name, version`, componentID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		c, err := r.scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}

	return contracts, mapError(rows.Err())
}

func (r *ContractRepository) scanContract(row pgx.Row) (*domain.Contract, error) {
	var c domain.Contract
	var status string

	err := row.Scan(
		&c.ID,
		&c.ComponentID,
		&c.Name,
		&c.Version,
		&c.MediaType,
		&c.Definition,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	c.Status = domain.ContractStatus(status)
	return &c, nil
}
