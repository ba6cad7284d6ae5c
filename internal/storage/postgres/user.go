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

// UserRepository implements storage.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, username, full_name,
			role, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Username,
		user.FullName,
		string(user.Role),
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, username, full_name,
			   role, status, created_at, updated_at, deleted_at
		FROM users WHERE id = $1 AND deleted_at IS NULL`, id)

	return r.scanUser(row)
}

// GetByEmail retrieves a user by their email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := getDB(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, username, full_name,
			   role, status, created_at, updated_at, deleted_at
		FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`, email)

	return r.scanUser(row)
}

// Update saves changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			username = $4,
			full_name = $5,
			role = $6,
			status = $7,
			updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Username,
		user.FullName,
		string(user.Role),
		string(user.Status),
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}

	return nil
}

// Delete performs a soft delete.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE users SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}

	return nil
}

// List retrieves users with filtering and pagination.
func (r *UserRepository) List(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error) {
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

	if filter.Role != nil {
		where += fmt.Sprintf(" AND role = $%d", argIndex)
		args = append(args, string(*filter.Role))
		argIndex++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (LOWER(email) LIKE LOWER($%d) OR LOWER(username) LIKE LOWER($%d) OR LOWER(full_name) LIKE LOWER($%d))",
			argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := fmt.Sprintf(`
		SELECT id, email, password_hash, username, full_name,
			   role, status, created_at, updated_at, deleted_at
		FROM users WHERE %s
		ORDER BY username
		LIMIT $%d OFFSET $%d`, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}

	return users, total, mapError(rows.Err())
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role, status string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Username,
		&u.FullName,
		&role,
		&status,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	return &u, nil
}
