package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
)

// TokenRepository implements storage.TokenRepository using PostgreSQL.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Create stores a new refresh token.
func (r *TokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO refresh_tokens (
			id, user_id, token_hash, expires_at, created_at,
			revoked_at, ip_address, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
		token.RevokedAt,
		token.IPAddress,
		token.UserAgent,
	)

	return mapError(err)
}

// GetByHash retrieves a refresh token by its hash.
func (r *TokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	db := getDB(ctx, r.pool)

	var t domain.RefreshToken
	err := db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at,
			   revoked_at, ip_address, user_agent
		FROM refresh_tokens WHERE token_hash = $1`, tokenHash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.RevokedAt,
		&t.IPAddress,
		&t.UserAgent,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &t, nil
}

// Revoke marks a single token as revoked.
func (r *TokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("token not found")
	}

	return nil
}

// RevokeAllForUser revokes every active token belonging to a user.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL`, userID)

	return mapError(err)
}

// DeleteExpired removes tokens past their expiry. Returns the number removed.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, mapError(err)
	}

	return result.RowsAffected(), nil
}
