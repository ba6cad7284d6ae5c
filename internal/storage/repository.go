// Package storage defines the repository interfaces for data persistence.
//
// These interfaces keep the business logic independent of the storage
// implementation. Repositories report failures through the error taxonomy:
// a missing row surfaces as a not-found taxonomy error, a unique violation
// as a conflict.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/domain"
)

// ComponentRepository defines the operations for component persistence.
type ComponentRepository interface {
	// Create stores a new component. Returns a conflict error if slug+version is taken.
	Create(ctx context.Context, c *domain.Component) error

	// GetByID retrieves a component by ID. Returns a not-found error if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Component, error)

	// GetBySlugVersion retrieves a specific version of a component.
	GetBySlugVersion(ctx context.Context, slug, version string) (*domain.Component, error)

	// Update saves changes to an existing component.
	Update(ctx context.Context, c *domain.Component) error

	// Delete performs a soft delete.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves components with pagination and optional filtering.
	List(ctx context.Context, filter ComponentFilter) ([]domain.Component, int64, error)
}

// ComponentFilter contains options for filtering and paginating component lists.
type ComponentFilter struct {
	Status *domain.ComponentStatus
	Owner  *uuid.UUID
	Search string // Matches name, slug, description
	Offset int
	Limit  int
}

// ContractRepository defines operations for contract persistence.
type ContractRepository interface {
	// Create stores a new contract. Returns a conflict error when the
	// component is missing or name+version is taken for that component.
	Create(ctx context.Context, c *domain.Contract) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)

	Update(ctx context.Context, c *domain.Contract) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByComponent retrieves all contracts published by a component.
	ListByComponent(ctx context.Context, componentID uuid.UUID) ([]domain.Contract, error)
}

// EnvironmentRepository defines operations for environment persistence.
type EnvironmentRepository interface {
	Create(ctx context.Context, e *domain.Environment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Environment, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Environment, error)
	Update(ctx context.Context, e *domain.Environment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]domain.Environment, error)
}

// UserRepository defines the operations for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
}

// UserFilter contains options for filtering and paginating user lists.
type UserFilter struct {
	Status *domain.UserStatus
	Role   *domain.Role
	Search string // Searches email, username, full_name
	Offset int
	Limit  int
}

// TokenRepository defines operations for refresh token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Repositories groups every repository backed by one database.
type Repositories struct {
	Components   ComponentRepository
	Contracts    ContractRepository
	Environments EnvironmentRepository
	Users        UserRepository
	Tokens       TokenRepository
}

// Transactor runs a function within a storage transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
