package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/event"
	"github.com/mvaleed/registry/internal/storage"
)

// Environment reads dominate registry traffic (every deploy resolves a slug),
// so lookups go through a short-lived in-memory cache. Mutations invalidate
// eagerly.
const (
	envCacheTTL     = 5 * time.Minute
	envCacheCleanup = 10 * time.Minute
)

// EnvironmentService handles environment operations.
type EnvironmentService struct {
	environments storage.EnvironmentRepository
	publisher    event.Publisher
	cache        *gocache.Cache
}

func NewEnvironmentService(environments storage.EnvironmentRepository, publisher event.Publisher) *EnvironmentService {
	return &EnvironmentService{
		environments: environments,
		publisher:    publisher,
		cache:        gocache.New(envCacheTTL, envCacheCleanup),
	}
}

// CreateEnvironmentInput contains the fields for registering an environment.
type CreateEnvironmentInput struct {
	Name        string
	Slug        string
	Tier        domain.EnvironmentTier
	Description string
}

func (s *EnvironmentService) CreateEnvironment(ctx context.Context, actorID uuid.UUID, input CreateEnvironmentInput) (*domain.Environment, error) {
	e, err := domain.NewEnvironment(input.Name, input.Slug, input.Tier, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.environments.Create(ctx, e); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.EnvironmentCreatedEvent(actorID, e)); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *EnvironmentService) GetEnvironment(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	return s.environments.GetByID(ctx, id)
}

// ResolveEnvironment looks an environment up by slug, serving repeat lookups
// from cache.
func (s *EnvironmentService) ResolveEnvironment(ctx context.Context, slug string) (*domain.Environment, error) {
	if cached, ok := s.cache.Get(slug); ok {
		e := cached.(domain.Environment)
		return &e, nil
	}

	e, err := s.environments.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.cache.Set(slug, *e, gocache.DefaultExpiration)
	return e, nil
}

func (s *EnvironmentService) ListEnvironments(ctx context.Context) ([]domain.Environment, error) {
	return s.environments.List(ctx)
}

// UpdateEnvironmentInput contains optional fields to change.
type UpdateEnvironmentInput struct {
	Name        *string
	Tier        *domain.EnvironmentTier
	Description *string
}

func (s *EnvironmentService) UpdateEnvironment(ctx context.Context, actorID, id uuid.UUID, input UpdateEnvironmentInput) (*domain.Environment, error) {
	e, err := s.environments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		e.Name = *input.Name
	}
	if input.Tier != nil {
		e.Tier = *input.Tier
	}
	if input.Description != nil {
		e.Description = *input.Description
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.environments.Update(ctx, e); err != nil {
		return nil, err
	}

	s.cache.Delete(e.Slug)

	if err := s.publisher.Publish(ctx, domain.NewEvent(domain.EventEnvironmentUpdated, actorID, map[string]any{
		"environment_id": e.ID.String(),
	})); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *EnvironmentService) DeleteEnvironment(ctx context.Context, actorID, id uuid.UUID) error {
	e, err := s.environments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.environments.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(e.Slug)

	return s.publisher.Publish(ctx, domain.NewEvent(domain.EventEnvironmentDeleted, actorID, map[string]any{
		"environment_id": id.String(),
	}))
}
