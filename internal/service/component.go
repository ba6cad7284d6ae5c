// Package service implements the registry's business logic on top of the
// storage interfaces. Services raise taxonomy errors directly (not found,
// conflict, forbidden); the transport layer normalizes them unchanged.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/event"
	"github.com/mvaleed/registry/internal/storage"
)

// ComponentService handles component lifecycle operations.
type ComponentService struct {
	components storage.ComponentRepository
	contracts  storage.ContractRepository
	tx         storage.Transactor
	publisher  event.Publisher
}

func NewComponentService(
	components storage.ComponentRepository,
	contracts storage.ContractRepository,
	tx storage.Transactor,
	publisher event.Publisher,
) *ComponentService {
	return &ComponentService{
		components: components,
		contracts:  contracts,
		tx:         tx,
		publisher:  publisher,
	}
}

// CreateComponentInput contains the fields for registering a component.
type CreateComponentInput struct {
	Name        string
	Slug        string
	Version     string
	Description string
	Labels      map[string]string
}

func (s *ComponentService) CreateComponent(ctx context.Context, ownerID uuid.UUID, input CreateComponentInput) (*domain.Component, error) {
	c, err := domain.NewComponent(input.Name, input.Slug, input.Version, input.Description, ownerID)
	if err != nil {
		return nil, err
	}
	c.Labels = input.Labels

	if _, err := s.components.GetBySlugVersion(ctx, c.Slug, c.Version); err == nil {
		return nil, apperr.Conflict("component " + c.Slug + "@" + c.Version + " already exists")
	}

	if err := s.components.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.ComponentCreatedEvent(ownerID, c)); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ComponentService) GetComponent(ctx context.Context, id uuid.UUID) (*domain.Component, error) {
	c, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ComponentService) GetComponentVersion(ctx context.Context, slug, version string) (*domain.Component, error) {
	return s.components.GetBySlugVersion(ctx, slug, version)
}

func (s *ComponentService) ListComponents(ctx context.Context, filter storage.ComponentFilter) ([]domain.Component, int64, error) {
	return s.components.List(ctx, filter)
}

// UpdateComponentInput contains optional fields to change.
type UpdateComponentInput struct {
	Name        *string
	Description *string
	Labels      map[string]string
}

func (s *ComponentService) UpdateComponent(ctx context.Context, actorID, id uuid.UUID, input UpdateComponentInput) (*domain.Component, error) {
	c, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Labels != nil {
		c.Labels = input.Labels
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.components.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.NewEvent(domain.EventComponentUpdated, actorID, map[string]any{
		"component_id": c.ID.String(),
	})); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ComponentService) PublishComponent(ctx context.Context, actorID, id uuid.UUID) (*domain.Component, error) {
	c, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Publish(); err != nil {
		return nil, err
	}

	if err := s.components.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.ComponentPublishedEvent(actorID, c)); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ComponentService) DeprecateComponent(ctx context.Context, actorID, id uuid.UUID) (*domain.Component, error) {
	c, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Deprecate(); err != nil {
		return nil, err
	}

	if err := s.components.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.ComponentDeprecatedEvent(actorID, c)); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ComponentService) DeleteComponent(ctx context.Context, actorID, id uuid.UUID) error {
	// The contract check and the delete must see the same state; a contract
	// created between the two would otherwise be orphaned.
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		contracts, err := s.contracts.ListByComponent(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range contracts {
			if c.Status == domain.ContractStatusActive {
				return apperr.Conflict("component has active contracts")
			}
		}
		return s.components.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	return s.publisher.Publish(ctx, domain.NewEvent(domain.EventComponentDeleted, actorID, map[string]any{
		"component_id": id.String(),
	}))
}
