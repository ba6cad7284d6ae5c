package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/event"
	"github.com/mvaleed/registry/internal/storage"
)

// ContractService handles contract operations.
type ContractService struct {
	contracts  storage.ContractRepository
	components storage.ComponentRepository
	publisher  event.Publisher
}

func NewContractService(
	contracts storage.ContractRepository,
	components storage.ComponentRepository,
	publisher event.Publisher,
) *ContractService {
	return &ContractService{
		contracts:  contracts,
		components: components,
		publisher:  publisher,
	}
}

// CreateContractInput contains the fields for publishing a contract.
type CreateContractInput struct {
	ComponentID uuid.UUID
	Name        string
	Version     string
	MediaType   string
	Definition  map[string]any
}

func (s *ContractService) CreateContract(ctx context.Context, actorID uuid.UUID, input CreateContractInput) (*domain.Contract, error) {
	// The owning component must exist and not be deprecated.
	component, err := s.components.GetByID(ctx, input.ComponentID)
	if err != nil {
		return nil, err
	}
	if component.Status == domain.ComponentStatusDeprecated {
		return nil, apperr.Conflict("cannot add contracts to a deprecated component")
	}

	c, err := domain.NewContract(input.ComponentID, input.Name, input.Version, input.MediaType, input.Definition)
	if err != nil {
		return nil, err
	}

	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.ContractCreatedEvent(actorID, c)); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *ContractService) ListContracts(ctx context.Context, componentID uuid.UUID) ([]domain.Contract, error) {
	// Listing for a missing component is a not-found, not an empty list.
	if _, err := s.components.GetByID(ctx, componentID); err != nil {
		return nil, err
	}
	return s.contracts.ListByComponent(ctx, componentID)
}

// UpdateContractInput contains optional fields to change.
type UpdateContractInput struct {
	Name       *string
	MediaType  *string
	Definition map[string]any
}

func (s *ContractService) UpdateContract(ctx context.Context, actorID, id uuid.UUID, input UpdateContractInput) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status == domain.ContractStatusRetired {
		return nil, apperr.Conflict("cannot update a retired contract")
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.MediaType != nil {
		c.MediaType = *input.MediaType
	}
	if input.Definition != nil {
		c.Definition = input.Definition
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.contracts.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.NewEvent(domain.EventContractUpdated, actorID, map[string]any{
		"contract_id": c.ID.String(),
	})); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ContractService) RetireContract(ctx context.Context, actorID, id uuid.UUID) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Retire()

	if err := s.contracts.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.NewEvent(domain.EventContractRetired, actorID, map[string]any{
		"contract_id": c.ID.String(),
	})); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ContractService) DeleteContract(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.contracts.Delete(ctx, id); err != nil {
		return err
	}

	return s.publisher.Publish(ctx, domain.NewEvent(domain.EventContractDeleted, actorID, map[string]any{
		"contract_id": id.String(),
	}))
}
