package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
)

// ContractStatus represents the lifecycle state of a contract.
type ContractStatus string

const (
	ContractStatusActive  ContractStatus = "active"
	ContractStatusRetired ContractStatus = "retired"
)

func (s ContractStatus) Valid() bool {
	return s == ContractStatusActive || s == ContractStatusRetired
}

// Contract is an interface definition published by a component: an API
// schema, an event payload, a configuration surface. Definition holds the
// raw document; the registry stores it opaquely.
type Contract struct {
	ID          uuid.UUID
	ComponentID uuid.UUID
	Name        string
	Version     string
	MediaType   string
	Definition  map[string]any
	Status      ContractStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewContract(componentID uuid.UUID, name, version, mediaType string, definition map[string]any) (*Contract, error) {
	c := &Contract{
		ID:          uuid.New(),
		ComponentID: componentID,
		Name:        strings.TrimSpace(name),
		Version:     strings.TrimSpace(version),
		MediaType:   strings.TrimSpace(mediaType),
		Definition:  definition,
		Status:      ContractStatusActive,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if c.MediaType == "" {
		c.MediaType = "application/json"
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Contract) Validate() error {
	var errs []apperr.FieldError

	if c.ComponentID == uuid.Nil {
		errs = append(errs, apperr.FieldError{Field: "component_id", Message: "component_id is required"})
	}

	if c.Name == "" {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name is required"})
	} else if len(c.Name) > 120 {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name must be at most 120 characters"})
	}

	if c.Version == "" {
		errs = append(errs, apperr.FieldError{Field: "version", Message: "version is required"})
	} else if !versionRegex.MatchString(c.Version) {
		errs = append(errs, apperr.FieldError{Field: "version", Message: "version must be a semantic version"})
	}

	if len(c.Definition) == 0 {
		errs = append(errs, apperr.FieldError{Field: "definition", Message: "definition is required"})
	}

	if !c.Status.Valid() {
		errs = append(errs, apperr.FieldError{Field: "status", Message: "invalid status"})
	}

	if len(errs) > 0 {
		return apperr.Validation("", errs)
	}
	return nil
}

func (c *Contract) Retire() {
	if c.Status == ContractStatusRetired {
		return
	}
	c.Status = ContractStatusRetired
	c.UpdatedAt = time.Now().UTC()
}
