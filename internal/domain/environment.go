package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
)

// EnvironmentTier orders deployment environments.
type EnvironmentTier string

const (
	TierDev     EnvironmentTier = "dev"
	TierStaging EnvironmentTier = "staging"
	TierProd    EnvironmentTier = "prod"
)

func (t EnvironmentTier) Valid() bool {
	switch t {
	case TierDev, TierStaging, TierProd:
		return true
	}
	return false
}

// Environment is a deployment target components are promoted through.
// Slug is unique across the registry.
type Environment struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Tier        EnvironmentTier
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEnvironment(name, slug string, tier EnvironmentTier, description string) (*Environment, error) {
	e := &Environment{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Slug:        strings.ToLower(strings.TrimSpace(slug)),
		Tier:        tier,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Environment) Validate() error {
	var errs []apperr.FieldError

	if e.Name == "" {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name is required"})
	} else if len(e.Name) > 80 {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name must be at most 80 characters"})
	}

	if e.Slug == "" {
		errs = append(errs, apperr.FieldError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(e.Slug) {
		errs = append(errs, apperr.FieldError{Field: "slug", Message: "slug can only contain lowercase letters, numbers, and hyphens"})
	}

	if !e.Tier.Valid() {
		errs = append(errs, apperr.FieldError{Field: "tier", Message: "tier must be one of dev, staging, prod"})
	}

	if len(e.Description) > 500 {
		errs = append(errs, apperr.FieldError{Field: "description", Message: "description must be at most 500 characters"})
	}

	if len(errs) > 0 {
		return apperr.Validation("", errs)
	}
	return nil
}
