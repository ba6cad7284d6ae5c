// Package domain contains the core registry entities and rules.
// These types have no knowledge of databases, HTTP, or any infrastructure concerns.
package domain

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
)

// ComponentStatus represents the lifecycle state of a registry component.
type ComponentStatus string

const (
	ComponentStatusDraft      ComponentStatus = "draft"
	ComponentStatusPublished  ComponentStatus = "published"
	ComponentStatusDeprecated ComponentStatus = "deprecated"
)

// Valid returns true if the ComponentStatus is recognized.
func (s ComponentStatus) Valid() bool {
	switch s {
	case ComponentStatusDraft, ComponentStatusPublished, ComponentStatusDeprecated:
		return true
	}
	return false
}

// CanTransitionTo validates allowed status transitions.
func (s ComponentStatus) CanTransitionTo(target ComponentStatus) bool {
	allowed := map[ComponentStatus][]ComponentStatus{
		ComponentStatusDraft:      {ComponentStatusPublished},
		ComponentStatusPublished:  {ComponentStatusDeprecated},
		ComponentStatusDeprecated: {ComponentStatusPublished},
	}
	return slices.Contains(allowed[s], target)
}

// Component is a versioned entry in the registry. The slug+version pair is
// unique across the registry.
type Component struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Version     string
	Description string
	OwnerID     uuid.UUID
	Status      ComponentStatus
	Labels      map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func NewComponent(name, slug, version, description string, ownerID uuid.UUID) (*Component, error) {
	c := &Component{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Slug:        strings.ToLower(strings.TrimSpace(slug)),
		Version:     strings.TrimSpace(version),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		Status:      ComponentStatusDraft,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Component) Validate() error {
	var errs []apperr.FieldError

	if c.Name == "" {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name is required"})
	} else if len(c.Name) > 120 {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name must be at most 120 characters"})
	}

	if c.Slug == "" {
		errs = append(errs, apperr.FieldError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(c.Slug) {
		errs = append(errs, apperr.FieldError{Field: "slug", Message: "slug can only contain lowercase letters, numbers, and hyphens"})
	}

	if c.Version == "" {
		errs = append(errs, apperr.FieldError{Field: "version", Message: "version is required"})
	} else if !versionRegex.MatchString(c.Version) {
		errs = append(errs, apperr.FieldError{Field: "version", Message: "version must be a semantic version"})
	}

	if len(c.Description) > 2000 {
		errs = append(errs, apperr.FieldError{Field: "description", Message: "description must be at most 2000 characters"})
	}

	if !c.Status.Valid() {
		errs = append(errs, apperr.FieldError{Field: "status", Message: "invalid status"})
	}

	if len(errs) > 0 {
		return apperr.Validation("", errs)
	}
	return nil
}

func (c *Component) ChangeStatus(target ComponentStatus) error {
	if !target.Valid() {
		return apperr.Validation("", []apperr.FieldError{{Field: "status", Message: "invalid status"}})
	}
	if !c.Status.CanTransitionTo(target) {
		return apperr.Conflict("cannot transition from " + string(c.Status) + " to " + string(target))
	}
	c.Status = target
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Component) Publish() error {
	if c.Status == ComponentStatusPublished {
		return nil // Already published, idempotent
	}
	return c.ChangeStatus(ComponentStatusPublished)
}

func (c *Component) Deprecate() error {
	if c.Status == ComponentStatusDeprecated {
		return nil
	}
	return c.ChangeStatus(ComponentStatusDeprecated)
}

func (c *Component) IsDeleted() bool {
	return c.DeletedAt != nil
}

func (c *Component) Delete() {
	now := time.Now().UTC()
	c.DeletedAt = &now
	c.UpdatedAt = now
}

var (
	slugRegex    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?$`)
)
