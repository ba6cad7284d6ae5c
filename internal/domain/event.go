package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a registry event that occurred.
// Events are immutable facts about something that happened.
type Event struct {
	ID        uuid.UUID
	Type      string
	Timestamp time.Time
	ActorID   uuid.UUID
	Data      map[string]any
}

// Event type constants
const (
	EventComponentCreated    = "component.created"
	EventComponentUpdated    = "component.updated"
	EventComponentDeleted    = "component.deleted"
	EventComponentPublished  = "component.published"
	EventComponentDeprecated = "component.deprecated"
	EventContractCreated     = "contract.created"
	EventContractUpdated     = "contract.updated"
	EventContractRetired     = "contract.retired"
	EventContractDeleted     = "contract.deleted"
	EventEnvironmentCreated  = "environment.created"
	EventEnvironmentUpdated  = "environment.updated"
	EventEnvironmentDeleted  = "environment.deleted"
	EventUserRegistered      = "user.registered"
	EventUserUpdated         = "user.updated"
	EventUserDeleted         = "user.deleted"
	EventUserLoggedIn        = "user.logged_in"
	EventUserLoggedOut       = "user.logged_out"
)

// NewEvent creates a new registry event.
func NewEvent(eventType string, actorID uuid.UUID, data map[string]any) Event {
	if data == nil {
		data = make(map[string]any)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		Data:      data,
	}
}

func ComponentCreatedEvent(actorID uuid.UUID, c *Component) Event {
	return NewEvent(EventComponentCreated, actorID, map[string]any{
		"component_id": c.ID.String(),
		"slug":         c.Slug,
		"version":      c.Version,
	})
}

func ComponentPublishedEvent(actorID uuid.UUID, c *Component) Event {
	return NewEvent(EventComponentPublished, actorID, map[string]any{
		"component_id": c.ID.String(),
		"slug":         c.Slug,
		"version":      c.Version,
	})
}

func ComponentDeprecatedEvent(actorID uuid.UUID, c *Component) Event {
	return NewEvent(EventComponentDeprecated, actorID, map[string]any{
		"component_id": c.ID.String(),
		"slug":         c.Slug,
		"version":      c.Version,
	})
}

func ContractCreatedEvent(actorID uuid.UUID, c *Contract) Event {
	return NewEvent(EventContractCreated, actorID, map[string]any{
		"contract_id":  c.ID.String(),
		"component_id": c.ComponentID.String(),
		"name":         c.Name,
		"version":      c.Version,
	})
}

func EnvironmentCreatedEvent(actorID uuid.UUID, e *Environment) Event {
	return NewEvent(EventEnvironmentCreated, actorID, map[string]any{
		"environment_id": e.ID.String(),
		"slug":           e.Slug,
		"tier":           string(e.Tier),
	})
}

func UserRegisteredEvent(u *User) Event {
	return NewEvent(EventUserRegistered, u.ID, map[string]any{
		"email":    u.Email,
		"username": u.Username,
		"role":     string(u.Role),
	})
}

func UserLoggedInEvent(userID uuid.UUID, ipAddress string) Event {
	return NewEvent(EventUserLoggedIn, userID, map[string]any{
		"ip_address": ipAddress,
	})
}

func UserLoggedOutEvent(userID uuid.UUID) Event {
	return NewEvent(EventUserLoggedOut, userID, nil)
}
