package domain

import (
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
)

// UserStatus represents the current state of a user account.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// Valid returns true if the UserStatus is recognized.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// CanTransitionTo validates allowed status transitions.
func (s UserStatus) CanTransitionTo(target UserStatus) bool {
	allowed := map[UserStatus][]UserStatus{
		UserStatusPending:   {UserStatusActive, UserStatusInactive},
		UserStatusActive:    {UserStatusInactive, UserStatusSuspended},
		UserStatusInactive:  {UserStatusActive, UserStatusSuspended},
		UserStatusSuspended: {UserStatusActive, UserStatusInactive},
	}
	return slices.Contains(allowed[s], target)
}

// User is a registry account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Never expose this externally
	Username     string
	FullName     string
	Role         Role
	Status       UserStatus

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func NewUser(email, username, fullName string, role Role) (*User, error) {
	u := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Username:  strings.TrimSpace(username),
		FullName:  strings.TrimSpace(fullName),
		Role:      role,
		Status:    UserStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Validate() error {
	var errs []apperr.FieldError

	if u.Email == "" {
		errs = append(errs, apperr.FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(u.Email); err != nil {
		errs = append(errs, apperr.FieldError{Field: "email", Message: "email must be a valid email address"})
	}

	if u.Username == "" {
		errs = append(errs, apperr.FieldError{Field: "username", Message: "username is required"})
	} else if len(u.Username) < 3 || len(u.Username) > 50 {
		errs = append(errs, apperr.FieldError{Field: "username", Message: "username must be 3-50 characters"})
	} else if !usernameRegex.MatchString(u.Username) {
		errs = append(errs, apperr.FieldError{Field: "username", Message: "username can only contain letters, numbers, underscores, and hyphens"})
	}

	if len(u.FullName) > 200 {
		errs = append(errs, apperr.FieldError{Field: "full_name", Message: "full_name must be at most 200 characters"})
	}

	if !u.Role.Valid() {
		errs = append(errs, apperr.FieldError{Field: "role", Message: "role must be one of viewer, editor, admin"})
	}

	if !u.Status.Valid() {
		errs = append(errs, apperr.FieldError{Field: "status", Message: "invalid status"})
	}

	if len(errs) > 0 {
		return apperr.Validation("", errs)
	}
	return nil
}

func (u *User) ChangeStatus(target UserStatus) error {
	if !target.Valid() {
		return apperr.Validation("", []apperr.FieldError{{Field: "status", Message: "invalid status"}})
	}
	if !u.Status.CanTransitionTo(target) {
		return apperr.Conflict("cannot transition from " + string(u.Status) + " to " + string(target))
	}
	u.Status = target
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return nil // Already active, idempotent
	}
	return u.ChangeStatus(UserStatusActive)
}

func (u *User) Suspend() error {
	if u.Status == UserStatusSuspended {
		return nil
	}
	return u.ChangeStatus(UserStatusSuspended)
}

func (u *User) ChangeRole(role Role) error {
	if !role.Valid() {
		return apperr.Validation("", []apperr.FieldError{{Field: "role", Message: "role must be one of viewer, editor, admin"}})
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && u.DeletedAt == nil
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) Delete() {
	now := time.Now().UTC()
	u.DeletedAt = &now
	u.UpdatedAt = now
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
