package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/auth"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/event"
	"github.com/mvaleed/registry/internal/storage"
)

// UserService handles user account operations.
type UserService struct {
	users     storage.UserRepository
	publisher event.Publisher
}

func NewUserService(users storage.UserRepository, publisher event.Publisher) *UserService {
	return &UserService{users: users, publisher: publisher}
}

// RegisterInput contains the fields for creating an account.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     domain.Role
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleViewer
	}

	user, err := domain.NewUser(input.Email, input.Username, input.FullName, role)
	if err != nil {
		return nil, err
	}

	if ok, msg := auth.PasswordStrength(input.Password); !ok {
		return nil, apperr.Validation("", []apperr.FieldError{{Field: "password", Message: msg}})
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	// New accounts are activated immediately; suspension is an admin action.
	if err := user.Activate(); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.UserRegisteredEvent(user)); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error) {
	return s.users.List(ctx, filter)
}

// UpdateUserInput contains optional fields to change.
type UpdateUserInput struct {
	Username *string
	FullName *string
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.NewEvent(domain.EventUserUpdated, user.ID, nil)); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangeRole sets a user's role. Only admins reach this path; the transport
// layer enforces that.
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.CheckPassword(currentPassword, user.PasswordHash); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}

	if ok, msg := auth.PasswordStrength(newPassword); !ok {
		return apperr.Validation("", []apperr.FieldError{{Field: "new_password", Message: msg}})
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	return s.users.Update(ctx, user)
}

func (s *UserService) SuspendUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := user.Suspend(); err != nil {
		return err
	}

	return s.users.Update(ctx, user)
}

func (s *UserService) ActivateUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := user.Activate(); err != nil {
		return err
	}

	return s.users.Update(ctx, user)
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	return s.publisher.Publish(ctx, domain.NewEvent(domain.EventUserDeleted, id, nil))
}
