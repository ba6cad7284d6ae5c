package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/service"
	"github.com/mvaleed/registry/internal/storage"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// Current user handlers

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	user, err := s.userService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

func (s *Server) handleUpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	var req updateUserRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.userService.UpdateUser(r.Context(), claims.UserID, service.UpdateUserInput{
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	var req changePasswordRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.userService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// Admin user handlers

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	filter := storage.UserFilter{Offset: 0, Limit: 20}

	if parts := getRequestParts(r.Context()); parts != nil {
		filter.Search, _ = parts.Query["search"].(string)
		filter.Offset = queryInt(parts.Query, "offset", 0, 0, 1<<30)
		filter.Limit = queryInt(parts.Query, "limit", 20, 1, 100)

		if v, ok := parts.Query["status"].(string); ok && v != "" {
			st := domain.UserStatus(v)
			if st.Valid() {
				filter.Status = &st
			}
		}
		if v, ok := parts.Query["role"].(string); ok && v != "" {
			role := domain.Role(v)
			if role.Valid() {
				filter.Role = &role
			}
		}
	}

	users, total, err := s.userService.ListUsers(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	userResponses := make([]userResponse, len(users))
	for i := range users {
		userResponses[i] = toUserResponse(&users[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"users":  userResponses,
		"total":  total,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.userService.GetUser(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleChangeUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req changeRoleRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.userService.ChangeRole(r.Context(), id, domain.Role(req.Role))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleActivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.userService.ActivateUser(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "user activated"})
}

func (s *Server) handleSuspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.userService.SuspendUser(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "user suspended"})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	claims := getUserClaims(r.Context())
	if claims != nil && claims.UserID == id {
		s.respondError(w, r, apperr.Conflict("cannot delete your own account"))
		return
	}

	if err := s.userService.DeleteUser(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}

// parseID extracts a UUID path parameter.
func parseID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("", []apperr.FieldError{{Field: name, Message: name + " must be a valid UUID"}})
	}
	return id, nil
}
