package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/service"
)

type environmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Tier        string `json:"tier"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toEnvironmentResponse(e *domain.Environment) environmentResponse {
	return environmentResponse{
		ID:          e.ID.String(),
		Name:        e.Name,
		Slug:        e.Slug,
		Tier:        string(e.Tier),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	environments, err := s.environmentService.ListEnvironments(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	responses := make([]environmentResponse, len(environments))
	for i := range environments {
		responses[i] = toEnvironmentResponse(&environments[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"environments": responses,
		"total":        len(responses),
	})
}

func (s *Server) handleGetEnvironment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	e, err := s.environmentService.GetEnvironment(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toEnvironmentResponse(e))
}

func (s *Server) handleResolveEnvironment(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	e, err := s.environmentService.ResolveEnvironment(r.Context(), slug)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toEnvironmentResponse(e))
}

type createEnvironmentRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Tier        string `json:"tier"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateEnvironment(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	var req createEnvironmentRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	e, err := s.environmentService.CreateEnvironment(r.Context(), claims.UserID, service.CreateEnvironmentInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Tier:        domain.EnvironmentTier(req.Tier),
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toEnvironmentResponse(e))
}

type updateEnvironmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Tier        *string `json:"tier,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *Server) handleUpdateEnvironment(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req updateEnvironmentRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	input := service.UpdateEnvironmentInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Tier != nil {
		tier := domain.EnvironmentTier(*req.Tier)
		input.Tier = &tier
	}

	e, err := s.environmentService.UpdateEnvironment(r.Context(), claims.UserID, id, input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toEnvironmentResponse(e))
}

func (s *Server) handleDeleteEnvironment(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.environmentService.DeleteEnvironment(r.Context(), claims.UserID, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
