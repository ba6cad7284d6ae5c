package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/service"
	"github.com/mvaleed/registry/internal/storage"
)

type componentResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	OwnerID     string            `json:"owner_id"`
	Status      string            `json:"status"`
	Labels      map[string]string `json:"labels,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func toComponentResponse(c *domain.Component) componentResponse {
	return componentResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Version:     c.Version,
		Description: c.Description,
		OwnerID:     c.OwnerID.String(),
		Status:      string(c.Status),
		Labels:      c.Labels,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	filter := storage.ComponentFilter{Offset: 0, Limit: 20}

	if parts := getRequestParts(r.Context()); parts != nil {
		filter.Search, _ = parts.Query["search"].(string)
		filter.Offset = queryInt(parts.Query, "offset", 0, 0, 1<<30)
		filter.Limit = queryInt(parts.Query, "limit", 20, 1, 100)

		if v, ok := parts.Query["status"].(string); ok && v != "" {
			st := domain.ComponentStatus(v)
			if st.Valid() {
				filter.Status = &st
			}
		}
		if v, ok := parts.Query["owner"].(string); ok && v != "" {
			if owner, err := uuid.Parse(v); err == nil {
				filter.Owner = &owner
			}
		}
	}

	components, total, err := s.componentService.ListComponents(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	responses := make([]componentResponse, len(components))
	for i := range components {
		responses[i] = toComponentResponse(&components[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"components": responses,
		"total":      total,
		"offset":     filter.Offset,
		"limit":      filter.Limit,
	})
}

func (s *Server) handleGetComponent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.componentService.GetComponent(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toComponentResponse(c))
}

func (s *Server) handleGetComponentVersion(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	version := chi.URLParam(r, "version")

	c, err := s.componentService.GetComponentVersion(r.Context(), slug, version)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toComponentResponse(c))
}

type createComponentRequest struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

func (s *Server) handleCreateComponent(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	var req createComponentRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.componentService.CreateComponent(r.Context(), claims.UserID, service.CreateComponentInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Version:     req.Version,
		Description: req.Description,
		Labels:      req.Labels,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toComponentResponse(c))
}

type updateComponentRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

func (s *Server) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
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

	var req updateComponentRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.componentService.UpdateComponent(r.Context(), claims.UserID, id, service.UpdateComponentInput{
		Name:        req.Name,
		Description: req.Description,
		Labels:      req.Labels,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toComponentResponse(c))
}

func (s *Server) handlePublishComponent(w http.ResponseWriter, r *http.Request) {
	s.handleComponentTransition(w, r, s.componentService.PublishComponent)
}

func (s *Server) handleDeprecateComponent(w http.ResponseWriter, r *http.Request) {
	s.handleComponentTransition(w, r, s.componentService.DeprecateComponent)
}

func (s *Server) handleComponentTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, actorID, id uuid.UUID) (*domain.Component, error),
) {
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

	c, err := transition(r.Context(), claims.UserID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toComponentResponse(c))
}

func (s *Server) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
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

	if err := s.componentService.DeleteComponent(r.Context(), claims.UserID, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
