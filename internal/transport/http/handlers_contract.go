package http

import (
	"net/http"
	"time"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/service"
)

type contractResponse struct {
	ID          string         `json:"id"`
	ComponentID string         `json:"component_id"`
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	MediaType   string         `json:"media_type"`
	Definition  map[string]any `json:"definition"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func toContractResponse(c *domain.Contract) contractResponse {
	return contractResponse{
		ID:          c.ID.String(),
		ComponentID: c.ComponentID.String(),
		Name:        c.Name,
		Version:     c.Version,
		MediaType:   c.MediaType,
		Definition:  c.Definition,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	componentID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contracts, err := s.contractService.ListContracts(r.Context(), componentID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	responses := make([]contractResponse, len(contracts))
	for i := range contracts {
		responses[i] = toContractResponse(&contracts[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"contracts": responses,
		"total":     len(responses),
	})
}

type createContractRequest struct {
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	MediaType  string         `json:"media_type,omitempty"`
	Definition map[string]any `json:"definition"`
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	componentID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createContractRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.contractService.CreateContract(r.Context(), claims.UserID, service.CreateContractInput{
		ComponentID: componentID,
		Name:        req.Name,
		Version:     req.Version,
		MediaType:   req.MediaType,
		Definition:  req.Definition,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toContractResponse(c))
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.contractService.GetContract(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toContractResponse(c))
}

type updateContractRequest struct {
	Name       *string        `json:"name,omitempty"`
	MediaType  *string        `json:"media_type,omitempty"`
	Definition map[string]any `json:"definition,omitempty"`
}

func (s *Server) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
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

	var req updateContractRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.contractService.UpdateContract(r.Context(), claims.UserID, id, service.UpdateContractInput{
		Name:       req.Name,
		MediaType:  req.MediaType,
		Definition: req.Definition,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toContractResponse(c))
}

func (s *Server) handleRetireContract(w http.ResponseWriter, r *http.Request) {
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

	c, err := s.contractService.RetireContract(r.Context(), claims.UserID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toContractResponse(c))
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
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

	if err := s.contractService.DeleteContract(r.Context(), claims.UserID, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
