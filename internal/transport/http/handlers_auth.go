package http

import (
	"net/http"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	// Self-registered accounts always start as viewers; role changes are
	// an admin operation.
	user, err := s.userService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Role:     domain.RoleViewer,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Auto-login after registration
	result, err := s.authService.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: getClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		// Registration succeeded but auto-login failed - just return user
		s.writeJSON(w, http.StatusCreated, map[string]any{
			"user": toUserResponse(user),
		})
		return
	}

	s.writeJSON(w, http.StatusCreated, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresInSeconds,
		User:         toUserResponse(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.authService.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: getClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresInSeconds,
		User:         toUserResponse(result.User),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.authService.RefreshToken(r.Context(), service.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
		IPAddress:    getClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresInSeconds,
		User:         toUserResponse(result.User),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.bindBody(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.respondError(w, r, apperr.Unauthorized(""))
		return
	}

	if err := s.authService.LogoutAll(r.Context(), claims.UserID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out from all sessions"})
}
