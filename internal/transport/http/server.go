// Package http provides the HTTP transport layer for the registry service.
//
// Every failure in this layer, whether raised by validation, authentication,
// business logic, or a panic, flows through a single normalizer and is
// rendered as one stable JSON error envelope (see errors.go).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/audit"
	"github.com/mvaleed/registry/internal/config"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/service"
)

// Server is the HTTP server for the registry service.
type Server struct {
	httpServer         *http.Server
	router             *chi.Mux
	componentService   *service.ComponentService
	contractService    *service.ContractService
	environmentService *service.EnvironmentService
	userService        *service.UserService
	authService        *service.AuthService
	recorder           *audit.Recorder
	cfg                *config.Config
	logger             *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	componentService *service.ComponentService,
	contractService *service.ContractService,
	environmentService *service.EnvironmentService,
	userService *service.UserService,
	authService *service.AuthService,
	recorder *audit.Recorder,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:             chi.NewRouter(),
		componentService:   componentService,
		contractService:    contractService,
		environmentService: environmentService,
		userService:        userService,
		authService:        authService,
		recorder:           recorder,
		cfg:                cfg,
		logger:             logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.auditMiddleware)
	s.router.Use(s.recoverMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.With(s.validateRules(registerSchema)).Post("/auth/register", s.handleRegister)
		r.With(s.validateRules(loginSchema)).Post("/auth/login", s.handleLogin)
		r.With(s.validateRules(refreshSchema)).Post("/auth/refresh", s.handleRefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Auth
			r.With(s.validateRules(refreshSchema)).Post("/auth/logout", s.handleLogout)
			r.Post("/auth/logout-all", s.handleLogoutAll)

			// Current user
			r.Get("/users/me", s.handleGetCurrentUser)
			r.Put("/users/me", s.handleUpdateCurrentUser)
			r.With(s.validateRules(changePasswordSchema)).Put("/users/me/password", s.handleChangePassword)

			// Components
			r.Route("/components", func(r chi.Router) {
				r.With(s.validateSchema(listQuerySchema)).Get("/", s.handleListComponents)
				r.Get("/{id}", s.handleGetComponent)
				r.Get("/{slug}/versions/{version}", s.handleGetComponentVersion)
				r.Get("/{id}/contracts", s.handleListContracts)

				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(domain.RoleEditor))
					r.With(s.validateRules(createComponentSchema)).Post("/", s.handleCreateComponent)
					r.Put("/{id}", s.handleUpdateComponent)
					r.Post("/{id}/publish", s.handlePublishComponent)
					r.Post("/{id}/deprecate", s.handleDeprecateComponent)
					r.With(s.validateRules(createContractSchema)).Post("/{id}/contracts", s.handleCreateContract)
				})

				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(domain.RoleAdmin))
					r.Delete("/{id}", s.handleDeleteComponent)
				})
			})

			// Contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/{id}", s.handleGetContract)

				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(domain.RoleEditor))
					r.Put("/{id}", s.handleUpdateContract)
					r.Post("/{id}/retire", s.handleRetireContract)
				})

				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(domain.RoleAdmin))
					r.Delete("/{id}", s.handleDeleteContract)
				})
			})

			// Environments
			r.Route("/environments", func(r chi.Router) {
				r.Get("/", s.handleListEnvironments)
				r.Get("/{id}", s.handleGetEnvironment)
				r.Get("/resolve/{slug}", s.handleResolveEnvironment)

				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(domain.RoleAdmin))
					r.With(s.validateSchema(createEnvironmentSchema)).Post("/", s.handleCreateEnvironment)
					r.Put("/{id}", s.handleUpdateEnvironment)
					r.Delete("/{id}", s.handleDeleteEnvironment)
				})
			})

			// User administration
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireRole(domain.RoleAdmin))
				r.With(s.validateSchema(listQuerySchema)).Get("/", s.handleListUsers)
				r.Get("/{id}", s.handleGetUser)
				r.With(s.validateRules(changeRoleSchema)).Put("/{id}/role", s.handleChangeUserRole)
				r.Post("/{id}/activate", s.handleActivateUser)
				r.Post("/{id}/suspend", s.handleSuspendUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})

			// Audit trail
			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(domain.RoleAdmin))
				r.Get("/audit", s.handleAuditTrail)
			})
		})
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Response helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("", []apperr.FieldError{{Field: "body", Message: "body must be valid JSON"}})
	}
	return nil
}
