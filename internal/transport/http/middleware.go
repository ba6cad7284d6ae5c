package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/audit"
	"github.com/mvaleed/registry/internal/domain"
)

// userClaims holds the authenticated user's information from the JWT.
type userClaims struct {
	UserID   uuid.UUID
	Email    string
	Username string
	Role     domain.Role
}

// authMiddleware validates JWT tokens and sets user claims in context.
// Token failures keep their identity so the normalizer distinguishes
// TOKEN_EXPIRED and INVALID_TOKEN from a plain missing credential.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, r, apperr.Unauthorized(""))
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			s.respondError(w, r, apperr.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := s.authService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		uc := &userClaims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Username: claims.Username,
			Role:     domain.Role(claims.Role),
		}

		// The audit middleware sits outside this one, so its context never
		// sees values added here. Fill its holder instead.
		if h, ok := r.Context().Value(claimsHolderKey).(*claimsHolder); ok {
			h.claims = uc
		}

		next.ServeHTTP(w, r.WithContext(setUserClaims(r.Context(), uc)))
	})
}

// requireRole returns middleware enforcing a minimum role in the hierarchy.
func (s *Server) requireRole(min domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := getUserClaims(r.Context())
			if claims == nil {
				s.respondError(w, r, apperr.Unauthorized(""))
				return
			}

			if !claims.Role.AtLeast(min) {
				s.respondError(w, r, apperr.Forbidden("you don't have permission to perform this action"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recoverMiddleware turns panics into normalized envelopes. A recovered
// non-error value is never echoed to the client; the normalizer maps it to
// the fixed internal fallback.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.respondError(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// auditMiddleware records every request into the bounded audit trail. The
// outbound write capability is wrapped explicitly rather than patching the
// response object.
func (s *Server) auditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.recorder == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		holder := &claimsHolder{}
		r = r.WithContext(context.WithValue(r.Context(), claimsHolderKey, holder))

		next.ServeHTTP(ww, r)

		entry := audit.Entry{
			Time:     start.UTC(),
			Method:   r.Method,
			Path:     r.URL.Path,
			Status:   ww.status,
			ClientIP: getClientIP(r),
			Duration: time.Since(start),
		}
		if holder.claims != nil {
			entry.ActorID = holder.claims.UserID
		}
		s.recorder.Record(entry)
	})
}

// responseWriter decorates the outbound writer to observe the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Context helpers

type contextKey string

const (
	userClaimsKey   contextKey = "user_claims"
	claimsHolderKey contextKey = "claims_holder"
)

// claimsHolder lets an outer middleware observe claims resolved deeper in
// the chain.
type claimsHolder struct {
	claims *userClaims
}

func setUserClaims(ctx context.Context, claims *userClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

func getUserClaims(ctx context.Context) *userClaims {
	if claims, ok := ctx.Value(userClaimsKey).(*userClaims); ok {
		return claims
	}
	return nil
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Try X-Forwarded-For first (set by proxies/load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
