package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	goskema "github.com/reoring/goskema"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/auth"
	"github.com/mvaleed/registry/internal/validate"
)

// fallbackMessage is what clients see when the failure carries no safe
// message of its own. Arbitrary thrown values are never echoed back.
const fallbackMessage = "Something went wrong"

// errorBody is the inner object of the wire envelope.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// errorEnvelope is the single JSON shape returned for any handled failure,
// regardless of where in the request lifecycle it originated.
type errorEnvelope struct {
	Error     errorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
	Path      string    `json:"path"`
}

// normalize classifies any failure into a taxonomy error. Classification
// order, first match wins:
//
//  1. nil or non-error value (recovered panics) -> 500 with the fixed
//     fallback message, non-operational
//  2. a taxonomy error -> used verbatim
//  3. a schema-library issue list not already converted upstream -> 400
//     validation error carrying the flattened issues
//  4. a known authentication failure -> 401 with a token-specific code
//  5. anything else error-shaped -> 500, non-operational, message kept
//     (or the fallback when empty)
func normalize(v any) *apperr.Error {
	if v == nil {
		return internalFallback("")
	}

	err, isErr := v.(error)
	if !isErr {
		return internalFallback("")
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}

	var iss goskema.Issues
	if errors.As(err, &iss) {
		return apperr.Validation("", validate.Violations("body", iss))
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return apperr.New("Token expired", http.StatusUnauthorized, apperr.CodeTokenExpired)
	case errors.Is(err, auth.ErrInvalidToken):
		return apperr.New("Invalid token", http.StatusUnauthorized, apperr.CodeInvalidToken)
	}

	return internalFallback(err.Error())
}

func internalFallback(message string) *apperr.Error {
	if message == "" {
		message = fallbackMessage
	}
	e := apperr.New(message, http.StatusInternalServerError, apperr.CodeInternal)
	e.Operational = false
	return e
}

// respondError normalizes a failure and renders the envelope. Non-operational
// errors get one diagnostic log line here; operational errors are expected
// client-facing conditions and are not logged at this layer.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, v any) {
	e := normalize(v)

	if !e.Operational {
		s.logger.Error("non-operational error",
			slog.Any("error", v),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	env := errorEnvelope{
		Error: errorBody{
			Message: e.Message,
			Code:    e.Code,
			Details: e.Details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	// Stack traces are development-only diagnostics; in any other
	// environment the field is omitted entirely.
	if s.cfg.IsDevelopment() {
		env.Error.Stack = fmt.Sprintf("%v\n%s", v, debug.Stack())
	}

	s.writeJSON(w, e.Status, env)
}
