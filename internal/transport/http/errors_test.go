package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	goskema "github.com/reoring/goskema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/auth"
	"github.com/mvaleed/registry/internal/config"
)

// capturingHandler records every log line so tests can assert on what was
// and was not logged.
type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(string) slog.Handler      { return h }

func (h *capturingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func newTestServer(env string, logs slog.Handler) *Server {
	if logs == nil {
		logs = slog.NewTextHandler(io.Discard, nil)
	}
	return &Server{
		router: chi.NewRouter(),
		cfg:    &config.Config{Environment: env},
		logger: slog.New(logs),
	}
}

func decodeEnvelope(t *testing.T, body io.Reader) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func TestNormalizeClassification(t *testing.T) {
	t.Run("nil becomes internal fallback", func(t *testing.T) {
		e := normalize(nil)
		assert.Equal(t, http.StatusInternalServerError, e.Status)
		assert.Equal(t, apperr.CodeInternal, e.Code)
		assert.Equal(t, fallbackMessage, e.Message)
		assert.False(t, e.Operational)
	})

	t.Run("non-error value becomes internal fallback", func(t *testing.T) {
		e := normalize("some string payload")
		assert.Equal(t, fallbackMessage, e.Message)
		assert.False(t, e.Operational)
	})

	t.Run("taxonomy error passes through untouched", func(t *testing.T) {
		in := apperr.Conflict("slug taken")
		out := normalize(in)
		assert.Same(t, in, out)
		assert.True(t, out.Operational)
	})

	t.Run("wrapped taxonomy error is unwrapped", func(t *testing.T) {
		in := apperr.NotFound("component not found")
		out := normalize(fmt.Errorf("lookup: %w", in))
		assert.Same(t, in, out)
	})

	t.Run("schema issues become a validation error", func(t *testing.T) {
		iss := goskema.Issues{
			{Path: "/name", Code: goskema.CodeRequired, Message: "required property missing"},
		}
		out := normalize(error(iss))
		assert.Equal(t, http.StatusBadRequest, out.Status)
		assert.Equal(t, apperr.CodeValidation, out.Code)
		details, ok := out.Details.([]apperr.FieldError)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "name", details[0].Field)
	})

	t.Run("expired token maps to its own code", func(t *testing.T) {
		out := normalize(fmt.Errorf("validate: %w", auth.ErrExpiredToken))
		assert.Equal(t, http.StatusUnauthorized, out.Status)
		assert.Equal(t, apperr.CodeTokenExpired, out.Code)
	})

	t.Run("invalid token maps to its own code", func(t *testing.T) {
		out := normalize(auth.ErrInvalidToken)
		assert.Equal(t, http.StatusUnauthorized, out.Status)
		assert.Equal(t, apperr.CodeInvalidToken, out.Code)
	})

	t.Run("unknown error becomes non-operational internal", func(t *testing.T) {
		out := normalize(errors.New("connection reset"))
		assert.Equal(t, http.StatusInternalServerError, out.Status)
		assert.Equal(t, apperr.CodeInternal, out.Code)
		assert.Equal(t, "connection reset", out.Message)
		assert.False(t, out.Operational)
	})
}

func TestRespondErrorEnvelopeShape(t *testing.T) {
	s := newTestServer("prod", nil)

	details := []apperr.FieldError{
		{Field: "name", Message: "name is required"},
		{Field: "email", Message: "email has an invalid format"},
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/components", nil)
	s.respondError(w, r, apperr.Validation("", details))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decodeEnvelope(t, w.Body)
	assert.Equal(t, "Validation error", env.Error.Message)
	assert.Equal(t, apperr.CodeValidation, env.Error.Code)
	assert.Equal(t, "/api/v1/components", env.Path)
	assert.Empty(t, env.Error.Stack)

	_, err := time.Parse(time.RFC3339, env.Timestamp)
	assert.NoError(t, err)

	raw, ok := env.Error.Details.([]any)
	require.True(t, ok)
	require.Len(t, raw, 2)
	first, ok := raw[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "name", first["field"])
	assert.Equal(t, "name is required", first["message"])
}

func TestRespondErrorStackGating(t *testing.T) {
	t.Run("development includes the stack and cause", func(t *testing.T) {
		s := newTestServer("dev", nil)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		s.respondError(w, r, errors.New("pool exhausted"))

		env := decodeEnvelope(t, w.Body)
		assert.NotEmpty(t, env.Error.Stack)
		assert.Contains(t, env.Error.Stack, "pool exhausted")
	})

	t.Run("production omits the stack entirely", func(t *testing.T) {
		s := newTestServer("prod", nil)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		s.respondError(w, r, errors.New("pool exhausted"))

		assert.NotContains(t, w.Body.String(), "stack")
	})
}

func TestRespondErrorLogging(t *testing.T) {
	t.Run("operational errors are not logged", func(t *testing.T) {
		logs := &capturingHandler{}
		s := newTestServer("prod", logs)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)

		s.respondError(w, r, apperr.NotFound(""))
		s.respondError(w, r, apperr.Forbidden(""))
		s.respondError(w, r, apperr.Validation("", nil))

		assert.Zero(t, logs.count())
	})

	t.Run("non-operational errors are logged once", func(t *testing.T) {
		logs := &capturingHandler{}
		s := newTestServer("prod", logs)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)

		s.respondError(w, r, errors.New("disk full"))

		require.Equal(t, 1, logs.count())
		assert.Equal(t, slog.LevelError, logs.records[0].Level)
	})
}

func TestRecoveredPanicNeverEchoesValue(t *testing.T) {
	s := newTestServer("prod", nil)
	s.router.Use(s.recoverMiddleware)
	s.router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("super secret internal state")
	})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "super secret internal state")

	env := decodeEnvelope(t, strings.NewReader(w.Body.String()))
	assert.Equal(t, fallbackMessage, env.Error.Message)
	assert.Equal(t, apperr.CodeInternal, env.Error.Code)
}

func TestRecoveredPanicErrorKeepsMessage(t *testing.T) {
	s := newTestServer("prod", nil)
	s.router.Use(s.recoverMiddleware)
	s.router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic(errors.New("index out of range"))
	})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w.Body)
	assert.Equal(t, "index out of range", env.Error.Message)
}
