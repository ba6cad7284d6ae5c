package apperr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		status  int
		code    string
		message string
	}{
		{"bad request", BadRequest("missing id segment"), http.StatusBadRequest, CodeBadRequest, "missing id segment"},
		{"unauthorized default", Unauthorized(""), http.StatusUnauthorized, CodeUnauthorized, "Unauthorized"},
		{"forbidden default", Forbidden(""), http.StatusForbidden, CodeForbidden, "Forbidden"},
		{"not found default", NotFound(""), http.StatusNotFound, CodeNotFound, "Not found"},
		{"not found override", NotFound("component not found"), http.StatusNotFound, CodeNotFound, "component not found"},
		{"conflict default", Conflict(""), http.StatusConflict, CodeConflict, "Conflict"},
		{"validation default", Validation("", nil), http.StatusBadRequest, CodeValidation, "Validation error"},
		{"internal default", Internal(""), http.StatusInternalServerError, CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, tt.err.Operational)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	e := New("boom", 0, "")
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, CodeError, e.Code)
	assert.True(t, e.Operational)
}

func TestValidationCarriesDetails(t *testing.T) {
	details := []FieldError{
		{Field: "name", Message: "name is required"},
		{Field: "age", Message: "age must be of type number", Value: "-5"},
	}
	e := Validation("x", details)

	require.Equal(t, http.StatusBadRequest, e.Status)
	require.Equal(t, CodeValidation, e.Code)
	assert.Equal(t, "x", e.Message)
	assert.Equal(t, details, e.Details)
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		httpStatus int
		want       codes.Code
	}{
		{http.StatusBadRequest, codes.InvalidArgument},
		{http.StatusUnauthorized, codes.Unauthenticated},
		{http.StatusForbidden, codes.PermissionDenied},
		{http.StatusNotFound, codes.NotFound},
		{http.StatusConflict, codes.AlreadyExists},
		{http.StatusInternalServerError, codes.Internal},
		{http.StatusTeapot, codes.Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GRPCCode(tt.httpStatus))
	}
}

func TestGRPCStatus(t *testing.T) {
	e := Validation("Validation error", []FieldError{{Field: "email", Message: "email is required"}})
	st := GRPCStatus(e)

	require.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "Validation error", st.Message())
	require.Len(t, st.Details(), 1)
}

func TestGRPCStatusWithoutDetails(t *testing.T) {
	st := GRPCStatus(NotFound(""))
	require.Equal(t, codes.NotFound, st.Code())
	assert.Empty(t, st.Details())
}
