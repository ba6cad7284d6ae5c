package validate

import (
	"net/mail"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/registry/internal/apperr"
)

func TestApplyCollectsAllRequiredViolationsInOrder(t *testing.T) {
	s := Schema{Body: []Rule{
		{Field: "name", Required: true},
		{Field: "slug", Required: true},
		{Field: "version", Required: true},
	}}

	got := s.Apply(Parts{Body: map[string]any{}})

	require.Len(t, got, 3)
	assert.Equal(t, "name is required", got[0].Message)
	assert.Equal(t, "slug is required", got[1].Message)
	assert.Equal(t, "version is required", got[2].Message)
}

func TestFirstFailingCheckWinsPerField(t *testing.T) {
	// Wrong-typed and too short: only the type violation is reported.
	s := Schema{Body: []Rule{
		{Field: "name", Required: true, Type: TypeString, MinLength: 5},
	}}

	got := s.Apply(Parts{Body: map[string]any{"name": 42}})

	require.Len(t, got, 1)
	assert.Equal(t, "name must be of type string", got[0].Message)
}

func TestEmptyStringCountsAsAbsent(t *testing.T) {
	s := Schema{Body: []Rule{{Field: "name", Required: true, MinLength: 3}}}

	got := s.Apply(Parts{Body: map[string]any{"name": ""}})

	require.Len(t, got, 1)
	assert.Equal(t, "name is required", got[0].Message)
}

func TestOptionalAbsentSkipsRemainingChecks(t *testing.T) {
	s := Schema{Body: []Rule{
		{Field: "description", Type: TypeString, MinLength: 10},
	}}

	assert.Empty(t, s.Apply(Parts{Body: map[string]any{}}))
	assert.Empty(t, s.Apply(Parts{Body: map[string]any{"description": nil}}))
}

func TestStringChecksRunInOrder(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z-]+$`)
	rule := Rule{Field: "slug", Type: TypeString, MinLength: 3, MaxLength: 10, Pattern: pattern}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"too short", "ab", "slug must be at least 3 characters"},
		{"too long", "abcdefghijkl", "slug must be at most 10 characters"},
		{"bad pattern", "Slug!", "slug has an invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Schema{Body: []Rule{rule}}.Apply(Parts{Body: map[string]any{"slug": tt.value}})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Message)
		})
	}

	assert.Empty(t, Schema{Body: []Rule{rule}}.Apply(Parts{Body: map[string]any{"slug": "my-slug"}}))
}

func TestCustomCheckMessages(t *testing.T) {
	s := Schema{Body: []Rule{
		{Field: "age", Check: func(v any) (bool, string) {
			n, ok := v.(float64)
			if !ok || n <= 0 {
				return false, "age must be positive"
			}
			return true, ""
		}},
		{Field: "nickname", Check: func(v any) (bool, string) { return false, "" }},
	}}

	got := s.Apply(Parts{Body: map[string]any{"age": -5.0, "nickname": "x"}})

	require.Len(t, got, 2)
	assert.Equal(t, "age must be positive", got[0].Message)
	assert.Equal(t, "nickname is invalid", got[1].Message)
}

func TestSectionsEvaluateBodyQueryParams(t *testing.T) {
	s := Schema{
		Body:   []Rule{{Field: "name", Required: true}},
		Query:  []Rule{{Field: "limit", Required: true}},
		Params: []Rule{{Field: "id", Required: true}},
	}

	got := s.Apply(Parts{})

	require.Len(t, got, 3)
	assert.Equal(t, "name", got[0].Field)
	assert.Equal(t, "limit", got[1].Field)
	assert.Equal(t, "id", got[2].Field)
}

func TestTypeMatching(t *testing.T) {
	tests := []struct {
		typ   Type
		value any
		ok    bool
	}{
		{TypeString, "x", true},
		{TypeString, 1, false},
		{TypeNumber, 1.5, true},
		{TypeNumber, 7, true},
		{TypeNumber, "7", false},
		{TypeBoolean, true, true},
		{TypeBoolean, "true", false},
		{TypeArray, []any{1}, true},
		{TypeArray, map[string]any{}, false},
		{TypeObject, map[string]any{}, true},
		{TypeObject, []any{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, matchesType(tt.typ, tt.value), "%s vs %T", tt.typ, tt.value)
	}
}

func TestErrWrapsViolationsAsTaxonomyError(t *testing.T) {
	emailRule := Rule{Field: "email", Required: true, Check: func(v any) (bool, string) {
		s, ok := v.(string)
		if !ok {
			return false, ""
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return false, "email must be a valid email address"
		}
		return true, ""
	}}
	s := Schema{Body: []Rule{
		{Field: "name", Required: true},
		{Field: "age", Type: TypeNumber, Check: func(v any) (bool, string) {
			if n, ok := v.(float64); ok && n > 0 {
				return true, ""
			}
			return false, "age must be positive"
		}},
		emailRule,
	}}

	err := s.Err(Parts{Body: map[string]any{"name": "", "age": -5.0, "email": "not-an-email"}})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Status)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	details, ok := ae.Details.([]apperr.FieldError)
	require.True(t, ok)
	require.Len(t, details, 3)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "age", details[1].Field)
	assert.Equal(t, "email", details[2].Field)
}

func TestErrNilOnCleanInput(t *testing.T) {
	s := Schema{Body: []Rule{{Field: "name", Required: true, Type: TypeString}}}
	assert.NoError(t, s.Err(Parts{Body: map[string]any{"name": "ok"}}))
}
