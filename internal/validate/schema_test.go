package validate

import (
	"context"
	"encoding/json"
	"testing"

	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/registry/internal/apperr"
)

func TestFlattenPointer(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"/name", "name"},
		{"/items/1", "items[1]"},
		{"/a/b/2/c", "a.b[2].c"},
		{"/nested/deep/value", "nested.deep.value"},
		{"/0/name", "[0].name"},
		{"/weird~1key/sub", "weird/key.sub"},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FlattenPointer(tt.ptr), "pointer %q", tt.ptr)
	}
}

func TestViolationsKeepOrderAndDuplicates(t *testing.T) {
	iss := goskema.Issues{
		{Path: "/name", Code: goskema.CodeRequired, Message: "required property missing"},
		{Path: "/items/2/price", Code: goskema.CodeInvalidType, Message: "invalid type"},
		{Path: "/name", Code: goskema.CodeTooShort, Message: "too short"},
	}

	got := Violations("body", iss)

	require.Len(t, got, 3)
	assert.Equal(t, "name", got[0].Field)
	assert.Equal(t, "items[2].price", got[1].Field)
	assert.Equal(t, "name", got[2].Field)
}

func TestViolationsRootIssueNamesThePart(t *testing.T) {
	iss := goskema.Issues{{Path: "/", Code: goskema.CodeInvalidType, Message: "expected object"}}
	got := Violations("body", iss)
	require.Len(t, got, 1)
	assert.Equal(t, "body", got[0].Field)
}

func bodySchema(t *testing.T) PartSchema {
	t.Helper()
	return g.Object().
		Field("name", g.StringOf[string]()).
		Field("tier", g.StringOf[string]()).Default("dev").
		Require("name").
		UnknownStrip().
		MustBuild()
}

func TestApplyReplacesBodyWithParsedOutput(t *testing.T) {
	set := ForBody(bodySchema(t))
	parts := Parts{Body: map[string]any{"name": "billing", "extra": "dropped"}}

	require.NoError(t, set.Apply(context.Background(), &parts))

	// Defaulting flowed back and unknown keys were stripped.
	assert.Equal(t, "billing", parts.Body["name"])
	assert.Equal(t, "dev", parts.Body["tier"])
	_, hasExtra := parts.Body["extra"]
	assert.False(t, hasExtra)
}

func TestApplyIsIdempotentOnParsedOutput(t *testing.T) {
	set := ForBody(bodySchema(t))
	parts := Parts{Body: map[string]any{"name": "billing"}}

	require.NoError(t, set.Apply(context.Background(), &parts))
	first := parts.Body

	require.NoError(t, set.Apply(context.Background(), &parts))
	assert.Equal(t, first, parts.Body)
}

func TestApplyConvertsIssuesToValidationError(t *testing.T) {
	set := ForBody(bodySchema(t))
	parts := Parts{Body: map[string]any{}}

	err := set.Apply(context.Background(), &parts)
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Status)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	details, ok := ae.Details.([]apperr.FieldError)
	require.True(t, ok)
	require.NotEmpty(t, details)
	assert.Equal(t, "name", details[0].Field)
}

func TestApplyStopsAtFirstFailingPart(t *testing.T) {
	querySchema := g.Object().
		Field("limit", g.SchemaOf[json.Number](g.NumberJSON().CoerceFromString())).
		Require("limit").
		UnknownStrip().
		MustBuild()
	set := SchemaSet{Body: bodySchema(t), Query: querySchema}

	parts := Parts{
		Body:  map[string]any{}, // fails: name required
		Query: map[string]any{"limit": "20"},
	}

	err := set.Apply(context.Background(), &parts)
	require.Error(t, err)

	// Query was never parsed: its value is still the raw string.
	assert.Equal(t, "20", parts.Query["limit"])
}

func TestApplyCoercesQueryStrings(t *testing.T) {
	querySchema := g.Object().
		Field("limit", g.SchemaOf[json.Number](g.NumberJSON().CoerceFromString())).
		UnknownStrip().
		MustBuild()
	set := SchemaSet{Query: querySchema}

	parts := Parts{Query: map[string]any{"limit": "20"}}
	require.NoError(t, set.Apply(context.Background(), &parts))

	n, ok := parts.Query["limit"].(json.Number)
	require.True(t, ok, "limit should be coerced to a number, got %T", parts.Query["limit"])
	assert.Equal(t, json.Number("20"), n)
}
