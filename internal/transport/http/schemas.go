package http

import (
	"encoding/json"
	"regexp"

	g "github.com/reoring/goskema/dsl"

	"github.com/mvaleed/registry/internal/auth"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/validate"
)

// Request schemas. Declarative rule schemas cover hand-written endpoint
// contracts; goskema schemas cover the parts where we want coercion and
// defaulting on top of validation.

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?$`)
)

func roleCheck(v any) (bool, string) {
	s, _ := v.(string)
	if !domain.Role(s).Valid() {
		return false, "role must be one of viewer, editor, admin"
	}
	return true, ""
}

var registerSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "email", Required: true, Type: validate.TypeString, Pattern: emailPattern},
		{Field: "username", Required: true, Type: validate.TypeString, MinLength: 3, MaxLength: 32},
		{Field: "full_name", Type: validate.TypeString, MaxLength: 128},
		{Field: "password", Required: true, Check: auth.PasswordStrength},
	},
}

var loginSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "email", Required: true, Type: validate.TypeString},
		{Field: "password", Required: true, Type: validate.TypeString},
	},
}

var refreshSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "refresh_token", Required: true, Type: validate.TypeString},
	},
}

var changePasswordSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "current_password", Required: true, Type: validate.TypeString},
		{Field: "new_password", Required: true, Check: auth.PasswordStrength},
	},
}

var changeRoleSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "role", Required: true, Type: validate.TypeString, Check: roleCheck},
	},
}

var createComponentSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "name", Required: true, Type: validate.TypeString, MinLength: 1, MaxLength: 128},
		{Field: "slug", Required: true, Type: validate.TypeString, Pattern: slugPattern},
		{Field: "version", Required: true, Type: validate.TypeString, Pattern: versionPattern},
		{Field: "description", Type: validate.TypeString, MaxLength: 2048},
		{Field: "labels", Type: validate.TypeObject},
	},
}

var createContractSchema = validate.Schema{
	Body: []validate.Rule{
		{Field: "name", Required: true, Type: validate.TypeString, MinLength: 1, MaxLength: 128},
		{Field: "version", Required: true, Type: validate.TypeString, Pattern: versionPattern},
		{Field: "media_type", Type: validate.TypeString},
		{Field: "definition", Required: true, Type: validate.TypeObject},
	},
	Params: []validate.Rule{
		{Field: "id", Required: true, Type: validate.TypeString},
	},
}

// listQuerySchema coerces numeric pagination params from their query-string
// form and strips anything unexpected. Handlers receive json.Number values.
var listQuerySchema = validate.SchemaSet{
	Query: g.Object().
		Field("limit", g.SchemaOf[json.Number](g.NumberJSON().CoerceFromString())).
		Field("offset", g.SchemaOf[json.Number](g.NumberJSON().CoerceFromString())).
		Field("search", g.StringOf[string]()).
		Field("status", g.StringOf[string]()).
		Field("role", g.StringOf[string]()).
		Field("owner", g.StringOf[string]()).
		UnknownStrip().
		MustBuild(),
}

// createEnvironmentSchema defaults the tier so callers may omit it.
var createEnvironmentSchema = validate.ForBody(g.Object().
	Field("name", g.StringOf[string]()).
	Field("slug", g.StringOf[string]()).
	Field("tier", g.StringOf[string]()).Default(string(domain.TierDev)).
	Field("description", g.StringOf[string]()).Default("").
	Require("name", "slug").
	UnknownStrip().
	MustBuild())
