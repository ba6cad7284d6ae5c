// Package validate checks untrusted request input before it reaches business
// logic. Two interchangeable front ends produce the same violation shape:
// declarative per-field rules (this file) and structured goskema schemas
// (schema.go). Either way the caller ends up with a taxonomy validation error
// carrying every violation found, not just the first.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/mvaleed/registry/internal/apperr"
)

// Type names the runtime type a rule may require.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Rule declares the checks for a single field. Checks run in a fixed order:
// required, type, minLength, maxLength, pattern, custom. The first failing
// check wins; later checks for that field are skipped.
type Rule struct {
	Field    string
	Required bool
	Type     Type

	// String-only bounds. Zero means unset; MinLength/MaxLength and Pattern
	// are ignored for non-string values.
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp

	// Check is an optional custom predicate. A non-empty returned message is
	// used verbatim; returning ok=false with an empty message produces the
	// generic "<field> is invalid".
	Check func(v any) (ok bool, message string)
}

// Schema groups rules per request part. An absent section leaves that part
// unchecked. Sections are evaluated body, then query, then params; within a
// section violations come out in rule declaration order.
type Schema struct {
	Body   []Rule
	Query  []Rule
	Params []Rule
}

// Parts holds the three request parts as decoded maps.
type Parts struct {
	Body   map[string]any
	Query  map[string]any
	Params map[string]any
}

// Apply evaluates every rule and returns the complete violation list.
// No field suppresses another field's checks.
func (s Schema) Apply(parts Parts) []apperr.FieldError {
	var out []apperr.FieldError
	out = applyRules(out, s.Body, parts.Body)
	out = applyRules(out, s.Query, parts.Query)
	out = applyRules(out, s.Params, parts.Params)
	return out
}

// Err runs Apply and wraps a non-empty violation list into a taxonomy
// validation error. Returns nil when the input is clean.
func (s Schema) Err(parts Parts) error {
	violations := s.Apply(parts)
	if len(violations) == 0 {
		return nil
	}
	return apperr.Validation("", violations)
}

func applyRules(out []apperr.FieldError, rules []Rule, part map[string]any) []apperr.FieldError {
	for _, r := range rules {
		v, present := part[r.Field]
		if fe := checkRule(r, v, present); fe != nil {
			out = append(out, *fe)
		}
	}
	return out
}

// checkRule evaluates one rule against one value. At most one violation per
// field per pass.
func checkRule(r Rule, v any, present bool) *apperr.FieldError {
	empty := !present || v == nil || v == ""

	if r.Required && empty {
		return &apperr.FieldError{Field: r.Field, Message: r.Field + " is required"}
	}
	if empty {
		// Optional and absent: nothing else to check.
		return nil
	}

	if r.Type != "" && !matchesType(r.Type, v) {
		return &apperr.FieldError{
			Field:   r.Field,
			Message: fmt.Sprintf("%s must be of type %s", r.Field, r.Type),
			Value:   v,
		}
	}

	if s, ok := v.(string); ok {
		if r.MinLength > 0 && len(s) < r.MinLength {
			return &apperr.FieldError{
				Field:   r.Field,
				Message: fmt.Sprintf("%s must be at least %d characters", r.Field, r.MinLength),
				Value:   v,
			}
		}
		if r.MaxLength > 0 && len(s) > r.MaxLength {
			return &apperr.FieldError{
				Field:   r.Field,
				Message: fmt.Sprintf("%s must be at most %d characters", r.Field, r.MaxLength),
				Value:   v,
			}
		}
		if r.Pattern != nil && !r.Pattern.MatchString(s) {
			return &apperr.FieldError{
				Field:   r.Field,
				Message: r.Field + " has an invalid format",
				Value:   v,
			}
		}
	}

	if r.Check != nil {
		if ok, msg := r.Check(v); !ok {
			if msg == "" {
				msg = r.Field + " is invalid"
			}
			return &apperr.FieldError{Field: r.Field, Message: msg, Value: v}
		}
	}

	return nil
}

func matchesType(t Type, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		switch n := v.(type) {
		case float64:
			return !math.IsNaN(n)
		case float32:
			return !math.IsNaN(float64(n))
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case json.Number:
			_, err := n.Float64()
			return err == nil
		}
		return false
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}
