package validate

import (
	"context"
	"strings"

	goskema "github.com/reoring/goskema"

	"github.com/mvaleed/registry/internal/apperr"
)

// PartSchema is an externally defined structured schema for one request part.
// Parsing may coerce or default values; the parse output replaces the part.
type PartSchema = goskema.Schema[map[string]any]

// SchemaSet bundles one structured schema per request part. A nil schema
// leaves that part unchecked.
type SchemaSet struct {
	Body   PartSchema
	Query  PartSchema
	Params PartSchema
}

// ForBody wraps a single schema that applies to the request body only.
func ForBody(s PartSchema) SchemaSet {
	return SchemaSet{Body: s}
}

// Apply parses body, query and params in that order. Each successful parse
// replaces the corresponding part in place, so coercions (numeric query
// strings becoming numbers, applied defaults) flow back to the caller. The
// first failing part aborts the rest: later parts never observe a request
// whose earlier parts were rejected. Parsing is context-aware because schema
// refinements may perform I/O.
func (ss SchemaSet) Apply(ctx context.Context, parts *Parts) error {
	steps := []struct {
		name   string
		schema PartSchema
		target *map[string]any
	}{
		{"body", ss.Body, &parts.Body},
		{"query", ss.Query, &parts.Query},
		{"params", ss.Params, &parts.Params},
	}

	for _, st := range steps {
		if st.schema == nil {
			continue
		}
		in := *st.target
		if in == nil {
			in = map[string]any{}
		}
		out, err := st.schema.Parse(ctx, in)
		if err != nil {
			if iss, ok := goskema.AsIssues(err); ok {
				return apperr.Validation("", Violations(st.name, iss))
			}
			return err
		}
		*st.target = out
	}
	return nil
}

// Violations converts goskema issues into the flat violation shape shared
// with the rule validator. Multiple issues on the same path stay in order;
// none are merged. A root-level issue is attributed to the part itself.
func Violations(part string, iss goskema.Issues) []apperr.FieldError {
	out := make([]apperr.FieldError, 0, len(iss))
	for _, it := range iss {
		field := FlattenPointer(it.Path)
		if field == "" {
			field = part
		}
		out = append(out, apperr.FieldError{Field: field, Message: it.Message})
	}
	return out
}

// FlattenPointer renders a JSON Pointer as a dotted/bracketed field path.
// "/items/2/price" becomes "items[2].price"; array indices attach with no
// leading dot. Escapes ~1 and ~0 are decoded per RFC 6901.
func FlattenPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		if isIndex(seg) {
			b.WriteString("[")
			b.WriteString(seg)
			b.WriteString("]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
