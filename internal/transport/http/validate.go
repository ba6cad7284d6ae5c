package http

import (
	"context"
	stdjson "encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/validate"
)

const requestPartsKey contextKey = "request_parts"

// requestParts decodes the three request parts into the shape both
// validator front ends consume. Body decode failures become validation
// errors immediately; an empty body is an empty map.
func requestParts(r *http.Request) (*validate.Parts, error) {
	parts := &validate.Parts{
		Body:   map[string]any{},
		Query:  map[string]any{},
		Params: map[string]any{},
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&parts.Body); err != nil {
			return nil, apperr.Validation("", []apperr.FieldError{{Field: "body", Message: "body must be valid JSON"}})
		}
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			parts.Query[key] = values[0]
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			parts.Params[key] = rctx.URLParams.Values[i]
		}
	}

	return parts, nil
}

// validateRules returns middleware running the declarative rule validator.
// Every violation across body, query, and params is collected into one
// envelope; business logic is never reached on failure.
func (s *Server) validateRules(schema validate.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts, err := requestParts(r)
			if err != nil {
				s.respondError(w, r, err)
				return
			}

			if err := schema.Err(*parts); err != nil {
				s.respondError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(setRequestParts(r.Context(), parts)))
		})
	}
}

// validateSchema returns middleware running structured schemas against the
// request. Successful parses replace the request parts, so handlers observe
// coerced and defaulted values.
func (s *Server) validateSchema(set validate.SchemaSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts, err := requestParts(r)
			if err != nil {
				s.respondError(w, r, err)
				return
			}

			if err := set.Apply(r.Context(), parts); err != nil {
				s.respondError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(setRequestParts(r.Context(), parts)))
		})
	}
}

// bindBody decodes the request body into v. Handlers behind a validation
// middleware get the validated (coerced, defaulted) body; everything else
// falls back to decoding the raw request.
func (s *Server) bindBody(r *http.Request, v any) error {
	parts := getRequestParts(r.Context())
	if parts == nil {
		return s.readJSON(r, v)
	}

	raw, err := json.Marshal(parts.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Validation("", []apperr.FieldError{{Field: "body", Message: "body has an unexpected shape"}})
	}
	return nil
}

func setRequestParts(ctx context.Context, parts *validate.Parts) context.Context {
	return context.WithValue(ctx, requestPartsKey, parts)
}

// getRequestParts returns the validated (possibly coerced) request parts.
// Only handlers behind a validation middleware may call this.
func getRequestParts(ctx context.Context) *validate.Parts {
	if parts, ok := ctx.Value(requestPartsKey).(*validate.Parts); ok {
		return parts
	}
	return nil
}

// queryInt reads a coerced numeric query value, clamping to [min, max].
// Out-of-range or absent values fall back to def.
func queryInt(query map[string]any, key string, def, min, max int) int {
	v, ok := query[key]
	if !ok {
		return def
	}
	n, ok := v.(stdjson.Number)
	if !ok {
		return def
	}
	i, err := n.Int64()
	if err != nil || int(i) < min || int(i) > max {
		return def
	}
	return int(i)
}
