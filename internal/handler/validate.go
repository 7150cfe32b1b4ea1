package handler

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/xeipuuv/gojsonschema"
)

// bodySchema validates a JSON request body against a compiled schema and
// reports failures with per-field messages.
type bodySchema struct {
	schema   *gojsonschema.Schema
	messages map[string]string
	rank     map[string]int
}

// validationError carries the user-facing message of a rejected body.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func mustSchema(def map[string]any, messages map[string]string) *bodySchema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
	if err != nil {
		panic(err)
	}
	return &bodySchema{schema: s, messages: messages, rank: fieldRank(def, messages)}
}

// fieldRank orders reported fields: required properties in declaration order,
// then every other known field alphabetically.  gojsonschema itself reports
// in map iteration order.
func fieldRank(def map[string]any, messages map[string]string) map[string]int {
	rank := make(map[string]int, len(messages))
	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				rank[name] = len(rank)
			}
		}
	}
	rest := make([]string, 0, len(messages))
	for field := range messages {
		if _, ok := rank[field]; !ok {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range rest {
		rank[field] = len(rank)
	}
	return rank
}

var indexSegment = regexp.MustCompile(`\.\d+`)

// bind validates the request body and decodes it into dst.  An empty body is
// treated as {}.
func (s *bodySchema) bind(c echo.Context, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return &validationError{"Unable to read request body"}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &validationError{"Request body must be valid JSON"}
	}
	if !result.Valid() {
		return &validationError{s.describe(result.Errors())}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &validationError{"Request body must be valid JSON"}
	}
	return nil
}

func (s *bodySchema) describe(errs []gojsonschema.ResultError) string {
	type failure struct {
		rank int
		msg  string
	}
	failures := make([]failure, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if e.Type() == "required" {
			if p, ok := e.Details()["property"].(string); ok {
				if field == rootField {
					field = p
				} else {
					field += "." + p
				}
			}
		}
		field = indexSegment.ReplaceAllString(field, ".*")
		msg, ok := s.messages[field]
		if !ok {
			msg = e.String()
		}
		r, ok := s.rank[field]
		if !ok {
			r = len(s.rank)
		}
		failures = append(failures, failure{rank: r, msg: msg})
	}
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].rank < failures[j].rank })

	seen := make(map[string]bool)
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		if !seen[f.msg] {
			seen[f.msg] = true
			out = append(out, f.msg)
		}
	}
	return strings.Join(out, ", ")
}

func asValidation(err error) (string, bool) {
	var ve *validationError
	if errors.As(err, &ve) {
		return ve.msg, true
	}
	return "", false
}

// optionalString tells an absent field from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	o.Value = &s
	return nil
}

// trimmed returns a trimmed copy of *p, or nil.
func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

// Schema fragments shared by the catalog bodies.  "\S" rejects
// whitespace-only values, which are empty once trimmed.
func text(max int) map[string]any {
	return map[string]any{"type": "string", "minLength": 1, "maxLength": max, "pattern": `\S`}
}

func nullableText(max int) map[string]any {
	return map[string]any{"type": []any{"string", "null"}, "maxLength": max}
}

func positiveInt() map[string]any {
	return map[string]any{"type": "integer", "minimum": 1}
}

func enum(values ...string) map[string]any {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]any{"type": "string", "enum": vs}
}

func object(props map[string]any, required ...string) map[string]any {
	def := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		def["required"] = req
	}
	return def
}

const rootField = "(root)"

const bodyMustBeObject = "Request body must be a JSON object"
