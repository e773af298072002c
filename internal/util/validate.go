package util

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"
)

// ValidationError describes the first argument that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateParameters checks params against an object schema: required
// members, primitive types, numeric bounds and string enums. Unknown members
// are accepted.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, name := range stringList(schema["required"]) {
		if params[name] == nil {
			return &ValidationError{Field: name, Message: "required field is missing"}
		}
	}

	props, _ := schema["properties"].(map[string]any)

	// Sorted so the reported field is stable.
	for _, name := range slices.Sorted(maps.Keys(params)) {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		if msg := check(params[name], prop); msg != "" {
			return &ValidationError{Field: name, Value: params[name], Message: msg}
		}
	}

	return nil
}

// check returns a violation message, or "" when value satisfies prop.
func check(value any, prop map[string]any) string {
	typ, _ := prop["type"].(string)
	if !hasType(value, typ) {
		return fmt.Sprintf("expected type %s, got %T", typ, value)
	}

	if n, ok := number(value); ok {
		if hi, ok := number(prop["maximum"]); ok && n > hi {
			return fmt.Sprintf("must be less than or equal to %v", hi)
		}
		if lo, ok := number(prop["minimum"]); ok && n < lo {
			return fmt.Sprintf("must be greater than or equal to %v", lo)
		}
	}

	if s, ok := value.(string); ok {
		if allowed := stringList(prop["enum"]); allowed != nil && !slices.Contains(allowed, s) {
			return fmt.Sprintf("must be one of [%s]", strings.Join(allowed, ", "))
		}
	}

	return ""
}

// ApplyDefaults returns a copy of params completed with the schema defaults
// of absent members.
func ApplyDefaults(params map[string]any, schema map[string]any) map[string]any {
	out := maps.Clone(params)
	if out == nil {
		out = map[string]any{}
	}

	props, _ := schema["properties"].(map[string]any)
	for name, p := range props {
		prop, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if def, ok := prop["default"]; ok {
			if _, set := out[name]; !set {
				out[name] = def
			}
		}
	}

	return out
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, x := range l {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// number converts any Go numeric value.
func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

// hasType reports whether value fits a JSON schema type. nil fits every type;
// JSON decoded integers arrive as whole float64 values.
func hasType(value any, typ string) bool {
	if value == nil {
		return true
	}

	switch typ {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		n, ok := number(value)
		return ok && n == math.Trunc(n)
	case "number":
		_, ok := number(value)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}
