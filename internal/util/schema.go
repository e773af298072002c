package util

import (
	"reflect"
	"strconv"
	"strings"
)

// CreateSchema derives a JSON object schema from the exported fields of a
// struct (or pointer to struct). Besides json, these tags are understood:
//
//	description:"..."   field description
//	default:"..."       default value, parsed by the field's JSON type
//	maximum:"100"       inclusive upper bound
//	minimum:"1"         inclusive lower bound
//	enum:"a,b,c"        allowed string values
//
// Non-pointer fields without omitempty are required. Any other input yields
// an object schema without properties.
func CreateSchema(v any) map[string]any {
	schema := map[string]any{"type": "object"}
	props := map[string]any{}
	schema["properties"] = props

	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return schema
	}

	var required []string

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		name, omitempty, skip := jsonName(f)
		if skip {
			continue
		}

		props[name] = property(f)

		if !omitempty && f.Type.Kind() != reflect.Pointer {
			required = append(required, name)
		}
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

func jsonName(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}

	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == "omitempty" {
			omitempty = true
		}
	}

	return name, omitempty, false
}

func property(f reflect.StructField) map[string]any {
	typ := jsonType(f.Type)
	p := map[string]any{"type": typ}

	if d := f.Tag.Get("description"); d != "" {
		p["description"] = d
	}

	if raw, ok := f.Tag.Lookup("default"); ok {
		if v, err := parseDefault(raw, typ); err == nil {
			p["default"] = v
		}
	}

	for _, bound := range []string{"maximum", "minimum"} {
		if raw, ok := f.Tag.Lookup(bound); ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				p[bound] = v
			}
		}
	}

	if raw := f.Tag.Get("enum"); raw != "" {
		values := strings.Split(raw, ",")
		for i, s := range values {
			values[i] = strings.TrimSpace(s)
		}
		p["enum"] = values
	}

	return p
}

func parseDefault(raw, typ string) (any, error) {
	switch typ {
	case "integer":
		return strconv.ParseInt(raw, 10, 64)
	case "number":
		return strconv.ParseFloat(raw, 64)
	case "boolean":
		return strconv.ParseBool(raw)
	}
	return raw, nil
}

// jsonType maps a Go type onto its JSON schema type name.
func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return jsonType(t.Elem())
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return "string"
}
