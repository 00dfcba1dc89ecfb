package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema sent to vendors as tool parameters.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Default              any                `json:"default,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`
}

// For derives the schema of T. See FromType.
func For[T any](paramDocs map[string]string) (*Schema, error) {
	return FromType(reflect.TypeFor[T](), paramDocs)
}

// FromType derives a schema for t. paramDocs maps top-level property names
// to descriptions and wins over `description` tags. Malformed `default` or
// `jsonschema` enum tags are reported as errors.
func FromType(t reflect.Type, paramDocs map[string]string) (*Schema, error) {
	g := &generator{
		inProgress: make(map[reflect.Type]bool),
		recursive:  make(map[reflect.Type]bool),
		defs:       make(map[string]*Schema),
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var (
		schema *Schema
		err    error
	)
	if t.Kind() == reflect.Struct {
		schema, err = g.object(t, paramDocs, true)
	} else {
		schema, err = g.field(t)
	}
	if err != nil {
		return nil, err
	}

	if len(g.defs) > 0 {
		schema.Defs = g.defs
	}
	return schema, nil
}

type generator struct {
	inProgress map[reflect.Type]bool
	recursive  map[reflect.Type]bool
	defs       map[string]*Schema
}

func (g *generator) field(t reflect.Type) (*Schema, error) {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Slice, reflect.Array:
		items, err := g.field(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		schema := &Schema{Type: "object"}
		if t.Elem().Kind() != reflect.Interface {
			values, err := g.field(t.Elem())
			if err != nil {
				return nil, err
			}
			schema.AdditionalProperties = values
		}
		return schema, nil
	case reflect.Pointer:
		return g.field(t.Elem())
	case reflect.Struct:
		return g.object(t, nil, false)
	default:
		// interfaces and anything unannotated are advertised as strings
		return &Schema{Type: "string"}, nil
	}
}

func (g *generator) object(t reflect.Type, paramDocs map[string]string, isRoot bool) (*Schema, error) {
	if g.inProgress[t] {
		g.recursive[t] = true
		return &Schema{Ref: defRef(t)}, nil
	}
	g.inProgress[t] = true
	defer delete(g.inProgress, t)

	schema := &Schema{Type: "object", Properties: make(map[string]*Schema)}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonName(f)
		if skip {
			continue
		}

		prop, err := g.field(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		hasDefault := false
		if raw, ok := f.Tag.Lookup("default"); ok {
			def, err := parseDefault(f.Type, raw)
			if err != nil {
				return nil, fmt.Errorf("field %s: default %q: %w", name, raw, err)
			}
			prop.Default = def
			hasDefault = true
		}

		requiredByTag := false
		if prop.Ref == "" {
			requiredByTag, err = applySchemaTag(f.Type, f.Tag.Get("jsonschema"), prop)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			if doc, ok := paramDocs[name]; ok && doc != "" {
				prop.Description = doc
			} else if desc := f.Tag.Get("description"); desc != "" {
				prop.Description = desc
			}
		}

		schema.Properties[name] = prop
		optional := hasDefault || omitEmpty || f.Type.Kind() == reflect.Pointer
		if !optional || requiredByTag {
			schema.Required = append(schema.Required, name)
		}
	}

	if g.recursive[t] {
		def := *schema
		g.defs[defName(t)] = &def
		if !isRoot {
			return &Schema{Ref: defRef(t)}, nil
		}
	}
	return schema, nil
}

func jsonName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func defName(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

func defRef(t reflect.Type) string {
	return "#/$defs/" + defName(t)
}

// parseDefault converts a `default` tag into a value of the field's JSON type.
func parseDefault(t reflect.Type, raw string) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(raw, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, 64)
	case reflect.Interface:
		return raw, nil
	default:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// applySchemaTag handles `jsonschema:"description=...,enum=a,enum=b,required"`.
// It reports whether the tag forces the field to be required.
func applySchemaTag(t reflect.Type, tag string, schema *Schema) (bool, error) {
	if tag == "" {
		return false, nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		if !hasValue {
			if key == "required" {
				required = true
			}
			continue
		}
		switch key {
		case "description":
			schema.Description = value
		case "enum":
			v, err := parseDefault(t, value)
			if err != nil {
				return false, fmt.Errorf("enum value %q: %w", value, err)
			}
			schema.Enum = append(schema.Enum, v)
		}
	}
	return required, nil
}

// String returns the compact JSON encoding of the schema.
func (s *Schema) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}
