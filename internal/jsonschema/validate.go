package jsonschema

import (
	"encoding/json"
	"fmt"

	gjs "github.com/google/jsonschema-go/jsonschema"
)

// Validator checks decoded JSON values against a compiled schema.
type Validator struct {
	resolved *gjs.Resolved
}

// Compile resolves s for validation. $ref pointers into $defs are resolved
// here, so a dangling reference fails early.
func (s *Schema) Compile() (*Validator, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var compiled gjs.Schema
	if err := json.Unmarshal(data, &compiled); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	resolved, err := compiled.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &Validator{resolved: resolved}, nil
}

// Validate reports the first violation of v, which must be a value produced
// by encoding/json (maps, slices, float64, string, bool, nil).
func (v *Validator) Validate(value any) error {
	return v.resolved.Validate(value)
}
