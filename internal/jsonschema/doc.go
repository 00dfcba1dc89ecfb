// Package jsonschema derives JSON Schema documents from Go types by
// reflection and validates decoded JSON against them.
//
// Tool inputs are plain structs: the json tag names a parameter, a
// `default:"..."` tag, a pointer type or omitempty makes it optional, and
// descriptions come from an "Args:" section of the tool's doc text (see
// [ParseDocArgs]) or from a `description` tag. Recursive types are emitted
// with $ref/$defs.
package jsonschema
