package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/leofalp/cascade/internal/jsonschema"
)

var (
	// ErrUnknownTool is returned for a call naming a tool not in the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments wraps schema violations and decode mismatches.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrToolFailed wraps handler errors and recovered panics.
	ErrToolFailed = errors.New("tool failed")
)

// HandlerFunc is the untyped form every tool is reduced to.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// ToolDef is an immutable tool definition: what vendors are told about the
// tool plus the handler the executor invokes.
type ToolDef struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema

	handler   HandlerFunc
	validator *jsonschema.Validator
}

type options struct {
	description string
}

// Option configures New and NewDynamic.
type Option func(*options)

// WithDescription sets the tool description. An "Args:" section in it is
// also mined for parameter descriptions.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = strings.TrimSpace(description)
	}
}

// New builds a ToolDef from a typed function. I must be a struct or a
// pointer to one.
//
//	type readArgs struct {
//	    Path string `json:"path"`
//	}
//	def, err := tool.New("read_file", readFile, tool.WithDescription(`Read a file.
//
//	Args:
//	    path: File to read.`))
func New[I, O any](name string, fn func(ctx context.Context, in I) (O, error), opts ...Option) (*ToolDef, error) {
	if name == "" {
		return nil, errors.New("tool name is empty")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %s: nil function", name)
	}

	t := reflect.TypeFor[I]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool %s: input must be a struct, got %s", name, t)
	}

	o := applyOptions(opts)
	params, err := jsonschema.For[I](jsonschema.ParseDocArgs(o.description))
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	handler := func(ctx context.Context, args map[string]any) (any, error) {
		in, err := decodeInput[I](args, params)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}

	return newDef(name, o.description, params, handler)
}

// NewDynamic builds a ToolDef from an explicit schema and an untyped
// handler, for tools whose parameters are only known at runtime. A nil
// schema means "no parameters".
func NewDynamic(name string, params *jsonschema.Schema, fn HandlerFunc, opts ...Option) (*ToolDef, error) {
	if name == "" {
		return nil, errors.New("tool name is empty")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %s: nil handler", name)
	}
	if params == nil {
		params = &jsonschema.Schema{Type: "object"}
	}
	o := applyOptions(opts)
	return newDef(name, o.description, params, fn)
}

// MustNew is New that panics on error, for package-level builtin tools.
func MustNew[I, O any](name string, fn func(ctx context.Context, in I) (O, error), opts ...Option) *ToolDef {
	def, err := New(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return def
}

func newDef(name, description string, params *jsonschema.Schema, handler HandlerFunc) (*ToolDef, error) {
	validator, err := params.Compile()
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	return &ToolDef{
		Name:        name,
		Description: description,
		Parameters:  params,
		handler:     handler,
		validator:   validator,
	}, nil
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// decodeInput fills schema defaults for missing keys and decodes args into I.
// Keys that name no parameter are rejected rather than dropped.
func decodeInput[I any](args map[string]any, params *jsonschema.Schema) (I, error) {
	var in I

	var unknown []string
	for k := range args {
		if _, ok := params.Properties[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return in, fmt.Errorf("%w: unexpected argument(s) %s", ErrInvalidArguments, strings.Join(unknown, ", "))
	}

	merged := make(map[string]any, len(args))
	for name, prop := range params.Properties {
		if prop.Default != nil {
			merged[name] = prop.Default
		}
	}
	for k, v := range args {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return in, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return in, nil
}
