package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/observability"
)

// CallRecord is one executed tool invocation, as returned to callers of a
// tool-calling loop.
type CallRecord struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input"`
	Output string         `json:"output"`
}

// Executor dispatches tool calls against a catalog.
type Executor struct {
	catalog *Catalog
}

// NewExecutor returns an Executor over catalog. A nil catalog knows no tools.
func NewExecutor(catalog *Catalog) *Executor {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Executor{catalog: catalog}
}

// Execute runs the named tool and always returns a JSON object string:
// {"result": ...} on success, {"error": "..."} otherwise. It never panics.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) string {
	result, err := e.Run(ctx, name, args)
	if err != nil {
		return utils.JSONToString(map[string]string{"error": errorMessage(name, err)})
	}
	return utils.JSONToString(map[string]any{"result": result})
}

// Run is Execute with a typed error. Errors wrap ErrUnknownTool,
// ErrInvalidArguments or ErrToolFailed.
func (e *Executor) Run(ctx context.Context, name string, args map[string]any) (result any, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanToolExecution,
		observability.String(observability.AttrToolName, name),
	)
	defer span.End()

	obs := observability.ObserverFromContext(ctx)
	timer := utils.NewTimer()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: panic: %v", ErrToolFailed, r)
		}

		span.SetAttributes(observability.Duration(observability.AttrToolDuration, timer.Stop()))
		if obs != nil {
			obs.Counter(observability.MetricToolCallCount).Add(ctx, 1,
				observability.String(observability.AttrToolName, name))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
			if obs != nil {
				obs.Counter(observability.MetricToolErrorCount).Add(ctx, 1,
					observability.String(observability.AttrToolName, name))
				obs.Warn(ctx, "tool call failed",
					observability.String(observability.AttrToolName, name),
					observability.String(observability.AttrToolError, err.Error()))
			}
			return
		}
		span.SetStatus(observability.StatusOK, "")
	}()

	def, ok := e.catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	if obs != nil {
		obs.Debug(ctx, "executing tool",
			observability.String(observability.AttrToolName, name),
			observability.String(observability.AttrToolInput, observability.TruncateStringDefault(utils.JSONToString(args))))
	}

	if err := def.validator.Validate(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	out, err := def.handler(ctx, args)
	if err != nil {
		if errors.Is(err, ErrInvalidArguments) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrToolFailed, err)
	}
	return out, nil
}

// errorMessage renders the model-facing error text.
func errorMessage(name string, err error) string {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return "Unknown tool: " + name
	case errors.Is(err, ErrInvalidArguments):
		return fmt.Sprintf("Invalid arguments for %s: %s", name, trimSentinel(err, ErrInvalidArguments))
	default:
		return fmt.Sprintf("Tool %s failed: %s", name, trimSentinel(err, ErrToolFailed))
	}
}

// trimSentinel drops the "sentinel: " prefix added when wrapping.
func trimSentinel(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
