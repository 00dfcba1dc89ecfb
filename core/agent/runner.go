package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/observability"
	"github.com/leofalp/cascade/providers/tool"
)

// ErrProviderUnavailable is returned when an agent names a provider the
// runner does not hold.
var ErrProviderUnavailable = errors.New("provider not available")

// Runner executes agent definitions against a fixed set of providers.
// Overrides are applied to the shared provider config, so one Runner must
// not run two agents on the same provider concurrently.
type Runner struct {
	providers       map[string]ai.Provider
	defaultProvider string
	tools           *tool.Catalog
	basePrompt      string
	maxRounds       int
}

// Option configures a Runner.
type Option func(*Runner)

// WithTools sets the catalog agents draw their tools from.
func WithTools(catalog *tool.Catalog) Option {
	return func(r *Runner) {
		r.tools = catalog
	}
}

// WithBasePrompt sets the system prompt every agent prompt is layered on.
func WithBasePrompt(prompt string) Option {
	return func(r *Runner) {
		r.basePrompt = prompt
	}
}

// WithMaxRounds bounds tool-calling runs. Non-positive values use
// ai.DefaultMaxRounds.
func WithMaxRounds(n int) Option {
	return func(r *Runner) {
		r.maxRounds = n
	}
}

// NewRunner returns a Runner over providers keyed by name. Agents without a
// provider use defaultProvider.
func NewRunner(providers map[string]ai.Provider, defaultProvider string, opts ...Option) *Runner {
	r := &Runner{
		providers:       make(map[string]ai.Provider, len(providers)),
		defaultProvider: defaultProvider,
	}
	for name, provider := range providers {
		r.providers[strings.ToLower(name)] = provider
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends prompt under the agent's settings and returns the full response.
// When the agent has tools available the tool-calling loop is used. Provider
// failures come back as "Error: ..." text like every adapter call; the
// returned error only covers an unresolvable provider.
func (r *Runner) Run(ctx context.Context, agent AgentDef, prompt, extraContext string) (string, error) {
	provider, err := r.Resolve(agent)
	if err != nil {
		return "", err
	}

	tools := r.toolsFor(ctx, agent)
	ctx, span := observability.StartSpan(ctx, observability.SpanAgentRun,
		observability.String(observability.AttrAgentName, agent.Name),
		observability.String(observability.AttrLLMProvider, provider.Name()),
		observability.Int(observability.AttrAgentAllowedTools, tools.Size()),
	)
	defer span.End()

	restore := provider.Config().Override(overridesFor(agent))
	defer restore()
	span.SetAttributes(observability.String(observability.AttrLLMModel, provider.Config().Model))

	system := r.systemPrompt(agent, extraContext)

	var text string
	if tools.Size() > 0 {
		var calls []tool.CallRecord
		text, calls = provider.AskWithTools(ctx, prompt, tools, system, r.maxRounds)
		span.SetAttributes(observability.Int("tool.calls", len(calls)))
	} else {
		text = provider.Ask(ctx, prompt, system)
	}

	if err := provider.LastError(); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
	} else {
		span.SetStatus(observability.StatusOK, "")
	}
	return text, nil
}

// Stream is the streaming form of Run. Tools are not offered while
// streaming. The overrides are applied when the sequence is ranged and
// restored when it ends, including when the caller stops early.
func (r *Runner) Stream(ctx context.Context, agent AgentDef, prompt, extraContext string) (iter.Seq[string], error) {
	provider, err := r.Resolve(agent)
	if err != nil {
		return nil, err
	}
	system := r.systemPrompt(agent, extraContext)

	return func(yield func(string) bool) {
		ctx, span := observability.StartSpan(ctx, observability.SpanAgentRun,
			observability.String(observability.AttrAgentName, agent.Name),
			observability.String(observability.AttrLLMProvider, provider.Name()),
			observability.Bool(observability.AttrLLMStream, true),
		)
		defer span.End()

		restore := provider.Config().Override(overridesFor(agent))
		defer restore()

		for fragment := range provider.Stream(ctx, prompt, system) {
			if !yield(fragment) {
				return
			}
		}
	}, nil
}

// Providers returns the sorted names of the providers the runner holds.
func (r *Runner) Providers() []string {
	return slices.Sorted(maps.Keys(r.providers))
}

// Resolve returns the provider agent runs on: its own, or the default.
func (r *Runner) Resolve(agent AgentDef) (ai.Provider, error) {
	name := agent.Provider
	if name == "" {
		name = r.defaultProvider
	}
	provider, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("agent %q requires provider %q: %w (have: %s)",
			agent.Name, name, ErrProviderUnavailable, strings.Join(r.Providers(), ", "))
	}
	return provider, nil
}

// toolsFor narrows the catalog to what the agent may call. The result is
// never nil.
func (r *Runner) toolsFor(ctx context.Context, agent AgentDef) *tool.Catalog {
	if r.tools == nil || (agent.Restricted() && len(agent.AllowedTools) == 0) {
		return tool.NewCatalog()
	}
	if !agent.Restricted() {
		return r.tools.Clone()
	}

	filtered, missing := r.tools.Filter(agent.AllowedTools)
	if len(missing) > 0 {
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Warn(ctx, "agent allows unknown tools",
				observability.String(observability.AttrAgentName, agent.Name),
				observability.String("tool.missing", strings.Join(missing, ", ")),
			)
		}
	}
	return filtered
}

// systemPrompt layers the base prompt, the agent prompt and the extra
// context, skipping empty parts.
func (r *Runner) systemPrompt(agent AgentDef, extraContext string) string {
	var layers []string
	for _, layer := range []string{r.basePrompt, agent.SystemPrompt, extraContext} {
		if layer = strings.TrimSpace(layer); layer != "" {
			layers = append(layers, layer)
		}
	}
	return strings.Join(layers, "\n\n")
}

func overridesFor(agent AgentDef) ai.Overrides {
	return ai.Overrides{
		Model:       agent.Model,
		Temperature: agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	}
}
