package agent

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/tool"
)

// seenCall captures the provider state at call time.
type seenCall struct {
	method      string
	prompt      string
	system      string
	model       string
	temperature float64
	maxTokens   int
	tools       []string
}

type fakeProvider struct {
	ai.CallState
	name   string
	cfg    *ai.ProviderConfig
	chunks []string
	calls  []seenCall
}

func newFake(name string) *fakeProvider {
	return &fakeProvider{
		name:   name,
		cfg:    &ai.ProviderConfig{APIKey: "k", Model: "base-model", Temperature: 0.7},
		chunks: []string{"one ", "two ", "three"},
	}
}

func (p *fakeProvider) record(method, prompt, system string, tools *tool.Catalog) {
	call := seenCall{
		method:      method,
		prompt:      prompt,
		system:      system,
		model:       p.cfg.Model,
		temperature: p.cfg.Temperature,
		maxTokens:   p.cfg.MaxTokens,
	}
	if tools != nil {
		call.tools = tools.Names()
	}
	p.calls = append(p.calls, call)
}

func (p *fakeProvider) Name() string               { return p.name }
func (p *fakeProvider) Config() *ai.ProviderConfig { return p.cfg }

func (p *fakeProvider) Ask(_ context.Context, prompt, system string) string {
	p.record("ask", prompt, system, nil)
	return "answer"
}

func (p *fakeProvider) Stream(_ context.Context, prompt, system string) iter.Seq[string] {
	return func(yield func(string) bool) {
		p.record("stream", prompt, system, nil)
		for _, chunk := range p.chunks {
			if !yield(chunk) {
				return
			}
		}
	}
}

func (p *fakeProvider) AskWithTools(_ context.Context, prompt string, tools *tool.Catalog, system string, _ int) (string, []tool.CallRecord) {
	p.record("tools", prompt, system, tools)
	return "tooled", nil
}

type echoInput struct {
	Text string `json:"text"`
}

func echoTool(name string) *tool.ToolDef {
	return tool.MustNew(name, func(_ context.Context, in echoInput) (string, error) {
		return in.Text, nil
	})
}

func testCatalog() *tool.Catalog {
	return tool.NewCatalog(echoTool("read_file"), echoTool("write_file"), echoTool("reflect"))
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestRunner_RunAppliesAndRestoresOverrides(t *testing.T) {
	claude := newFake("claude")
	runner := NewRunner(map[string]ai.Provider{"claude": claude}, "claude")

	agent := AgentDef{
		Name:         "planner",
		Model:        "claude-opus",
		Temperature:  floatPtr(0.1),
		MaxTokens:    intPtr(512),
		AllowedTools: []string{},
	}
	text, err := runner.Run(context.Background(), agent, "plan it", "")
	require.NoError(t, err)
	assert.Equal(t, "answer", text)

	require.Len(t, claude.calls, 1)
	call := claude.calls[0]
	assert.Equal(t, "ask", call.method)
	assert.Equal(t, "claude-opus", call.model)
	assert.InDelta(t, 0.1, call.temperature, 1e-9)
	assert.Equal(t, 512, call.maxTokens)

	assert.Equal(t, "base-model", claude.cfg.Model)
	assert.InDelta(t, 0.7, claude.cfg.Temperature, 1e-9)
	assert.Zero(t, claude.cfg.MaxTokens)
}

func TestRunner_ToolSelection(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		wantCall string
		want     []string
	}{
		{name: "nil means all tools", allowed: nil, wantCall: "tools", want: []string{"read_file", "reflect", "write_file"}},
		{name: "empty means plain ask", allowed: []string{}, wantCall: "ask"},
		{name: "list filters", allowed: []string{"reflect", "missing"}, wantCall: "tools", want: []string{"reflect"}},
		{name: "only unknown falls back to ask", allowed: []string{"missing"}, wantCall: "ask"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake("openai")
			runner := NewRunner(map[string]ai.Provider{"openai": fake}, "openai", WithTools(testCatalog()))

			_, err := runner.Run(context.Background(), AgentDef{Name: "a", AllowedTools: tt.allowed}, "p", "")
			require.NoError(t, err)

			require.Len(t, fake.calls, 1)
			assert.Equal(t, tt.wantCall, fake.calls[0].method)
			assert.Equal(t, tt.want, fake.calls[0].tools)
		})
	}
}

func TestRunner_NoCatalogUsesAsk(t *testing.T) {
	fake := newFake("gemini")
	runner := NewRunner(map[string]ai.Provider{"gemini": fake}, "gemini")

	_, err := runner.Run(context.Background(), AgentDef{Name: "a"}, "p", "")
	require.NoError(t, err)
	assert.Equal(t, "ask", fake.calls[0].method)
}

func TestRunner_SystemPromptLayers(t *testing.T) {
	fake := newFake("claude")
	runner := NewRunner(map[string]ai.Provider{"claude": fake}, "claude", WithBasePrompt("Base rules."))

	agent := AgentDef{Name: "a", SystemPrompt: "  Be a planner.  ", AllowedTools: []string{}}
	_, err := runner.Run(context.Background(), agent, "p", "Repo: cascade")
	require.NoError(t, err)
	assert.Equal(t, "Base rules.\n\nBe a planner.\n\nRepo: cascade", fake.calls[0].system)

	_, err = runner.Run(context.Background(), AgentDef{Name: "b", AllowedTools: []string{}}, "p", "")
	require.NoError(t, err)
	assert.Equal(t, "Base rules.", fake.calls[1].system)
}

func TestRunner_ProviderResolution(t *testing.T) {
	claude := newFake("claude")
	gemini := newFake("gemini")
	runner := NewRunner(map[string]ai.Provider{"Claude": claude, "gemini": gemini}, "claude")

	_, err := runner.Run(context.Background(), AgentDef{Name: "a", Provider: "GEMINI", AllowedTools: []string{}}, "p", "")
	require.NoError(t, err)
	assert.Len(t, gemini.calls, 1)
	assert.Empty(t, claude.calls)

	_, err = runner.Run(context.Background(), AgentDef{Name: "a", AllowedTools: []string{}}, "p", "")
	require.NoError(t, err)
	assert.Len(t, claude.calls, 1)

	_, err = runner.Run(context.Background(), AgentDef{Name: "x", Provider: "openai"}, "p", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "claude, gemini")

	_, err = runner.Stream(context.Background(), AgentDef{Name: "x", Provider: "openai"}, "p", "")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestRunner_StreamOverridesWhileRanging(t *testing.T) {
	fake := newFake("claude")
	runner := NewRunner(map[string]ai.Provider{"claude": fake}, "claude")

	fragments, err := runner.Stream(context.Background(), AgentDef{Name: "a", Model: "fast"}, "p", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "base-model", fake.cfg.Model, "override must wait for ranging")

	var got string
	for fragment := range fragments {
		assert.Equal(t, "fast", fake.cfg.Model)
		got += fragment
	}
	assert.Equal(t, "one two three", got)
	assert.Equal(t, "base-model", fake.cfg.Model)
	assert.Equal(t, "ctx", fake.calls[0].system)
}

func TestRunner_StreamRestoresOnEarlyBreak(t *testing.T) {
	fake := newFake("claude")
	runner := NewRunner(map[string]ai.Provider{"claude": fake}, "claude")

	fragments, err := runner.Stream(context.Background(), AgentDef{Name: "a", Model: "fast", Temperature: floatPtr(0)}, "p", "")
	require.NoError(t, err)

	for range fragments {
		break
	}
	assert.Equal(t, "base-model", fake.cfg.Model)
	assert.InDelta(t, 0.7, fake.cfg.Temperature, 1e-9)
}

func TestRunner_StreamRestoresOnPanic(t *testing.T) {
	fake := newFake("claude")
	runner := NewRunner(map[string]ai.Provider{"claude": fake}, "claude")

	fragments, err := runner.Stream(context.Background(), AgentDef{Name: "a", Model: "fast"}, "p", "")
	require.NoError(t, err)

	assert.Panics(t, func() {
		for range fragments {
			panic("boom")
		}
	})
	assert.Equal(t, "base-model", fake.cfg.Model)
}

func TestRunner_Providers(t *testing.T) {
	runner := NewRunner(map[string]ai.Provider{"openai": newFake("openai"), "Claude": newFake("claude")}, "claude")
	assert.Equal(t, []string{"claude", "openai"}, runner.Providers())
}
