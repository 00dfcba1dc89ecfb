package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agentsYAML = `
reviewer:
  description: Review diffs
  provider: gemini
  temperature: 0.2
  max_tokens: 1024
  allowed_tools: []
planner:
  description: Plan features
  provider: claude
  model: claude-opus-4-1
  system_prompt: You are a planning assistant.
  allowed_tools:
    - read_file
    - write_file
free:
  system_prompt: Anything goes.
workflows:
  verify:
    test: go test ./...
broken: just a string
bad_types:
  temperature: [1, 2]
`

func TestParse(t *testing.T) {
	agents, err := Parse([]byte(agentsYAML))
	require.NoError(t, err)

	names := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"free", "planner", "reviewer"}, names)

	planner, ok := Find(agents, "planner")
	require.True(t, ok)
	assert.Equal(t, "claude", planner.Provider)
	assert.Equal(t, "claude-opus-4-1", planner.Model)
	assert.Equal(t, "You are a planning assistant.", planner.SystemPrompt)
	assert.Equal(t, []string{"read_file", "write_file"}, planner.AllowedTools)
	assert.Nil(t, planner.Temperature)

	reviewer, _ := Find(agents, "reviewer")
	require.NotNil(t, reviewer.AllowedTools)
	assert.Empty(t, reviewer.AllowedTools)
	require.NotNil(t, reviewer.Temperature)
	assert.InDelta(t, 0.2, *reviewer.Temperature, 1e-9)
	require.NotNil(t, reviewer.MaxTokens)
	assert.Equal(t, 1024, *reviewer.MaxTokens)

	free, _ := Find(agents, "free")
	assert.Nil(t, free.AllowedTools)
	assert.False(t, free.Restricted())

	_, ok = Find(agents, "workflows")
	assert.False(t, ok)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(agentsYAML), 0o600))

	agents, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, agents, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading agents file")
}

func TestSummary(t *testing.T) {
	tests := []struct {
		agent AgentDef
		want  string
	}{
		{AgentDef{Name: "bare"}, "bare"},
		{AgentDef{Name: "planner", Description: "Plan features"}, "planner  - Plan features"},
		{
			AgentDef{Name: "planner", Description: "Plan", Provider: "claude", Model: "opus", AllowedTools: []string{"a", "b"}},
			"planner  - Plan  [provider=claude, model=opus, tools=2]",
		},
		{AgentDef{Name: "quiet", AllowedTools: []string{}}, "quiet  [tools=0]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.agent.Summary())
	}
}
