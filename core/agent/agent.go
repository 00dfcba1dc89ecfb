// Package agent runs named agent definitions against the configured
// providers. An agent scopes the model, sampling settings, system prompt and
// tool set for one interaction and leaves the provider as it found it.
package agent

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// AgentDef describes a named agent.
//
// AllowedTools controls the tools the agent may call:
//   - nil: every tool in the runner's catalog
//   - empty, non-nil: no tools, the prompt goes through a plain Ask
//   - a list: only the named tools
type AgentDef struct {
	Name         string
	Description  string
	Provider     string
	Model        string
	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string
	AllowedTools []string
}

// Summary renders a one-line listing such as
// "planner  - Plan features  [provider=claude, model=claude-opus-4-1, tools=2]".
func (a AgentDef) Summary() string {
	parts := []string{a.Name}
	if a.Description != "" {
		parts = append(parts, "- "+a.Description)
	}

	var overrides []string
	if a.Provider != "" {
		overrides = append(overrides, "provider="+a.Provider)
	}
	if a.Model != "" {
		overrides = append(overrides, "model="+a.Model)
	}
	if a.AllowedTools != nil {
		overrides = append(overrides, fmt.Sprintf("tools=%d", len(a.AllowedTools)))
	}
	if len(overrides) > 0 {
		parts = append(parts, "["+strings.Join(overrides, ", ")+"]")
	}
	return strings.Join(parts, "  ")
}

// Restricted reports whether the agent limits its tool set.
func (a AgentDef) Restricted() bool {
	return a.AllowedTools != nil
}

type agentEntry struct {
	Description  string    `yaml:"description"`
	Provider     string    `yaml:"provider"`
	Model        string    `yaml:"model"`
	Temperature  *float64  `yaml:"temperature"`
	MaxTokens    *int      `yaml:"max_tokens"`
	SystemPrompt string    `yaml:"system_prompt"`
	AllowedTools *[]string `yaml:"allowed_tools"`
}

// workflowsKey is reserved for workflow definitions and never names an agent.
const workflowsKey = "workflows"

// Parse reads agent definitions from YAML. Top-level keys are agent names:
//
//	planner:
//	  description: Plan features
//	  provider: claude
//	  system_prompt: You are a planning assistant.
//	  allowed_tools: [read_file, write_file]
//
// Entries that are not mappings or fail to decode are skipped. The result is
// sorted by name.
func Parse(data []byte) ([]AgentDef, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing agents: %w", err)
	}

	agents := make([]AgentDef, 0, len(doc))
	for name, node := range doc {
		if name == workflowsKey || node.Kind != yaml.MappingNode {
			continue
		}

		var entry agentEntry
		if err := node.Decode(&entry); err != nil {
			continue
		}

		def := AgentDef{
			Name:         name,
			Description:  entry.Description,
			Provider:     entry.Provider,
			Model:        entry.Model,
			Temperature:  entry.Temperature,
			MaxTokens:    entry.MaxTokens,
			SystemPrompt: entry.SystemPrompt,
		}
		if entry.AllowedTools != nil {
			def.AllowedTools = append(make([]string, 0, len(*entry.AllowedTools)), *entry.AllowedTools...)
		}
		agents = append(agents, def)
	}

	slices.SortFunc(agents, func(a, b AgentDef) int { return strings.Compare(a.Name, b.Name) })
	return agents, nil
}

// LoadFile reads and parses an agents YAML file.
func LoadFile(path string) ([]AgentDef, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("reading agents file: %w", err)
	}
	return Parse(data)
}

// Find returns the agent with the given name.
func Find(agents []AgentDef, name string) (AgentDef, bool) {
	for _, a := range agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentDef{}, false
}
