package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/ai/anthropic"
	"github.com/leofalp/cascade/providers/ai/gemini"
	"github.com/leofalp/cascade/providers/ai/openai"
	"github.com/leofalp/cascade/providers/ai/openrouter"
	"github.com/leofalp/cascade/providers/observability"
	"github.com/leofalp/cascade/providers/tool"
	"github.com/leofalp/cascade/providers/tool/fileops"
	"github.com/leofalp/cascade/providers/tool/reflection"
	"github.com/leofalp/cascade/providers/tool/webfetch"
)

type providerEntry struct {
	name         string
	envPrefix    string
	defaultModel string
	factory      ai.Factory
}

var providerEntries = []providerEntry{
	{name: anthropic.Name, envPrefix: "CLAUDE", defaultModel: anthropic.DefaultModel, factory: anthropic.Factory},
	{name: gemini.Name, envPrefix: "GEMINI", defaultModel: gemini.DefaultModel, factory: gemini.Factory},
	{name: openai.Name, envPrefix: "OPENAI", defaultModel: openai.DefaultModel, factory: openai.Factory},
	{name: openrouter.Name, envPrefix: "OPENROUTER", defaultModel: openrouter.DefaultModel, factory: openrouter.Factory},
}

var providerNames = func() []string {
	names := make([]string, len(providerEntries))
	for i, entry := range providerEntries {
		names[i] = entry.name
	}
	return names
}()

// buildProviders registers every adapter and instantiates those whose
// configuration is complete. The default provider must be among them.
func buildProviders(ctx context.Context, registry *ai.Registry, defaultProvider string) (map[string]ai.Provider, error) {
	observer := observability.ObserverFromContext(ctx)
	providers := make(map[string]ai.Provider)

	for _, entry := range providerEntries {
		if err := registry.Register(entry.name, entry.factory); err != nil {
			return nil, err
		}

		cfg, err := ai.ConfigFromEnv(entry.envPrefix, entry.defaultModel)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			if observer != nil {
				observer.Debug(ctx, "provider skipped",
					observability.String(observability.AttrLLMProvider, entry.name),
					observability.Error(err),
				)
			}
			continue
		}

		provider, err := registry.New(entry.name, cfg)
		if err != nil {
			return nil, err
		}
		providers[entry.name] = provider
	}

	if _, ok := providers[strings.ToLower(defaultProvider)]; !ok {
		return nil, fmt.Errorf("provider %q is not configured: set %s", defaultProvider, apiKeyVar(defaultProvider))
	}
	return providers, nil
}

func apiKeyVar(name string) string {
	for _, entry := range providerEntries {
		if entry.name == name {
			return entry.envPrefix + "_API_KEY"
		}
	}
	return "one of the " + strings.Join(providerNames, ", ") + " API keys"
}

// builtinTools returns the catalog offered to tool-enabled agents.
func builtinTools(root string) *tool.Catalog {
	ops := &fileops.Ops{Root: root}
	catalog := tool.NewCatalog(ops.Tools()...)
	catalog.Add(
		reflection.New(&reflection.Log{}),
		webfetch.New(nil),
	)
	return catalog
}
