// Package openrouter provides the OpenRouter adapter: the OpenAI-compatible
// implementation pointed at openrouter.ai with its attribution headers.
package openrouter

import (
	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/ai/openai"
)

const (
	// Name is the registry name of this adapter.
	Name = "openrouter"

	// DefaultModel is used by the CLI when OPENROUTER_MODEL is unset.
	DefaultModel = "qwen/qwen-2.5-coder-32b-instruct"

	// DefaultBaseURL is the OpenRouter API base.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	referer = "https://github.com/leofalp/cascade"
	title   = "cascade"
)

// New returns the OpenRouter adapter.
func New(cfg *ai.ProviderConfig) *openai.Compatible {
	return openai.NewCompatible(Name, DefaultBaseURL, cfg,
		utils.HeaderOption{Key: "HTTP-Referer", Value: referer},
		utils.HeaderOption{Key: "X-Title", Value: title},
	)
}

// Factory adapts New to [ai.Factory].
func Factory(cfg *ai.ProviderConfig) (ai.Provider, error) {
	return New(cfg), nil
}
