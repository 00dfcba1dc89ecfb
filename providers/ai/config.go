package ai

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultTemperature is used when no temperature is configured.
const DefaultTemperature = 0.7

// ProviderConfig is the mutable configuration of one adapter instance.
// MaxTokens 0 means the vendor default.
type ProviderConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// Overrides are per-call replacements for ProviderConfig fields. Zero or nil
// fields leave the current value alone.
type Overrides struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// Override applies o in place and returns a closure restoring the previous
// values. Callers should defer it right away:
//
//	restore := cfg.Override(ai.Overrides{Model: "claude-haiku"})
//	defer restore()
func (c *ProviderConfig) Override(o Overrides) (restore func()) {
	saved := *c

	if o.Model != "" {
		c.Model = o.Model
	}
	if o.Temperature != nil {
		c.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		c.MaxTokens = *o.MaxTokens
	}

	return func() {
		c.Model = saved.Model
		c.Temperature = saved.Temperature
		c.MaxTokens = saved.MaxTokens
	}
}

// Validate reports a missing API key or model.
func (c *ProviderConfig) Validate() error {
	if c == nil {
		return errors.New("provider config is nil")
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("model is not set")
	}
	return nil
}

// ConfigFromEnv reads <PREFIX>_API_KEY, <PREFIX>_MODEL, <PREFIX>_BASE_URL,
// <PREFIX>_TEMPERATURE and <PREFIX>_MAX_TOKENS. Unset values fall back to
// defaultModel, an empty base URL (the adapter default), DefaultTemperature
// and 0.
func ConfigFromEnv(prefix, defaultModel string) (*ProviderConfig, error) {
	prefix = strings.ToUpper(strings.TrimSuffix(prefix, "_"))

	cfg := &ProviderConfig{
		APIKey:      os.Getenv(prefix + "_API_KEY"),
		Model:       os.Getenv(prefix + "_MODEL"),
		BaseURL:     os.Getenv(prefix + "_BASE_URL"),
		Temperature: DefaultTemperature,
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	if raw := os.Getenv(prefix + "_TEMPERATURE"); raw != "" {
		temperature, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_TEMPERATURE %q: %w", prefix, raw, err)
		}
		cfg.Temperature = temperature
	}

	if raw := os.Getenv(prefix + "_MAX_TOKENS"); raw != "" {
		maxTokens, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_MAX_TOKENS %q: %w", prefix, raw, err)
		}
		if maxTokens < 0 {
			return nil, fmt.Errorf("invalid %s_MAX_TOKENS %d: must not be negative", prefix, maxTokens)
		}
		cfg.MaxTokens = maxTokens
	}

	return cfg, nil
}
