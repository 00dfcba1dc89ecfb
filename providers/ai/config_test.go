package ai

import (
	"errors"
	"testing"
)

// ========== Override ==========

// TestOverride_RestoresPreviousValues verifies that the restore closure puts
// back every overridden field.
func TestOverride_RestoresPreviousValues(t *testing.T) {
	cfg := &ProviderConfig{APIKey: "k", Model: "base", Temperature: 0.7, MaxTokens: 100}

	temperature := 0.1
	maxTokens := 50
	restore := cfg.Override(Overrides{Model: "agent", Temperature: &temperature, MaxTokens: &maxTokens})

	if cfg.Model != "agent" || cfg.Temperature != 0.1 || cfg.MaxTokens != 50 {
		t.Fatalf("override not applied: %+v", cfg)
	}

	restore()
	if *cfg != (ProviderConfig{APIKey: "k", Model: "base", Temperature: 0.7, MaxTokens: 100}) {
		t.Errorf("restore did not reset config: %+v", cfg)
	}
}

// TestOverride_ZeroFieldsKeepValues verifies that empty overrides are no-ops.
func TestOverride_ZeroFieldsKeepValues(t *testing.T) {
	cfg := &ProviderConfig{Model: "base", Temperature: 0.3}
	restore := cfg.Override(Overrides{})
	defer restore()

	if cfg.Model != "base" || cfg.Temperature != 0.3 {
		t.Errorf("empty override changed config: %+v", cfg)
	}
}

// TestOverride_RestoresOnPanic verifies the deferred restore runs when the
// scoped call panics.
func TestOverride_RestoresOnPanic(t *testing.T) {
	cfg := &ProviderConfig{Model: "base"}

	func() {
		defer func() { _ = recover() }()
		restore := cfg.Override(Overrides{Model: "agent"})
		defer restore()
		panic("boom")
	}()

	if cfg.Model != "base" {
		t.Errorf("expected model restored after panic, got %q", cfg.Model)
	}
}

// ========== ConfigFromEnv ==========

// TestConfigFromEnv_ReadsPrefixedVariables verifies every variable is read.
func TestConfigFromEnv_ReadsPrefixedVariables(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "secret")
	t.Setenv("CLAUDE_MODEL", "claude-test")
	t.Setenv("CLAUDE_BASE_URL", "http://localhost:9999")
	t.Setenv("CLAUDE_TEMPERATURE", "0.25")
	t.Setenv("CLAUDE_MAX_TOKENS", "512")

	cfg, err := ConfigFromEnv("claude_", "default-model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ProviderConfig{APIKey: "secret", Model: "claude-test", BaseURL: "http://localhost:9999", Temperature: 0.25, MaxTokens: 512}
	if *cfg != want {
		t.Errorf("expected %+v, got %+v", want, *cfg)
	}
}

// TestConfigFromEnv_Defaults verifies fallbacks when nothing is set.
func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("UNSET_TEST_API_KEY", "")
	t.Setenv("UNSET_TEST_MODEL", "")

	cfg, err := ConfigFromEnv("UNSET_TEST", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "fallback" || cfg.Temperature != DefaultTemperature || cfg.MaxTokens != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !errors.Is(cfg.Validate(), ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", cfg.Validate())
	}
}

// TestConfigFromEnv_InvalidNumbers verifies parse failures are reported.
func TestConfigFromEnv_InvalidNumbers(t *testing.T) {
	t.Setenv("BAD_TEMPERATURE", "warm")
	if _, err := ConfigFromEnv("BAD", "m"); err == nil {
		t.Error("expected error for invalid temperature")
	}

	t.Setenv("BAD_TEMPERATURE", "")
	t.Setenv("BAD_MAX_TOKENS", "-3")
	if _, err := ConfigFromEnv("BAD", "m"); err == nil {
		t.Error("expected error for negative max tokens")
	}
}
