package observability

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAttribute_Constructors(t *testing.T) {
	tests := []struct {
		name  string
		attr  Attribute
		key   string
		value any
	}{
		{"string", String("k", "v"), "k", "v"},
		{"int", Int("count", 42), "count", 42},
		{"int64", Int64("big", 1099511627776), "big", int64(1099511627776)},
		{"float64", Float64("rate", 0.5), "rate", 0.5},
		{"bool", Bool("flag", true), "flag", true},
		{"duration", Duration("latency", 5*time.Second), "latency", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("Expected key %q, got %q", tt.key, tt.attr.Key)
			}
			if tt.attr.Value != tt.value {
				t.Errorf("Expected value %v, got %v", tt.value, tt.attr.Value)
			}
		})
	}
}

func TestAttribute_Error(t *testing.T) {
	attr := Error(errors.New("test error"))
	if attr.Key != AttrError || attr.Value != "test error" {
		t.Errorf("Unexpected error attribute: %+v", attr)
	}

	attr = Error(nil)
	if attr.Value != "" {
		t.Errorf("Expected empty value for nil error, got %v", attr.Value)
	}
}

func TestStatusCode_String(t *testing.T) {
	if StatusOK.String() != "ok" || StatusError.String() != "error" || StatusUnset.String() != "unset" {
		t.Error("Unexpected status code names")
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("Expected untouched string, got %q", got)
	}

	got := TruncateString(strings.Repeat("x", 20), 5)
	if !strings.HasPrefix(got, "xxxxx... (truncated, total: 20 chars)") {
		t.Errorf("Unexpected truncation: %q", got)
	}

	long := strings.Repeat("y", DefaultMaxStringLength+1)
	if got := TruncateString(long, 0); !strings.Contains(got, "truncated") {
		t.Errorf("Expected default limit to apply, got %d chars", len(got))
	}
}
