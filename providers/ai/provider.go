package ai

import (
	"context"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/cascade/providers/tool"
)

const (
	// DefaultMaxRounds bounds AskWithTools when maxRounds is not positive.
	DefaultMaxRounds = 5

	// DefaultTimeout is the per-request timeout of adapter HTTP clients.
	DefaultTimeout = 60 * time.Second
)

// Provider is the uniform contract every vendor adapter satisfies.
//
// Adapters hold no locks: one instance serves one call at a time. Use one
// instance per goroutine, or serialize calls externally.
type Provider interface {
	// Name returns the registry name of the adapter ("anthropic", "gemini", ...).
	Name() string

	// Config returns the live configuration. Mutations apply to the next call.
	Config() *ProviderConfig

	// Ask returns the complete response text. It equals the concatenation of
	// the fragments Stream yields for the same arguments.
	Ask(ctx context.Context, prompt, system string) string

	// Stream returns a lazy sequence of text fragments. No request is made
	// until the sequence is ranged; each range issues a fresh request. A
	// failure ends the sequence with a single "Error: ..." fragment.
	Stream(ctx context.Context, prompt, system string) iter.Seq[string]

	// AskWithTools runs the tool-calling loop for at most maxRounds round
	// trips and returns the final text with one record per executed call.
	// Exhausting the rounds returns "" and the accumulated log.
	AskWithTools(ctx context.Context, prompt string, tools *tool.Catalog, system string, maxRounds int) (string, []tool.CallRecord)

	// LastUsage reports the token usage of the most recent call, if the
	// vendor sent any.
	LastUsage() (Usage, bool)

	// LastError returns the error behind the most recent "Error: ..." output,
	// or nil when the last call succeeded.
	LastError() error
}

// Factory builds a Provider from a configuration.
type Factory func(cfg *ProviderConfig) (Provider, error)

// Collect drains fragments and returns their concatenation.
func Collect(fragments iter.Seq[string]) string {
	var builder strings.Builder
	for fragment := range fragments {
		builder.WriteString(fragment)
	}
	return builder.String()
}

// NormalizeRounds maps a non-positive maxRounds to DefaultMaxRounds.
func NormalizeRounds(maxRounds int) int {
	if maxRounds <= 0 {
		return DefaultMaxRounds
	}
	return maxRounds
}

// NewHTTPClient returns the client adapters own by default: the shared
// pooled transport with DefaultTimeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
