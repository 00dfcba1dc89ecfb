package anthropic

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/tool"
)

const (
	// Name is the registry name of this adapter.
	Name = "claude"

	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens is sent when the config leaves MaxTokens at 0;
	// Anthropic requires max_tokens on every request.
	defaultMaxTokens = 2048

	// DefaultModel is used by the CLI when CLAUDE_MODEL is unset.
	DefaultModel = "claude-sonnet-4-5"
)

// Provider implements [ai.Provider] for Anthropic's Messages API.
type Provider struct {
	ai.CallState

	config *ai.ProviderConfig
	client *http.Client
}

// New returns a Provider over cfg using [ai.NewHTTPClient].
func New(cfg *ai.ProviderConfig) *Provider {
	return &Provider{config: cfg, client: ai.NewHTTPClient()}
}

// Factory adapts New to [ai.Factory].
func Factory(cfg *ai.ProviderConfig) (ai.Provider, error) {
	return New(cfg), nil
}

// WithHTTPClient replaces the HTTP client, for custom transports and tests.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.client = client
	return p
}

// Name implements [ai.Provider].
func (p *Provider) Name() string { return Name }

// Config implements [ai.Provider].
func (p *Provider) Config() *ai.ProviderConfig { return p.config }

// Ask implements [ai.Provider] by draining Stream.
func (p *Provider) Ask(ctx context.Context, prompt, system string) string {
	return ai.Collect(p.Stream(ctx, prompt, system))
}

// Stream implements [ai.Provider]. Text comes from content_block_delta
// events of type text_delta; input tokens from message_start and output
// tokens from message_delta.
func (p *Provider) Stream(ctx context.Context, prompt, system string) iter.Seq[string] {
	messages := []anthropicMessage{userText(prompt)}

	open := func(ctx context.Context) (io.ReadCloser, error) {
		if p.config.APIKey == "" {
			return nil, ai.ErrMissingAPIKey
		}
		request := p.newRequest(messages, nil, system)
		request.Stream = true

		// Empty apiKey: Anthropic authenticates via x-api-key, not Bearer.
		res, err := utils.DoPostStream(ctx, p.client, p.endpoint(), "", request, p.headers()...)
		if err != nil {
			return nil, err
		}
		return res.Body, nil
	}

	return ai.StreamSSE(ctx, &p.CallState, p.requestInfo(len(messages), 0), open, p.newDecoder)
}

// AskWithTools implements [ai.Provider].
func (p *Provider) AskWithTools(ctx context.Context, prompt string, tools *tool.Catalog, system string, maxRounds int) (string, []tool.CallRecord) {
	conv := &conversation{
		provider: p,
		system:   system,
		tools:    toolsToAnthropic(tools),
		messages: []anthropicMessage{userText(prompt)},
	}
	return ai.AskWithTools(ctx, &p.CallState, Name, conv, tools, maxRounds)
}

// newDecoder returns a stream decoder with fresh usage counters.
func (p *Provider) newDecoder() ai.EventDecoder {
	var usage ai.Usage

	return func(event utils.SSEEvent) (string, error) {
		parsed, err := unmarshalStreamEvent(event.Data)
		if err != nil {
			return "", err
		}

		switch parsed.Type {
		case "message_start":
			if parsed.Message != nil {
				usage.InputTokens = parsed.Message.Usage.InputTokens
				usage.OutputTokens = parsed.Message.Usage.OutputTokens
				p.RecordUsage(usage)
			}

		case "content_block_delta":
			if parsed.Delta != nil && parsed.Delta.Type == "text_delta" {
				return parsed.Delta.Text, nil
			}

		case "message_delta":
			if parsed.Usage != nil {
				usage.OutputTokens = parsed.Usage.OutputTokens
				p.RecordUsage(usage)
			}

		case "error":
			message := "unknown stream error"
			if parsed.Error != nil {
				message = parsed.Error.Type + ": " + parsed.Error.Message
			}
			return "", &ai.Error{Kind: ai.KindTransport, Provider: Name, Err: errors.New(message)}
		}

		return "", nil
	}
}

func (p *Provider) newRequest(messages []anthropicMessage, tools []anthropicTool, system string) anthropicRequest {
	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return anthropicRequest{
		Model:       p.config.Model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: p.config.Temperature,
		Tools:       tools,
	}
}

// headers returns the authentication and versioning headers every request
// carries.
func (p *Provider) headers() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.config.APIKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

func (p *Provider) endpoint() string {
	return strings.TrimSuffix(utils.FirstNonEmpty(p.config.BaseURL, defaultBaseURL), "/") + messagesEndpoint
}

func (p *Provider) requestInfo(messages, tools int) ai.RequestInfo {
	return ai.RequestInfo{
		Provider: Name,
		Model:    p.config.Model,
		Endpoint: p.endpoint(),
		Messages: messages,
		Tools:    tools,
	}
}

func userText(text string) anthropicMessage {
	return anthropicMessage{
		Role:    "user",
		Content: []anthropicContentBlock{{Type: "text", Text: text}},
	}
}

// toolsToAnthropic converts the catalog into Anthropic tool definitions.
func toolsToAnthropic(catalog *tool.Catalog) []anthropicTool {
	defs := catalog.Tools()
	if len(defs) == 0 {
		return nil
	}
	tools := make([]anthropicTool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, anthropicTool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		})
	}
	return tools
}
