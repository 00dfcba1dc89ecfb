package openai

import (
	"context"
	"encoding/json"
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
	// Name is the registry name of the OpenAI adapter.
	Name = "openai"

	// DefaultModel is used by the CLI when OPENAI_MODEL is unset.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the OpenAI API base.
	DefaultBaseURL = "https://api.openai.com/v1"

	chatCompletionsEndpoint = "/chat/completions"
)

// Compatible implements [ai.Provider] for any vendor speaking the OpenAI
// Chat Completions format.
type Compatible struct {
	ai.CallState

	name           string
	defaultBaseURL string
	extraHeaders   []utils.HeaderOption
	config         *ai.ProviderConfig
	client         *http.Client
}

// New returns the OpenAI adapter.
func New(cfg *ai.ProviderConfig) *Compatible {
	return NewCompatible(Name, DefaultBaseURL, cfg)
}

// Factory adapts New to [ai.Factory].
func Factory(cfg *ai.ProviderConfig) (ai.Provider, error) {
	return New(cfg), nil
}

// NewCompatible returns an adapter named name that talks to baseURL unless
// cfg.BaseURL overrides it. headers are added to every request after the
// Bearer authorization.
func NewCompatible(name, baseURL string, cfg *ai.ProviderConfig, headers ...utils.HeaderOption) *Compatible {
	return &Compatible{
		name:           name,
		defaultBaseURL: baseURL,
		extraHeaders:   headers,
		config:         cfg,
		client:         ai.NewHTTPClient(),
	}
}

// WithHTTPClient replaces the HTTP client, for custom transports and tests.
func (c *Compatible) WithHTTPClient(client *http.Client) *Compatible {
	c.client = client
	return c
}

// Name implements [ai.Provider].
func (c *Compatible) Name() string { return c.name }

// Config implements [ai.Provider].
func (c *Compatible) Config() *ai.ProviderConfig { return c.config }

// Ask implements [ai.Provider] by draining Stream.
func (c *Compatible) Ask(ctx context.Context, prompt, system string) string {
	return ai.Collect(c.Stream(ctx, prompt, system))
}

// Stream implements [ai.Provider]. Requests set stream_options.include_usage
// so the final chunk carries usage; text is choices[0].delta.content.
func (c *Compatible) Stream(ctx context.Context, prompt, system string) iter.Seq[string] {
	messages := initialMessages(prompt, system)

	open := func(ctx context.Context) (io.ReadCloser, error) {
		if c.config.APIKey == "" {
			return nil, ai.ErrMissingAPIKey
		}
		request := c.newRequest(messages, nil)
		request.Stream = true
		request.StreamOptions = &streamOptions{IncludeUsage: true}

		res, err := utils.DoPostStream(ctx, c.client, c.endpoint(), c.config.APIKey, request, c.extraHeaders...)
		if err != nil {
			return nil, err
		}
		return res.Body, nil
	}

	return ai.StreamSSE(ctx, &c.CallState, c.requestInfo(len(messages), 0), open, c.newDecoder)
}

// AskWithTools implements [ai.Provider].
func (c *Compatible) AskWithTools(ctx context.Context, prompt string, tools *tool.Catalog, system string, maxRounds int) (string, []tool.CallRecord) {
	conv := &conversation{
		provider: c,
		tools:    toolsToChat(tools),
		messages: initialMessages(prompt, system),
	}
	return ai.AskWithTools(ctx, &c.CallState, c.name, conv, tools, maxRounds)
}

func (c *Compatible) newDecoder() ai.EventDecoder {
	return func(event utils.SSEEvent) (string, error) {
		var chunk chatCompletionStreamChunk
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			return "", err
		}

		if chunk.Error != nil {
			return "", &ai.Error{Kind: ai.KindTransport, Provider: c.name, Err: errors.New(chunk.Error.Message)}
		}

		if chunk.Usage != nil {
			c.RecordUsage(ai.Usage{InputTokens: chunk.Usage.PromptTokens, OutputTokens: chunk.Usage.CompletionTokens})
		}

		if len(chunk.Choices) == 0 {
			return "", nil
		}
		return chunk.Choices[0].Delta.Content, nil
	}
}

func (c *Compatible) newRequest(messages []chatMessage, tools []chatTool) chatCompletionRequest {
	return chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Tools:       tools,
	}
}

func (c *Compatible) endpoint() string {
	return strings.TrimSuffix(utils.FirstNonEmpty(c.config.BaseURL, c.defaultBaseURL), "/") + chatCompletionsEndpoint
}

func (c *Compatible) requestInfo(messages, tools int) ai.RequestInfo {
	return ai.RequestInfo{
		Provider: c.name,
		Model:    c.config.Model,
		Endpoint: c.endpoint(),
		Messages: messages,
		Tools:    tools,
	}
}

func initialMessages(prompt, system string) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: utils.Ptr(system)})
	}
	return append(messages, chatMessage{Role: "user", Content: utils.Ptr(prompt)})
}

// toolsToChat wraps each tool as {type:"function", function:{...}}.
func toolsToChat(catalog *tool.Catalog) []chatTool {
	defs := catalog.Tools()
	if len(defs) == 0 {
		return nil
	}
	tools := make([]chatTool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return tools
}
