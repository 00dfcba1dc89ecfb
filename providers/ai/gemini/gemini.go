package gemini

import (
	"context"
	"encoding/json"
	"fmt"
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
	Name = "gemini"

	// DefaultModel is used by the CLI when GEMINI_MODEL is unset.
	DefaultModel = "gemini-2.5-flash"

	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultMaxTokens = 2048

	// systemAck answers the priming system turn.
	systemAck = "Understood."
)

// Provider implements [ai.Provider] for the Gemini API.
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

// Stream implements [ai.Provider] over streamGenerateContent?alt=sse. Each
// chunk's candidates[0] text parts are yielded; the latest usageMetadata wins.
func (p *Provider) Stream(ctx context.Context, prompt, system string) iter.Seq[string] {
	contents := initialContents(prompt, system)

	open := func(ctx context.Context) (io.ReadCloser, error) {
		if p.config.APIKey == "" {
			return nil, ai.ErrMissingAPIKey
		}
		res, err := utils.DoPostStream(ctx, p.client, p.endpoint("streamGenerateContent")+"?alt=sse", "", p.newRequest(contents, nil), p.headers()...)
		if err != nil {
			return nil, err
		}
		return res.Body, nil
	}

	return ai.StreamSSE(ctx, &p.CallState, p.requestInfo("streamGenerateContent", len(contents), 0), open, p.newDecoder)
}

// AskWithTools implements [ai.Provider].
func (p *Provider) AskWithTools(ctx context.Context, prompt string, tools *tool.Catalog, system string, maxRounds int) (string, []tool.CallRecord) {
	conv := &conversation{
		provider: p,
		tools:    toolsToGemini(tools),
		contents: initialContents(prompt, system),
	}
	return ai.AskWithTools(ctx, &p.CallState, Name, conv, tools, maxRounds)
}

func (p *Provider) newDecoder() ai.EventDecoder {
	return func(event utils.SSEEvent) (string, error) {
		var chunk generateContentResponse
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			return "", err
		}

		if chunk.Error != nil {
			return "", &ai.Error{
				Kind:       ai.KindStatus,
				Provider:   Name,
				StatusCode: chunk.Error.Code,
				Err:        fmt.Errorf("%s: %s", chunk.Error.Status, chunk.Error.Message),
			}
		}

		if usage := chunk.UsageMetadata; usage != nil {
			p.RecordUsage(ai.Usage{InputTokens: usage.PromptTokenCount, OutputTokens: usage.CandidatesTokenCount})
		}

		first := chunk.firstContent()
		if first == nil {
			return "", nil
		}
		var text strings.Builder
		for _, part := range first.Parts {
			if !part.Thought {
				text.WriteString(part.Text)
			}
		}
		return text.String(), nil
	}
}

func (p *Provider) newRequest(contents []content, tools []toolGroup) generateContentRequest {
	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return generateContentRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     p.config.Temperature,
			MaxOutputTokens: maxTokens,
		},
		Tools: tools,
	}
}

func (p *Provider) headers() []utils.HeaderOption {
	return []utils.HeaderOption{{Key: "x-goog-api-key", Value: p.config.APIKey}}
}

// endpoint returns {base}/models/{model}:{method}.
func (p *Provider) endpoint(method string) string {
	base := strings.TrimSuffix(utils.FirstNonEmpty(p.config.BaseURL, defaultBaseURL), "/")
	return fmt.Sprintf("%s/models/%s:%s", base, p.config.Model, method)
}

func (p *Provider) requestInfo(method string, contents, tools int) ai.RequestInfo {
	return ai.RequestInfo{
		Provider: Name,
		Model:    p.config.Model,
		Endpoint: p.endpoint(method),
		Messages: contents,
		Tools:    tools,
	}
}

// initialContents builds the opening history. A system prompt becomes a
// user turn followed by a synthetic model acknowledgement.
func initialContents(prompt, system string) []content {
	contents := make([]content, 0, 3)
	if system != "" {
		contents = append(contents,
			content{Role: "user", Parts: []part{{Text: system}}},
			content{Role: "model", Parts: []part{{Text: systemAck}}},
		)
	}
	return append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})
}

// toolsToGemini wraps the catalog into a single function_declarations group.
func toolsToGemini(catalog *tool.Catalog) []toolGroup {
	defs := catalog.Tools()
	if len(defs) == 0 {
		return nil
	}
	declarations := make([]functionDeclaration, 0, len(defs))
	for _, def := range defs {
		declarations = append(declarations, functionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return []toolGroup{{FunctionDeclarations: declarations}}
}
