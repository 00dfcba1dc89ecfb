package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/tool"
)

// conversation is the Gemini side of [ai.RunToolLoop].
type conversation struct {
	provider *Provider
	tools    []toolGroup
	contents []content
}

// Send implements [ai.Conversation] against generateContent. Any
// functionCall part in candidates[0] asks for a tool round.
func (c *conversation) Send(ctx context.Context) (ai.ToolTurn, error) {
	p := c.provider
	if p.config.APIKey == "" {
		return ai.ToolTurn{}, ai.NewError(Name, ai.ErrMissingAPIKey)
	}

	ctx, finish := ai.StartRequest(ctx, p.requestInfo("generateContent", len(c.contents), len(c.tools)))

	request := p.newRequest(c.contents, c.tools)
	_, resp, err := utils.DoPostSync[generateContentResponse](ctx, p.client, p.endpoint("generateContent"), "", request, p.headers()...)
	if err != nil {
		aiErr := ai.NewError(Name, err)
		finish(nil, aiErr)
		return ai.ToolTurn{}, aiErr
	}

	turn := responseToTurn(resp)
	finish(turn.Usage, nil)
	return turn, nil
}

// Append implements [ai.Conversation]: the model's content goes back as
// sent, followed by one user turn of functionResponse parts.
func (c *conversation) Append(turn ai.ToolTurn, results []ai.ToolOutcome) {
	if modelTurn, ok := turn.Raw.(content); ok {
		c.contents = append(c.contents, modelTurn)
	}

	parts := make([]part, 0, len(results))
	for _, result := range results {
		response := json.RawMessage(result.Output)
		if !json.Valid(response) {
			response = json.RawMessage(utils.JSONToString(map[string]string{"result": result.Output}))
		}
		parts = append(parts, part{FunctionResponse: &functionResponse{
			ID:       vendorID(result.Call.ID),
			Name:     result.Call.Name,
			Response: response,
		}})
	}
	c.contents = append(c.contents, content{Role: "user", Parts: parts})
}

// syntheticPrefix marks ids generated here rather than sent by Gemini.
const syntheticPrefix = "call_"

// vendorID returns the id to echo back: only ids Gemini sent itself.
func vendorID(id string) string {
	if strings.HasPrefix(id, syntheticPrefix) {
		return ""
	}
	return id
}

func responseToTurn(resp *generateContentResponse) ai.ToolTurn {
	turn := ai.ToolTurn{}
	if usage := resp.UsageMetadata; usage != nil {
		turn.Usage = &ai.Usage{InputTokens: usage.PromptTokenCount, OutputTokens: usage.CandidatesTokenCount}
	}

	first := resp.firstContent()
	if first == nil {
		return turn
	}

	var text strings.Builder
	for _, p := range first.Parts {
		switch {
		case p.FunctionCall != nil:
			id := p.FunctionCall.ID
			if id == "" {
				id = syntheticPrefix + uuid.NewString()
			}
			args := "{}"
			if len(p.FunctionCall.Args) > 0 {
				args = string(p.FunctionCall.Args)
			}
			turn.Calls = append(turn.Calls, ai.ToolCall{
				ID:        id,
				Name:      p.FunctionCall.Name,
				Arguments: tool.ParseArguments(args),
			})
		case !p.Thought:
			text.WriteString(p.Text)
		}
	}

	turn.Text = text.String()
	turn.ToolsRequested = len(turn.Calls) > 0
	turn.Raw = content{Role: "model", Parts: first.Parts}
	return turn
}
