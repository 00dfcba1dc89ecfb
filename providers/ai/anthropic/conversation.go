package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/tool"
)

// conversation is the Anthropic side of [ai.RunToolLoop]: a flat message
// history plus the tool definitions sent on every round.
type conversation struct {
	provider *Provider
	system   string
	tools    []anthropicTool
	messages []anthropicMessage
}

// Send implements [ai.Conversation]. A tool round is requested when
// stop_reason is "tool_use" and the response holds at least one tool_use
// block.
func (c *conversation) Send(ctx context.Context) (ai.ToolTurn, error) {
	p := c.provider
	if p.config.APIKey == "" {
		return ai.ToolTurn{}, ai.NewError(Name, ai.ErrMissingAPIKey)
	}

	ctx, finish := ai.StartRequest(ctx, p.requestInfo(len(c.messages), len(c.tools)))

	request := p.newRequest(c.messages, c.tools, c.system)
	_, resp, err := utils.DoPostSync[anthropicResponse](ctx, p.client, p.endpoint(), "", request, p.headers()...)
	if err != nil {
		aiErr := ai.NewError(Name, err)
		finish(nil, aiErr)
		return ai.ToolTurn{}, aiErr
	}

	turn := responseToTurn(resp)
	finish(turn.Usage, nil)
	return turn, nil
}

// Append implements [ai.Conversation]: the assistant's content blocks go back
// verbatim, followed by one user turn holding a tool_result per call.
func (c *conversation) Append(turn ai.ToolTurn, results []ai.ToolOutcome) {
	blocks, _ := turn.Raw.([]anthropicContentBlock)
	c.messages = append(c.messages, anthropicMessage{Role: "assistant", Content: blocks})

	toolResults := make([]anthropicContentBlock, 0, len(results))
	for _, result := range results {
		toolResults = append(toolResults, anthropicContentBlock{
			Type:      "tool_result",
			ToolUseID: result.Call.ID,
			Content:   result.Output,
		})
	}
	c.messages = append(c.messages, anthropicMessage{Role: "user", Content: toolResults})
}

// responseToTurn maps a Messages API response onto the vendor-neutral turn.
func responseToTurn(resp *anthropicResponse) ai.ToolTurn {
	var (
		text  strings.Builder
		calls []ai.ToolCall
		raw   = make([]anthropicContentBlock, 0, len(resp.Content))
	)

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			// The API rejects empty text blocks on the way back.
			if block.Text == "" {
				continue
			}
			text.WriteString(block.Text)
			raw = append(raw, anthropicContentBlock{Type: "text", Text: block.Text})

		case "tool_use":
			input := block.Input
			if len(input) == 0 || string(input) == "null" {
				input = json.RawMessage("{}")
			}
			calls = append(calls, ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: tool.ParseArguments(string(input)),
			})
			raw = append(raw, anthropicContentBlock{Type: "tool_use", ID: block.ID, Name: block.Name, Input: input})
		}
	}

	return ai.ToolTurn{
		Text:           text.String(),
		Calls:          calls,
		ToolsRequested: resp.StopReason == "tool_use",
		Usage: &ai.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
		Raw: raw,
	}
}
