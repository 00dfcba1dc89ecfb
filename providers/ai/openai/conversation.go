package openai

import (
	"context"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/tool"
)

// conversation is the OpenAI-compatible side of [ai.RunToolLoop], shared by
// every vendor built on Compatible.
type conversation struct {
	provider *Compatible
	tools    []chatTool
	messages []chatMessage
}

// Send implements [ai.Conversation]. A tool round is requested only when
// finish_reason is "tool_calls" and the message carries tool_calls.
func (c *conversation) Send(ctx context.Context) (ai.ToolTurn, error) {
	p := c.provider
	if p.config.APIKey == "" {
		return ai.ToolTurn{}, ai.NewError(p.name, ai.ErrMissingAPIKey)
	}

	ctx, finish := ai.StartRequest(ctx, p.requestInfo(len(c.messages), len(c.tools)))

	request := p.newRequest(c.messages, c.tools)
	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.endpoint(), p.config.APIKey, request, p.extraHeaders...)
	if err != nil {
		aiErr := ai.NewError(p.name, err)
		finish(nil, aiErr)
		return ai.ToolTurn{}, aiErr
	}

	turn := responseToTurn(resp)
	finish(turn.Usage, nil)
	return turn, nil
}

// Append implements [ai.Conversation]: the assistant message with its
// tool_calls, then one role "tool" message per call keyed by tool_call_id.
func (c *conversation) Append(turn ai.ToolTurn, results []ai.ToolOutcome) {
	if message, ok := turn.Raw.(chatMessage); ok {
		c.messages = append(c.messages, message)
	}
	for _, result := range results {
		c.messages = append(c.messages, chatMessage{
			Role:       "tool",
			Content:    utils.Ptr(result.Output),
			ToolCallID: result.Call.ID,
		})
	}
}

func responseToTurn(resp *chatCompletionResponse) ai.ToolTurn {
	turn := ai.ToolTurn{}
	if resp.Usage != nil {
		turn.Usage = &ai.Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	}
	if len(resp.Choices) == 0 {
		return turn
	}

	choice := resp.Choices[0]
	turn.Text = utils.Deref(choice.Message.Content, "")
	turn.ToolsRequested = choice.FinishReason == "tool_calls"

	for _, call := range choice.Message.ToolCalls {
		turn.Calls = append(turn.Calls, ai.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: tool.ParseArguments(call.Function.Arguments),
		})
	}

	message := choice.Message
	message.Role = "assistant"
	for i := range message.ToolCalls {
		if message.ToolCalls[i].Type == "" {
			message.ToolCalls[i].Type = "function"
		}
	}
	turn.Raw = message
	return turn
}
