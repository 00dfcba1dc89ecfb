package openai

import "encoding/json"

/*
	CHAT COMPLETIONS - REQUEST TYPES
*/

// chatCompletionRequest is the body of POST {base}/chat/completions.
type chatCompletionRequest struct {
	Model         string         `json:"model"`
	Messages      []chatMessage  `json:"messages"`
	Temperature   float64        `json:"temperature"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Tools         []chatTool     `json:"tools,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

// chatMessage is one entry of the messages array. Content is a pointer so an
// assistant message carrying only tool_calls serializes "content": null.
type chatMessage struct {
	Role       string         `json:"role"` // "system", "user", "assistant", "tool"
	Content    *string        `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`   // role=assistant
	ToolCallID string         `json:"tool_call_id,omitempty"` // role=tool
}

// chatTool wraps a function definition.
type chatTool struct {
	Type     string       `json:"type"` // always "function"
	Function chatFunction `json:"function"`
}

// chatFunction describes one callable function.
type chatFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
}

// chatToolCall is a function call requested by the model.
type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"` // "function"
	Function chatCallFunction `json:"function"`
}

// chatCallFunction carries the call name and its JSON-encoded arguments.
type chatCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// streamOptions asks for a final usage chunk.
type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

/*
	CHAT COMPLETIONS - RESPONSE TYPES
*/

// chatCompletionResponse is the non-streaming response.
type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

// chatChoice is one completion choice.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatUsage reports token consumption.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CHAT COMPLETIONS - STREAM TYPES
*/

// chatCompletionStreamChunk is one SSE payload.
type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"`
	Error   *apiError      `json:"error,omitempty"` // Sent mid-stream by some compatible vendors
}

// streamChoice carries the delta of one choice.
type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

// streamDelta is the incremental message content.
type streamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// apiError is the error object of OpenAI-style APIs.
type apiError struct {
	Message string          `json:"message"`
	Type    string          `json:"type,omitempty"`
	Code    json.RawMessage `json:"code,omitempty"` // string or number depending on vendor
}
