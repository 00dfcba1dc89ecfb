package ai

import (
	"fmt"

	"github.com/leofalp/cascade/providers/tool"
)

/*
	##### USAGE #####
*/

// Usage is the token accounting of one call. Tool loops sum the usage of
// every round.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Add returns the element-wise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Format renders a short summary such as "~1.5k in / ~320 out".
func (u Usage) Format() string {
	return fmt.Sprintf("%s in / %s out", approxTokens(u.InputTokens), approxTokens(u.OutputTokens))
}

func approxTokens(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("~%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("~%d", n)
}

/*
	##### TOOL LOOP #####
*/

// ToolCall is one function call requested by the model.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolTurn is one decoded model response inside the tool loop.
type ToolTurn struct {
	// Text is the concatenated text content of the response.
	Text string

	// Calls are the tool invocations the response asks for, in order.
	Calls []ToolCall

	// ToolsRequested is the vendor's own stop signal: stop_reason "tool_use"
	// for Claude, finish_reason "tool_calls" for OpenAI, any functionCall
	// part for Gemini.
	ToolsRequested bool

	// Usage is the token usage of this round, nil when the vendor sent none.
	Usage *Usage

	// Raw is the vendor-shaped model turn, echoed back into history by
	// Conversation.Append.
	Raw any
}

// WantsTools reports whether the loop must execute tools and continue.
func (t ToolTurn) WantsTools() bool {
	return t.ToolsRequested && len(t.Calls) > 0
}

// ToolOutcome pairs a call with the executor's JSON output.
type ToolOutcome struct {
	Call   ToolCall
	Output string
}

// LoopResult is what RunToolLoop accumulated.
type LoopResult struct {
	Text      string
	Calls     []tool.CallRecord
	Usage     Usage
	HasUsage  bool
	Rounds    int
	Exhausted bool
}
