// Package anthropic implements [ai.Provider] for Anthropic's Messages API.
//
// Requests go to {base}/messages with the x-api-key and anthropic-version
// headers. Streaming reads text_delta events from the SSE stream; the tool
// loop echoes the assistant's raw content blocks back into history and
// answers every tool_use block with a tool_result block in a single user
// turn.
package anthropic
