package observability

// Attribute keys, span names and metric names shared by adapters, the tool
// loop and the executor.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the provider name (e.g., "claude", "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the vendor's reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMMaxTokens is the output token cap
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMStream is true for streaming requests
	AttrLLMStream = "llm.stream"

	// AttrLLMRound is the 1-based round number inside a tool loop
	AttrLLMRound = "llm.round"
)

// --- Token Usage Attributes ---

const (
	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- Not a credential
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- Not a credential
)

// --- Tool Execution Attributes ---

const (
	// AttrToolName is the name of the tool being executed
	AttrToolName = "tool.name"

	// AttrToolInput is the tool input (serialized)
	AttrToolInput = "tool.input"

	// AttrToolOutput is the tool output (serialized)
	AttrToolOutput = "tool.output"

	// AttrToolDuration is the execution duration
	AttrToolDuration = "tool.duration"

	// AttrToolError is the error message if tool execution failed
	AttrToolError = "tool.error"
)

// --- Request Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestToolsCount is the number of tools in the request
	AttrRequestToolsCount = "request.tools_count"
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod          = "http.method"
	AttrHTTPStatusCode      = "http.status_code"
	AttrHTTPURL             = "http.url"
	AttrHTTPRequestBodySize = "http.request.body.size"
)

// --- Agent Attributes ---

const (
	// AttrAgentName is the name of the agent definition being run
	AttrAgentName = "agent.name"

	// AttrAgentAllowedTools is the number of tools the agent may call
	AttrAgentAllowedTools = "agent.allowed_tools"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrErrorKind         = "error.kind"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanLLMRequest covers one HTTP exchange with a vendor
	SpanLLMRequest = "llm.request"

	// SpanToolLoop covers a whole AskWithTools call
	SpanToolLoop = "llm.tool_loop"

	// SpanToolExecution covers one tool invocation
	SpanToolExecution = "tool.execution"

	// SpanAgentRun covers one agent run
	SpanAgentRun = "agent.run"
)

// --- Event Names ---

const (
	EventToolRound       = "llm.tool_round"
	EventTokensReceived  = "llm.tokens.received" // #nosec G101 -- Not a credential
	EventRoundsExhausted = "llm.rounds_exhausted"
)

// --- Metric Names ---

const (
	MetricRequestCount     = "cascade.llm.request.count"
	MetricRequestDuration  = "cascade.llm.request.duration"
	MetricTokensPrompt     = "cascade.llm.tokens.prompt"     // #nosec G101 -- Not a credential
	MetricTokensCompletion = "cascade.llm.tokens.completion" // #nosec G101 -- Not a credential
	MetricToolCallCount    = "cascade.tool.call.count"
	MetricToolErrorCount   = "cascade.tool.error.count"
)
