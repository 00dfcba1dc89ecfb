package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/leofalp/cascade/providers/tool"
)

// scriptedConversation replays a fixed list of turns and records Append calls.
// Once the script is exhausted the last turn repeats.
type scriptedConversation struct {
	turns   []ToolTurn
	sendErr error
	sends   int
	appends [][]ToolOutcome
}

func (c *scriptedConversation) Send(context.Context) (ToolTurn, error) {
	c.sends++
	if c.sendErr != nil {
		return ToolTurn{}, c.sendErr
	}
	index := min(c.sends-1, len(c.turns)-1)
	return c.turns[index], nil
}

func (c *scriptedConversation) Append(_ ToolTurn, results []ToolOutcome) {
	c.appends = append(c.appends, results)
}

type echoInput struct {
	Message string `json:"message"`
}

func echoCatalog(t *testing.T) *tool.Catalog {
	t.Helper()
	echo, err := tool.New("echo", func(_ context.Context, in echoInput) (string, error) {
		return in.Message, nil
	})
	if err != nil {
		t.Fatalf("failed to build echo tool: %v", err)
	}
	return tool.NewCatalog(echo)
}

func toolTurn(calls ...ToolCall) ToolTurn {
	return ToolTurn{ToolsRequested: true, Calls: calls, Usage: &Usage{InputTokens: 10, OutputTokens: 1}}
}

// ========== RunToolLoop ==========

// TestRunToolLoop_StopsOnTextTurn verifies a turn without tools ends the loop.
func TestRunToolLoop_StopsOnTextTurn(t *testing.T) {
	conv := &scriptedConversation{turns: []ToolTurn{
		toolTurn(ToolCall{ID: "c1", Name: "echo", Arguments: map[string]any{"message": "hi"}}),
		{Text: "done", Usage: &Usage{InputTokens: 20, OutputTokens: 4}},
	}}

	result, err := RunToolLoop(context.Background(), conv, tool.NewExecutor(echoCatalog(t)), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Text != "done" || result.Rounds != 2 || result.Exhausted {
		t.Errorf("unexpected result %+v", result)
	}
	if conv.sends != 2 || len(conv.appends) != 1 {
		t.Errorf("expected 2 sends and 1 append, got %d and %d", conv.sends, len(conv.appends))
	}
	if result.Usage != (Usage{InputTokens: 30, OutputTokens: 5}) || !result.HasUsage {
		t.Errorf("expected usage summed across rounds, got %+v", result.Usage)
	}

	if len(result.Calls) != 1 {
		t.Fatalf("expected 1 call record, got %d", len(result.Calls))
	}
	record := result.Calls[0]
	if record.Tool != "echo" || record.Input["message"] != "hi" || record.Output != `{"result":"hi"}` {
		t.Errorf("unexpected record %+v", record)
	}
	if conv.appends[0][0].Call.ID != "c1" || conv.appends[0][0].Output != `{"result":"hi"}` {
		t.Errorf("unexpected outcome %+v", conv.appends[0][0])
	}
}

// TestRunToolLoop_ExhaustsExactly verifies a model that always asks for
// tools gets exactly maxRounds round trips and an empty answer.
func TestRunToolLoop_ExhaustsExactly(t *testing.T) {
	conv := &scriptedConversation{turns: []ToolTurn{
		{Text: "thinking", ToolsRequested: true, Calls: []ToolCall{{ID: "x", Name: "echo", Arguments: map[string]any{"message": "again"}}}},
	}}

	result, err := RunToolLoop(context.Background(), conv, tool.NewExecutor(echoCatalog(t)), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conv.sends != 3 {
		t.Errorf("expected exactly 3 round trips, got %d", conv.sends)
	}
	if !result.Exhausted || result.Text != "" {
		t.Errorf("expected exhausted result with empty text, got %+v", result)
	}
	if len(result.Calls) != 3 {
		t.Errorf("expected 3 call records, got %d", len(result.Calls))
	}
}

// TestRunToolLoop_DefaultRounds verifies maxRounds <= 0 uses DefaultMaxRounds.
func TestRunToolLoop_DefaultRounds(t *testing.T) {
	conv := &scriptedConversation{turns: []ToolTurn{toolTurn(ToolCall{ID: "x", Name: "echo"})}}

	if _, err := RunToolLoop(context.Background(), conv, tool.NewExecutor(echoCatalog(t)), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.sends != DefaultMaxRounds {
		t.Errorf("expected %d sends, got %d", DefaultMaxRounds, conv.sends)
	}
}

// TestRunToolLoop_ToolFailuresFeedBack verifies unknown tools and bad
// arguments become error results instead of stopping the loop.
func TestRunToolLoop_ToolFailuresFeedBack(t *testing.T) {
	conv := &scriptedConversation{turns: []ToolTurn{
		toolTurn(
			ToolCall{ID: "a", Name: "missing"},
			ToolCall{ID: "b", Name: "echo", Arguments: map[string]any{"message": 42}},
		),
		{Text: "recovered"},
	}}

	result, err := RunToolLoop(context.Background(), conv, tool.NewExecutor(echoCatalog(t)), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "recovered" {
		t.Errorf("expected recovered, got %q", result.Text)
	}

	outcomes := conv.appends[0]
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, outcome := range outcomes {
		var payload map[string]any
		if err := json.Unmarshal([]byte(outcome.Output), &payload); err != nil {
			t.Fatalf("output is not JSON: %q", outcome.Output)
		}
		if _, ok := payload["error"]; !ok {
			t.Errorf("expected error payload for %s, got %q", outcome.Call.Name, outcome.Output)
		}
	}
	if !strings.Contains(outcomes[0].Output, "Unknown tool: missing") {
		t.Errorf("unexpected unknown-tool output %q", outcomes[0].Output)
	}
}

// TestRunToolLoop_SendError verifies a failed round trip ends the loop with
// the partial log.
func TestRunToolLoop_SendError(t *testing.T) {
	boom := errors.New("connection reset")
	conv := &scriptedConversation{sendErr: boom}

	result, err := RunToolLoop(context.Background(), conv, tool.NewExecutor(nil), 3)
	if !errors.Is(err, boom) {
		t.Fatalf("expected send error, got %v", err)
	}
	if conv.sends != 1 || result.Rounds != 1 {
		t.Errorf("expected a single attempt, got %d", conv.sends)
	}
}

// ========== AskWithTools ==========

// TestAskWithTools_FoldsErrorIntoText verifies the boundary conversion and
// the stored error.
func TestAskWithTools_FoldsErrorIntoText(t *testing.T) {
	var state CallState
	conv := &scriptedConversation{sendErr: ErrMissingAPIKey}

	text, calls := AskWithTools(context.Background(), &state, "claude", conv, nil, 2)

	if text != "Error: claude: API key is not set" {
		t.Errorf("unexpected text %q", text)
	}
	if len(calls) != 0 {
		t.Errorf("expected no calls, got %d", len(calls))
	}
	var aiErr *Error
	if !errors.As(state.LastError(), &aiErr) || aiErr.Kind != KindConfig {
		t.Errorf("expected config error, got %v", state.LastError())
	}
}

// TestAskWithTools_RecordsUsage verifies the summed usage lands in the state.
func TestAskWithTools_RecordsUsage(t *testing.T) {
	var state CallState
	conv := &scriptedConversation{turns: []ToolTurn{
		toolTurn(ToolCall{ID: "1", Name: "echo", Arguments: map[string]any{"message": "x"}}),
		{Text: "ok", Usage: &Usage{InputTokens: 5, OutputTokens: 5}},
	}}

	text, calls := AskWithTools(context.Background(), &state, "openai", conv, echoCatalog(t), 0)
	if text != "ok" || len(calls) != 1 {
		t.Fatalf("unexpected result %q %v", text, calls)
	}
	usage, ok := state.LastUsage()
	if !ok || usage != (Usage{InputTokens: 15, OutputTokens: 6}) {
		t.Errorf("unexpected usage %+v (%v)", usage, ok)
	}
	if state.LastError() != nil {
		t.Errorf("unexpected error %v", state.LastError())
	}
}
