package ai

import (
	"context"

	"github.com/leofalp/cascade/providers/observability"
	"github.com/leofalp/cascade/providers/tool"
)

// Conversation is the vendor half of the tool loop. Send is the
// AWAITING_MODEL state: it posts the history plus the tool schema and
// decodes the reply. Append is the AWAITING_TOOL_RESULTS state: it adds the
// model's raw turn and the tool results to the history in the vendor's shape.
type Conversation interface {
	Send(ctx context.Context) (ToolTurn, error)
	Append(turn ToolTurn, results []ToolOutcome)
}

// RunToolLoop drives conv for at most maxRounds round trips. Every call a
// turn requests is executed in order, even when the tool is unknown or
// fails; the executor's JSON output is what the model sees.
//
// A turn without tool calls ends the loop with its text. Running out of
// rounds is not an error: the result has Exhausted set and empty Text.
// A Send error ends the loop and is returned with the partial result.
func RunToolLoop(ctx context.Context, conv Conversation, executor *tool.Executor, maxRounds int) (LoopResult, error) {
	maxRounds = NormalizeRounds(maxRounds)

	ctx, span := observability.StartSpan(ctx, observability.SpanToolLoop,
		observability.Int("llm.max_rounds", maxRounds),
	)
	defer span.End()
	observer := observability.ObserverFromContext(ctx)

	var result LoopResult
	for round := 1; round <= maxRounds; round++ {
		result.Rounds = round

		turn, err := conv.Send(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
			return result, err
		}

		if turn.Usage != nil {
			result.Usage = result.Usage.Add(*turn.Usage)
			result.HasUsage = true
		}

		if !turn.WantsTools() {
			result.Text = turn.Text
			span.SetAttributes(observability.Int(observability.AttrLLMRound, round))
			span.SetStatus(observability.StatusOK, "")
			return result, nil
		}

		span.AddEvent(observability.EventToolRound,
			observability.Int(observability.AttrLLMRound, round),
			observability.Int("tool.calls", len(turn.Calls)),
		)

		outcomes := make([]ToolOutcome, 0, len(turn.Calls))
		for _, call := range turn.Calls {
			args := call.Arguments
			if args == nil {
				args = map[string]any{}
			}
			output := executor.Execute(ctx, call.Name, args)

			result.Calls = append(result.Calls, tool.CallRecord{Tool: call.Name, Input: args, Output: output})
			outcomes = append(outcomes, ToolOutcome{Call: call, Output: output})
		}

		conv.Append(turn, outcomes)
	}

	result.Exhausted = true
	span.AddEvent(observability.EventRoundsExhausted, observability.Int(observability.AttrLLMRound, maxRounds))
	span.SetStatus(observability.StatusOK, "rounds exhausted")
	if observer != nil {
		observer.Warn(ctx, "tool rounds exhausted without a final answer",
			observability.Int(observability.AttrLLMRound, maxRounds),
			observability.Int("tool.calls", len(result.Calls)),
		)
	}
	return result, nil
}

// AskWithTools is the shared body of every adapter's AskWithTools: it resets
// state, runs the loop, records the summed usage and folds a failure into
// the returned text.
func AskWithTools(ctx context.Context, state *CallState, provider string, conv Conversation, tools *tool.Catalog, maxRounds int) (string, []tool.CallRecord) {
	state.Begin()

	result, err := RunToolLoop(ctx, conv, tool.NewExecutor(tools), maxRounds)
	if result.HasUsage {
		state.RecordUsage(result.Usage)
	}
	if err != nil {
		return state.Fail(NewError(provider, err)), result.Calls
	}
	return result.Text, result.Calls
}
