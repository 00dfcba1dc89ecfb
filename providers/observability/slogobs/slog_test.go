package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/cascade/providers/observability"
)

func newJSONObserver(buf *bytes.Buffer, level slog.Level) *Observer {
	return New(WithFormat(FormatJSON), WithLevel(level), WithOutput(buf))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestObserver_Logging_WritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	obs := newJSONObserver(&buf, slog.LevelInfo)

	obs.Info(context.Background(), "request sent", observability.String(observability.AttrLLMProvider, "claude"))
	obs.Debug(context.Background(), "filtered out")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "request sent", records[0]["msg"])
	assert.Equal(t, "claude", records[0][observability.AttrLLMProvider])
}

func TestObserver_Trace_RendersTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	obs := newJSONObserver(&buf, LevelTrace)

	obs.Trace(context.Background(), "fragment")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "TRACE", records[0]["level"])
}

func TestObserver_Span_LogsStartAndEnd(t *testing.T) {
	var buf bytes.Buffer
	obs := newJSONObserver(&buf, slog.LevelDebug)

	_, span := obs.StartSpan(context.Background(), observability.SpanLLMRequest,
		observability.String(observability.AttrLLMModel, "m"))
	span.SetAttributes(observability.Int(observability.AttrLLMTokensTotal, 12))
	span.SetStatus(observability.StatusOK, "")
	span.End()

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "span.start", records[0]["event"])
	assert.Equal(t, "span.end", records[1]["event"])
	assert.Equal(t, "m", records[1][observability.AttrLLMModel])
	assert.Equal(t, float64(12), records[1][observability.AttrLLMTokensTotal])
	assert.Equal(t, "ok", records[1][observability.AttrStatus])
}

func TestObserver_Span_ErrorStatusEndsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := newJSONObserver(&buf, slog.LevelWarn)

	_, span := obs.StartSpan(context.Background(), "failing")
	span.RecordError(errors.New("boom"))
	span.SetStatus(observability.StatusError, "boom")
	span.End()

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "Span error", records[0]["msg"])
	assert.Equal(t, "WARN", records[1]["level"])
}

func TestObserver_Counter_Accumulates(t *testing.T) {
	obs := New(WithOutput(&bytes.Buffer{}))
	ctx := context.Background()

	obs.Counter(observability.MetricToolCallCount).Add(ctx, 2)
	obs.Counter(observability.MetricToolCallCount).Add(ctx, 3)

	assert.Equal(t, int64(5), obs.CounterValue(observability.MetricToolCallCount))
	assert.Equal(t, int64(0), obs.CounterValue("never.used"))
}

func TestObserver_WithLogger_UsesGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	obs := New(WithLogger(logger), WithFormat(FormatJSON))
	obs.Info(context.Background(), "hello")

	assert.Same(t, logger, obs.Logger())
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestObserver_ConsoleFormat_UsesTint(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithFormat(FormatConsole), WithOutput(&buf), WithLevel(slog.LevelInfo))

	obs.Info(context.Background(), "plain", observability.String("k", "v"))

	out := buf.String()
	assert.Contains(t, out, "plain")
	assert.Contains(t, out, "k=v")
	assert.NotContains(t, out, "\x1b[", "colors are off unless requested")
}
