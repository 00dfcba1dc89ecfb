package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxSSELineSize is the longest single SSE line accepted (1 MB). bufio's
// default 64 KiB is too small for long tool-call arguments.
const maxSSELineSize = 1 * 1024 * 1024

// SSEEvent is one dispatched server-sent event.
type SSEEvent struct {
	// Event is the value of the last "event:" field, empty when absent.
	Event string
	// Data is the joined "data:" lines.
	Data string
	// Lines are the individual "data:" values Data was joined from.
	Lines []string
}

// SplitLines returns one event per data line, for decoders that treat each
// line as a standalone payload.
func (e SSEEvent) SplitLines() []SSEEvent {
	events := make([]SSEEvent, len(e.Lines))
	for i, line := range e.Lines {
		events[i] = SSEEvent{Event: e.Event, Data: line, Lines: []string{line}}
	}
	return events
}

func newSSEEvent(name string, lines []string) SSEEvent {
	return SSEEvent{Event: name, Data: strings.Join(lines, "\n"), Lines: lines}
}

// SSEScanner reads server-sent events from an io.Reader. Comments and
// id/retry fields are skipped; the OpenAI "[DONE]" sentinel ends the stream.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner wraps reader. Lines longer than 1 MB make Next fail with an
// error wrapping bufio.ErrTooLong.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next event. It returns io.EOF at end of input or on the
// [DONE] sentinel. Consecutive data lines are joined with "\n"; an event
// still pending when the input ends is returned before io.EOF.
func (s *SSEScanner) Next() (SSEEvent, error) {
	var (
		name      string
		dataLines []string
	)

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if len(dataLines) > 0 {
				return newSSEEvent(name, dataLines), nil
			}
			name = ""
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)

		switch field {
		case "event":
			name = value
		case "data":
			if value == "[DONE]" {
				return SSEEvent{}, io.EOF
			}
			dataLines = append(dataLines, value)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return SSEEvent{}, fmt.Errorf("SSE scanner error: %w", err)
	}

	if len(dataLines) > 0 {
		return newSSEEvent(name, dataLines), nil
	}
	return SSEEvent{}, io.EOF
}
