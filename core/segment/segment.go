// Package segment splits a streamed model response into prose lines and
// fenced code blocks.
//
// Fragments may split a line, a fence marker or a language tag anywhere; the
// Segmenter only emits events for completed lines, or at Finish. Feeding a
// text in one call or split at any set of byte offsets yields the same
// events.
package segment

import (
	"iter"
	"strings"
)

// Kind tags an Event.
type Kind int

const (
	// ProseLine is one complete line outside code blocks, without its newline.
	ProseLine Kind = iota + 1
	// CodeBlockOpen starts a code block; Event.Lang holds the fence tag.
	CodeBlockOpen
	// CodeBlockBody carries the block body without its trailing newlines.
	CodeBlockBody
	// CodeBlockClose ends a code block.
	CodeBlockClose
)

func (k Kind) String() string {
	switch k {
	case ProseLine:
		return "prose"
	case CodeBlockOpen:
		return "code_open"
	case CodeBlockBody:
		return "code_body"
	case CodeBlockClose:
		return "code_close"
	default:
		return "unknown"
	}
}

// Event is one rendered unit.
type Event struct {
	Kind Kind
	Text string
	Lang string
}

// Sink receives events in order.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(event Event)

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) { f(event) }

const fence = "```"

type state int

const (
	stateProse state = iota
	stateCode
)

// Segmenter is the PROSE / CODE_BLOCK state machine. It is not safe for
// concurrent use.
type Segmenter struct {
	sink  Sink
	state state
	line  strings.Builder
	code  strings.Builder
	lang  string
}

// New returns a Segmenter emitting to sink.
func New(sink Sink) *Segmenter {
	return &Segmenter{sink: sink}
}

// Feed consumes one fragment. Every newline it completes is processed
// before Feed returns.
func (s *Segmenter) Feed(chunk string) {
	for chunk != "" {
		i := strings.IndexByte(chunk, '\n')
		if i < 0 {
			s.line.WriteString(chunk)
			return
		}
		s.line.WriteString(chunk[:i])
		chunk = chunk[i+1:]

		line := s.line.String()
		s.line.Reset()
		s.completeLine(line)
	}
}

// Finish flushes buffered content. A closing fence without its newline
// closes the block normally; an unterminated code block (with any partial
// last line) is emitted as a whole block, then a trailing partial
// prose line is emitted unless it is blank. The Segmenter is reset and can
// be reused.
func (s *Segmenter) Finish() {
	partial := s.line.String()
	s.line.Reset()

	if s.state == stateCode {
		if strings.TrimSpace(partial) == fence {
			s.completeLine(partial)
			return
		}
		s.code.WriteString(partial)
		partial = ""
		if body := strings.TrimRight(s.code.String(), "\n"); body != "" {
			s.emitBlock(body)
		}
		s.resetCode()
	}

	if strings.TrimSpace(partial) != "" {
		s.sink.Emit(Event{Kind: ProseLine, Text: partial})
	}
}

func (s *Segmenter) completeLine(line string) {
	trimmed := strings.TrimSpace(line)

	switch s.state {
	case stateProse:
		if strings.HasPrefix(trimmed, fence) {
			s.lang = strings.TrimSpace(trimmed[len(fence):])
			s.state = stateCode
			return
		}
		s.sink.Emit(Event{Kind: ProseLine, Text: line})

	case stateCode:
		if trimmed == fence {
			s.emitBlock(strings.TrimRight(s.code.String(), "\n"))
			s.resetCode()
			return
		}
		s.code.WriteString(line)
		s.code.WriteByte('\n')
	}
}

func (s *Segmenter) emitBlock(body string) {
	s.sink.Emit(Event{Kind: CodeBlockOpen, Lang: s.lang})
	s.sink.Emit(Event{Kind: CodeBlockBody, Text: body, Lang: s.lang})
	s.sink.Emit(Event{Kind: CodeBlockClose, Lang: s.lang})
}

func (s *Segmenter) resetCode() {
	s.code.Reset()
	s.lang = ""
	s.state = stateProse
}

// Render drains fragments through a new Segmenter, then calls Finish.
func Render(fragments iter.Seq[string], sink Sink) {
	segmenter := New(sink)
	for fragment := range fragments {
		segmenter.Feed(fragment)
	}
	segmenter.Finish()
}

// Split segments a complete text and returns the events.
func Split(text string) []Event {
	var events []Event
	segmenter := New(SinkFunc(func(event Event) {
		events = append(events, event)
	}))
	segmenter.Feed(text)
	segmenter.Finish()
	return events
}
