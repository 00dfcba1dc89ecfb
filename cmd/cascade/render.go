package main

import (
	"fmt"
	"io"

	"github.com/leofalp/cascade/core/segment"
)

// terminalSink prints segment events as Markdown. The first write error is
// kept and later events are dropped.
type terminalSink struct {
	w   io.Writer
	err error
}

func newTerminalSink(w io.Writer) *terminalSink {
	return &terminalSink{w: w}
}

func (s *terminalSink) Emit(event segment.Event) {
	if s.err != nil {
		return
	}

	switch event.Kind {
	case segment.ProseLine:
		_, s.err = fmt.Fprintln(s.w, event.Text)
	case segment.CodeBlockOpen:
		_, s.err = fmt.Fprintln(s.w, "```"+event.Lang)
	case segment.CodeBlockBody:
		if event.Text != "" {
			_, s.err = fmt.Fprintln(s.w, event.Text)
		}
	case segment.CodeBlockClose:
		_, s.err = fmt.Fprintln(s.w, "```")
	}
}
