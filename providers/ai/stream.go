package ai

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/observability"
)

// OpenStream starts a streaming exchange and returns the open response body.
type OpenStream func(ctx context.Context) (io.ReadCloser, error)

// EventDecoder turns one server-sent event into a text fragment, which may be
// empty. An *Error ends the stream with an "Error: ..." fragment; any other
// error marks the event as malformed and it is skipped.
type EventDecoder func(event utils.SSEEvent) (string, error)

// StreamSSE is the shared body of every adapter's Stream. Each range calls
// open and newDecoder afresh, so decoder state never leaks between requests.
// The response body is closed on every exit path, including an early break
// by the caller.
func StreamSSE(ctx context.Context, state *CallState, info RequestInfo, open OpenStream, newDecoder func() EventDecoder) iter.Seq[string] {
	return func(yield func(string) bool) {
		state.Begin()
		info.Stream = true

		ctx, finish := StartRequest(ctx, info)
		var streamErr error
		defer func() {
			var usage *Usage
			if u, ok := state.LastUsage(); ok {
				usage = &u
			}
			finish(usage, streamErr)
		}()

		body, err := open(ctx)
		if err != nil {
			streamErr = NewError(info.Provider, err)
			yield(state.Fail(streamErr))
			return
		}
		defer utils.CloseWithLog(body)

		observer := observability.ObserverFromContext(ctx)
		decode := newDecoder()
		scanner := utils.NewSSEScanner(body)

		for {
			event, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				streamErr = NewError(info.Provider, err)
				yield(state.Fail(streamErr))
				return
			}

			fragments, fatal := decodeEvent(ctx, observer, info.Provider, decode, event)
			for _, fragment := range fragments {
				if !yield(fragment) {
					return
				}
			}
			if fatal != nil {
				streamErr = fatal
				yield(state.Fail(fatal))
				return
			}
		}
	}
}

// decodeEvent decodes event as a whole. When that fails and the event spans
// several data lines, each line is decoded on its own so one malformed line
// does not discard its neighbours. Only an *Error is fatal.
func decodeEvent(ctx context.Context, observer observability.Provider, provider string, decode EventDecoder, event utils.SSEEvent) ([]string, *Error) {
	fragment, err := decode(event)
	if err == nil {
		if fragment == "" {
			return nil, nil
		}
		return []string{fragment}, nil
	}

	var aiErr *Error
	if errors.As(err, &aiErr) {
		return nil, aiErr
	}
	if len(event.Lines) <= 1 {
		warnMalformed(ctx, observer, provider, event, err)
		return nil, nil
	}

	var fragments []string
	for _, line := range event.SplitLines() {
		fragment, err := decode(line)
		if err != nil {
			if errors.As(err, &aiErr) {
				return fragments, aiErr
			}
			warnMalformed(ctx, observer, provider, line, err)
			continue
		}
		if fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	return fragments, nil
}

func warnMalformed(ctx context.Context, observer observability.Provider, provider string, event utils.SSEEvent, err error) {
	if observer == nil {
		return
	}
	observer.Warn(ctx, "skipping malformed stream event",
		observability.String(observability.AttrLLMProvider, provider),
		observability.Error(err),
		observability.String("data", observability.TruncateStringDefault(event.Data)),
	)
}
