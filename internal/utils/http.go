package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/cascade/providers/observability"
)

// maxResponseBodySize caps how much of any response body is read (10 MB).
const maxResponseBodySize int64 = 10 * 1024 * 1024

// ErrDecode marks a response body that could not be decoded.
var ErrDecode = errors.New("decode response")

// HeaderOption is an extra request header. Options are applied after the
// default headers, so they may override Authorization.
type HeaderOption struct {
	Key   string
	Value string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}

// CloseWithLog closes c and logs a failure instead of returning it. Used in
// defers where the primary error must not be overridden.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoPostSync POSTs body as JSON and decodes a 2xx response into OutputStruct.
//
// Error Handling Strategy:
//   - transport failures (including ctx cancellation) are wrapped as-is
//   - non-2xx responses return *StatusError with the (capped) body
//   - undecodable 2xx bodies return an error wrapping ErrDecode
//
// The response body is always closed before returning.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	res, err := post(ctx, client, url, apiKey, body, false, headers)
	if err != nil {
		return res, nil, err
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &StatusError{StatusCode: res.StatusCode, Body: string(respBody)}
	}

	var out OutputStruct
	if err := json.Unmarshal(respBody, &out); err != nil {
		return res, nil, fmt.Errorf("%w (status %d): %w; preview: %s",
			ErrDecode, res.StatusCode, err, observability.TruncateStringDefault(string(respBody)))
	}
	return res, &out, nil
}

// DoPostStream POSTs body as JSON asking for text/event-stream and returns
// the response with its body still open. The caller must close it. Non-2xx
// responses are drained, closed, and reported as *StatusError.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	res, err := post(ctx, client, url, apiKey, body, true, headers)
	if err != nil {
		return res, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer CloseWithLog(res.Body)
		errBody, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
		if readErr != nil {
			return res, &StatusError{StatusCode: res.StatusCode, Body: "(failed to read body: " + readErr.Error() + ")"}
		}
		return res, &StatusError{StatusCode: res.StatusCode, Body: string(errBody)}
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent("http.stream_response.started",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
		)
	}
	return res, nil
}

func post(ctx context.Context, client *http.Client, url string, apiKey string, body any, stream bool, headers []HeaderOption) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
			observability.Bool(observability.AttrLLMStream, stream),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	start := time.Now()
	res, err := httpClient.Do(req)
	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", time.Since(start)),
			)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	return res, nil
}
