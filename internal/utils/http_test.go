package utils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type echoResponse struct {
	Text string `json:"text"`
}

// TestDoPostSync_SendsHeadersAndDecodes checks auth, custom headers and decoding.
func TestDoPostSync_SendsHeadersAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "cascade" {
			t.Errorf("expected custom header, got %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"text":"` + body["prompt"].(string) + `"}`))
	}))
	defer server.Close()

	_, out, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "secret",
		map[string]any{"prompt": "hi"}, HeaderOption{Key: "X-Title", Value: "cascade"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "hi" {
		t.Errorf("expected echoed text, got %q", out.Text)
	}
}

// TestDoPostSync_HeaderOptionOverridesAuthorization lets adapters replace bearer auth.
func TestDoPostSync_HeaderOptionOverridesAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Custom x" {
			t.Errorf("expected overridden auth, got %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, _, err := DoPostSync[echoResponse](context.Background(), nil, server.URL, "secret", struct{}{},
		HeaderOption{Key: "Authorization", Value: "Custom x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestDoPostSync_Non2xx_ReturnsStatusError exposes status and body.
func TestDoPostSync_Non2xx_ReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", struct{}{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", statusErr.StatusCode)
	}
	if statusErr.Body != "rate limited\n" {
		t.Errorf("unexpected body %q", statusErr.Body)
	}
}

// TestDoPostSync_BadJSON_WrapsErrDecode classifies undecodable bodies.
func TestDoPostSync_BadJSON_WrapsErrDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, _, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", struct{}{})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

// TestDoPostSync_Unreachable_ReturnsTransportError covers connection failures.
func TestDoPostSync_Unreachable_ReturnsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, _, err := DoPostSync[echoResponse](context.Background(), &http.Client{Timeout: time.Second}, url, "", struct{}{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) || errors.Is(err, ErrDecode) {
		t.Errorf("expected a transport error, got %v", err)
	}
}

// TestDoPostStream_ReturnsOpenBody leaves the SSE body for the caller.
func TestDoPostStream_ReturnsOpenBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("expected SSE accept header, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: a\n\ndata: b\n\n")
	}))
	defer server.Close()

	res, err := DoPostStream(context.Background(), server.Client(), server.URL, "", struct{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer CloseWithLog(res.Body)

	scanner := NewSSEScanner(res.Body)
	var got []string
	for {
		ev, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected scan error: %v", err)
		}
		got = append(got, ev.Data)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected events %v", got)
	}
}

// TestDoPostStream_Non2xx_ClosesAndReportsStatus drains error bodies.
func TestDoPostStream_Non2xx_ClosesAndReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "", struct{}{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestCloseWithLog_NilIsNoop(t *testing.T) {
	CloseWithLog(nil)
}
