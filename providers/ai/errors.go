package ai

import (
	"errors"
	"fmt"

	"github.com/leofalp/cascade/internal/utils"
)

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("API key is not set")

// ErrorKind classifies adapter failures.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // DNS, connect, timeout, cancelled context, broken stream
	KindStatus    ErrorKind = "status"    // non-2xx HTTP response
	KindDecode    ErrorKind = "decode"    // unusable response body
	KindConfig    ErrorKind = "config"    // missing key or unbuildable request
)

// Error is the failure of one adapter call.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err for provider, picking the kind from the error chain.
// An existing *Error is returned unchanged.
func NewError(provider string, err error) *Error {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr
	}

	out := &Error{Kind: KindTransport, Provider: provider, Err: err}

	var statusErr *utils.StatusError
	switch {
	case errors.As(err, &statusErr):
		out.Kind = KindStatus
		out.StatusCode = statusErr.StatusCode
	case errors.Is(err, utils.ErrDecode):
		out.Kind = KindDecode
	case errors.Is(err, ErrMissingAPIKey):
		out.Kind = KindConfig
	}
	return out
}

// ErrorText renders err as the text returned to callers in place of a
// response.
func ErrorText(err error) string {
	return "Error: " + err.Error()
}
