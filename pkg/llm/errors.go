package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind groups provider failures by what an operator should do next.
type ErrorKind string

const (
	KindRateLimited  ErrorKind = "rate_limited"
	KindUnauthorized ErrorKind = "unauthorized"
	KindBadRequest   ErrorKind = "bad_request"
	KindTimeout      ErrorKind = "timeout"
	KindGeneric      ErrorKind = "generic"
)

// ProviderError is returned by every LLMProvider in this module.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func NewError(kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("llm %s: %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindForStatus maps a non-2xx HTTP status to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return KindBadRequest
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindGeneric
	}
}

// StatusError builds the error for an HTTP response the provider rejected.
func StatusError(status int, body string) *ProviderError {
	return &ProviderError{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Message:    truncate(body, 512),
	}
}

// Classify converts any error into a *ProviderError, keeping existing
// classifications and treating deadlines as timeouts.
func Classify(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, "request timed out", err)
	}
	return NewError(KindGeneric, "request failed", err)
}

// KindOf reports the ErrorKind of err, KindGeneric when unclassified.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return Classify(err).Kind
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
