package entity

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies an error for the boundary layer.
type ErrorKind int

const (
	// KindUnexpected is a programming or runtime fault.
	KindUnexpected ErrorKind = iota
	// KindValidation is a malformed or missing client input.
	KindValidation
	// KindUpstream is a failed call to an external provider.
	KindUpstream
)

// ErrNoSupportedNetworks is returned by a provider when none of the requested
// networks resolve to one of its chain identifiers.
var ErrNoSupportedNetworks = errors.New("no supported networks for provider")

// ErrNotAuthenticated is returned when no OAuth token is available for the caller.
var ErrNotAuthenticated = errors.New("not authenticated")

// UpstreamError describes a failed call to an external provider. StatusCode is zero
// when the call never produced an HTTP response (timeout, connection refused).
type UpstreamError struct {
	Provider   Provider
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: upstream status %d: %s", e.Provider, e.Operation, e.StatusCode, truncate(e.Body, 256))
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// APIError is the only error type surfaced to HTTP clients.
type APIError struct {
	Message          string         `json:"message"`
	StatusCode       int            `json:"statusCode"`
	Kind             ErrorKind      `json:"-"`
	Context          map[string]any `json:"context,omitempty"`
	Response         string         `json:"response,omitempty"`
	FriendlyMessage  string         `json:"friendlyMessage"`
	PossibleSolution string         `json:"possibleSolution,omitempty"`
	Timestamp        time.Time      `json:"timestamp"`
	cause            error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

// NewAPIError builds an APIError with its friendly message derived from status.
func NewAPIError(message string, status int, kind ErrorKind, context map[string]any) *APIError {
	return &APIError{
		Message:         message,
		StatusCode:      status,
		Kind:            kind,
		Context:         context,
		FriendlyMessage: FriendlyMessage(status, message),
		Timestamp:       time.Now().UTC(),
	}
}

// NewValidationError builds a 400 APIError.
func NewValidationError(message string, context map[string]any) *APIError {
	return NewAPIError(message, http.StatusBadRequest, KindValidation, context)
}

// FromError translates any error into an APIError. An UpstreamError keeps its
// HTTP status and body; 401 and 429 carry a remediation hint.
func FromError(err error, operation string, params map[string]any) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	context := map[string]any{"operation": operation}
	for k, v := range params {
		context[k] = v
	}

	status := http.StatusInternalServerError
	kind := KindUnexpected
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		kind = KindUpstream
		if upstream.StatusCode != 0 {
			status = upstream.StatusCode
		}
	}

	out := NewAPIError(err.Error(), status, kind, context)
	out.cause = err
	if upstream != nil {
		out.Response = upstream.Body
	}
	switch status {
	case http.StatusUnauthorized:
		out.PossibleSolution = "Check your API key and ensure it's valid and has the necessary permissions."
	case http.StatusTooManyRequests:
		out.PossibleSolution = "Implement request batching or add delays between requests to avoid rate limiting."
	}
	return out
}

// FriendlyMessage maps an HTTP status to a user-facing sentence.
func FriendlyMessage(status int, message string) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad request. Please check your input parameters."
	case http.StatusUnauthorized:
		return "Authentication failed. Your API key may be invalid or expired."
	case http.StatusForbidden:
		return "Access forbidden. You don't have permission to access this resource."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Too many requests in a short period."
	default:
		return message
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
