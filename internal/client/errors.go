package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError.Is
var (
	// ErrUnauthenticated is returned when the session cannot be recovered
	ErrUnauthenticated = errors.New("session expired, please log in again")

	// ErrMalformedResponse is returned when a response does not have the expected shape
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNetwork is returned when no HTTP response could be obtained
	ErrNetwork = errors.New("network error")
)

// Kind classifies an APIError
type Kind int

const (
	// KindHTTP is an error status returned by the server
	KindHTTP Kind = iota
	// KindNetwork means no HTTP response was obtained
	KindNetwork
	// KindUnauthenticated means the session expired and could not be refreshed
	KindUnauthenticated
	// KindMalformed means the response body did not match the expected shape
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// APIError is the only error shape returned by the client.
type APIError struct {
	Kind    Kind
	Status  int             // HTTP status, 0 when no response was obtained
	Message string          // human readable
	Code    string          // optional machine code from the server
	Details json.RawMessage // optional structured details from the server
	Err     error           // underlying cause, if any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Kind == KindUnauthenticated
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

func statusError(status int) *APIError {
	return &APIError{
		Kind:    KindHTTP,
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d", status),
	}
}

func networkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("network error: %v", err),
		Err:     err,
	}
}

func unauthenticatedError() *APIError {
	return &APIError{
		Kind:    KindUnauthenticated,
		Status:  http.StatusUnauthorized,
		Message: ErrUnauthenticated.Error(),
		Code:    "SESSION_EXPIRED",
	}
}

func malformedError(err error) *APIError {
	return &APIError{
		Kind:    KindMalformed,
		Message: fmt.Sprintf("malformed response: %v", err),
		Err:     err,
	}
}

// IsUnauthenticated checks if the error means the user must log in again.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsNotFound checks if the server answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
