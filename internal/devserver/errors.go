package devserver

import (
	"errors"
	"fmt"
	"net/http"
)

// Store errors
var (
	// ErrNotFound is returned when a record cannot be found
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned when an email/password pair does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive is returned when a user exists but is disabled
	ErrUserInactive = errors.New("user is inactive")

	// ErrDateUnavailable is returned when a date is already booked or blocked
	ErrDateUnavailable = errors.New("date unavailable")

	// ErrDuplicate is returned when a unique field is already taken
	ErrDuplicate = errors.New("already exists")

	// ErrSessionNotFound is returned for unknown or expired refresh tokens
	ErrSessionNotFound = errors.New("session not found")
)

// apiError is an error that knows its HTTP status and envelope code
type apiError struct {
	status  int
	code    string
	message string
	details any
}

func (e *apiError) Error() string {
	return e.message
}

func validationError(format string, args ...any) *apiError {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    "VALIDATION_ERROR",
		message: fmt.Sprintf(format, args...),
	}
}

func notFound(kind string) *apiError {
	return &apiError{
		status:  http.StatusNotFound,
		code:    "NOT_FOUND",
		message: kind + " not found",
	}
}

func dateUnavailable(date string) *apiError {
	return &apiError{
		status:  http.StatusConflict,
		code:    "DATE_UNAVAILABLE",
		message: "Date unavailable",
		details: map[string]string{"date": date},
	}
}

// classify maps store errors onto HTTP statuses
func classify(err error) *apiError {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, ErrNotFound):
		return &apiError{status: http.StatusNotFound, code: "NOT_FOUND", message: err.Error()}
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserInactive):
		return &apiError{status: http.StatusUnauthorized, code: "INVALID_CREDENTIALS", message: "Invalid credentials"}
	case errors.Is(err, ErrSessionNotFound):
		return &apiError{status: http.StatusUnauthorized, code: "INVALID_REFRESH_TOKEN", message: "Invalid refresh token"}
	case errors.Is(err, ErrDuplicate):
		return &apiError{status: http.StatusConflict, code: "DUPLICATE", message: err.Error()}
	case errors.Is(err, ErrDateUnavailable):
		return &apiError{status: http.StatusConflict, code: "DATE_UNAVAILABLE", message: "Date unavailable"}
	default:
		return &apiError{status: http.StatusInternalServerError, code: "INTERNAL", message: "Internal server error"}
	}
}
