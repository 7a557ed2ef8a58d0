package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized means a protected endpoint answered 401. The session
	// has already been cleared when this is returned.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInvalidCredentials means the login endpoint rejected the username
	// or password. Nothing is cleared.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NetworkError wraps a failure where no response was received.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Error is a non-2xx response other than an auth failure.
type Error struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	body := e.Body
	if body == "" {
		body = "(empty body)"
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, body)
}

// UserMessage turns an API error into text fit for a status line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	var apiErr *Error
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has ended. Please log in again."
	case errors.As(err, &netErr):
		return "Network error: check your connection."
	case errors.As(err, &apiErr):
		body := strings.TrimSpace(apiErr.Body)
		if body == "" {
			return fmt.Sprintf("Request failed (HTTP %d).", apiErr.StatusCode)
		}
		return fmt.Sprintf("Request failed (HTTP %d): %s", apiErr.StatusCode, body)
	}
	return err.Error()
}
