package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("admin role required")
	ErrNotConfirmed    = errors.New("action not confirmed")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
)

// APIError is an application-level failure reported by the backend, either a
// `success: false` envelope or a 4xx without one. Message is meant to be shown
// to the user as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed (%d)", e.Status)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Status == 401
	case ErrForbidden:
		return e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}

// StatusError is returned for 5xx responses, which are never handed to callers
// as regular responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("server error (%d)", e.Status)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, body)
}

// ValidationError wraps ErrValidation with the readable field messages.
func ValidationError(messages ...string) error {
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(messages, "; "))
}
