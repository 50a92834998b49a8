package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error kinds reported by the API.
const (
	KindValidation        = "VALIDATION_ERROR"
	KindNotFound          = "NOT_FOUND"
	KindStorage           = "STORAGE_ERROR"
	KindPersistence       = "PERSISTENCE_ERROR"
	KindAlreadyExists     = "ALREADY_EXISTS"
	KindInvalidTransition = "INVALID_TRANSITION"
	KindUnauthorized      = "UNAUTHORIZED"
)

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	RequestID  string
	Kind       string
	Message    string
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("tenderdocs: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tenderdocs: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

// IsValidation reports a client-side input problem. Retrying the same call will fail again.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}

// IsNotFound reports an unknown, foreign or soft-deleted document.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

// IsRetryable reports a transient failure where repeating the whole call may succeed.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Kind == KindStorage {
		return true
	}
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

type errorBody struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// decodeError builds an *Error from a failed response. Bodies that are not the
// standard envelope fall back to the status text.
func decodeError(resp *http.Response) error {
	e := &Error{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Request-ID"),
		Message:    http.StatusText(resp.StatusCode),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return e
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return e
	}
	e.Kind = body.Error.Kind
	e.Message = body.Error.Message
	e.Details = body.Error.Details
	if body.RequestID != "" {
		e.RequestID = body.RequestID
	}
	return e
}
