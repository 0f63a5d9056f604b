package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx backend response. Message is the server's own
// message when the body carried one, a generic fallback otherwise.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// newAPIError builds an APIError from a failure response body. The
// backend reports failures as {"message": "..."}; anything else falls
// back to the standard status text.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return &APIError{Status: status, Message: payload.Message}
		}
		if payload.Error != "" {
			return &APIError{Status: status, Message: payload.Error}
		}
	}

	message := http.StatusText(status)
	if message == "" {
		message = "request failed"
	}
	return &APIError{Status: status, Message: message}
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether err is a 401 from the backend, which
// means the stored token is absent, stale or rejected.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
