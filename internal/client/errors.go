package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures where no response was received (timeout, refused connection)
var ErrTransport = errors.New("transport error")

// APIError is a non-2xx response from the roster service
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("roster api: %d: %s", e.StatusCode, e.Message)
}

// NeedsReauth reports whether the caller should obtain a new session
func (e *APIError) NeedsReauth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// genericMessage is used when the response body carries no message
func genericMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "Your session has expired or lacks permission. Please sign in again."
	case status == http.StatusNotFound:
		return "The requested hospital was not found."
	case status == http.StatusUnprocessableEntity:
		return "Some fields are invalid."
	case status >= 500:
		return "The server failed to process the request. Please try again later."
	default:
		return fmt.Sprintf("Request failed with status %d.", status)
	}
}

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
