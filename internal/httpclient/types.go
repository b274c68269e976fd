package httpclient

import (
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// HTTPError is a non-2xx response from the console API.
type HTTPError struct {
	StatusCode int
	URL        string
	// Message is the "error" field of the response body, or the status text.
	Message string
	// Code is the "code" field of the response body, if any.
	Code string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d (%s) for URL %s: %s", e.StatusCode, e.Code, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Unwrap maps the status code to an errdefs class, so errdefs.IsConflict and
// mutation.IsConflict recognise a stale write.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusConflict:
		return errdefs.ErrConflict
	case http.StatusNotFound:
		return errdefs.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errdefs.ErrInvalidArgument
	case http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case http.StatusPreconditionFailed:
		return errdefs.ErrFailedPrecondition
	case http.StatusTooManyRequests:
		return errdefs.ErrResourceExhausted
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return errdefs.ErrUnavailable
	}
	return nil
}

// NewHTTPError creates an HTTPError without a body code.
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{StatusCode: statusCode, URL: url, Message: message}
}
