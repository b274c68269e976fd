package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/service"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeBadRequest     = "bad_request"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeInvalid        = "invalid"
	CodeForbidden      = "forbidden"
	CodeNotImplemented = "not_implemented"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal"
)

// MaxRequestBodySize caps the size of JSON request bodies.
const MaxRequestBodySize = 1 << 20

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ListResponse is the body of list responses.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message, code string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// WriteServiceError maps a service error to its HTTP status and writes it.
// Unclassified errors are logged and reported without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), apierrors.IsNotFound(err):
		WriteErrorResponse(w, err.Error(), CodeNotFound, http.StatusNotFound)
	case mutation.IsConflict(err):
		WriteErrorResponse(w,
			"the object has been modified; reload it and apply your change again",
			CodeConflict, http.StatusConflict)
	case errors.Is(err, v1alpha1.ErrInvalid), apierrors.IsInvalid(err):
		WriteErrorResponse(w, err.Error(), CodeInvalid, http.StatusUnprocessableEntity)
	case apierrors.IsForbidden(err):
		WriteErrorResponse(w, "the console is not allowed to perform this operation", CodeForbidden, http.StatusForbidden)
	case errors.Is(err, service.ErrNotConfigured):
		WriteErrorResponse(w, err.Error(), CodeNotImplemented, http.StatusNotImplemented)
	case errors.Is(err, service.ErrNotReady):
		WriteErrorResponse(w, err.Error(), CodeUnavailable, http.StatusServiceUnavailable)
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteErrorResponse(w, "internal server error", CodeInternal, http.StatusInternalServerError)
	}
}

// DecodeJSONBody decodes a size-limited JSON request body into dst.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return fmt.Errorf("request body exceeds %d bytes", maxBytesErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty")
		default:
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	return nil
}
