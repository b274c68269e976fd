package httpclient_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/dbcluster-console/internal/httpclient"
	"github.com/stacklok/dbcluster-console/internal/mutation"
)

const clusterURL = "http://console:8080/v1/namespaces/prod/database-clusters/orders"

func TestHTTPError_Message(t *testing.T) {
	t.Parallel()

	err := httpclient.NewHTTPError(http.StatusNotFound, clusterURL, "Not Found")
	assert.Equal(t, "HTTP 404 for URL "+clusterURL+": Not Found", err.Error())

	withCode := &httpclient.HTTPError{
		StatusCode: http.StatusConflict,
		URL:        clusterURL,
		Message:    "the object has been modified",
		Code:       "conflict",
	}
	assert.Equal(t, "HTTP 409 (conflict) for URL "+clusterURL+": the object has been modified", withCode.Error())

	var target *httpclient.HTTPError
	require.ErrorAs(t, fmt.Errorf("update prod/orders: %w", withCode), &target)
	assert.Equal(t, "conflict", target.Code)
}

func TestHTTPError_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		statusCode int
		classify   func(error) bool
	}{
		{statusCode: 409, classify: errdefs.IsConflict},
		{statusCode: 404, classify: errdefs.IsNotFound},
		{statusCode: 400, classify: errdefs.IsInvalidArgument},
		{statusCode: 422, classify: errdefs.IsInvalidArgument},
		{statusCode: 401, classify: errdefs.IsUnauthorized},
		{statusCode: 403, classify: errdefs.IsPermissionDenied},
		{statusCode: 412, classify: errdefs.IsFailedPrecondition},
		{statusCode: 429, classify: errdefs.IsResourceExhausted},
		{statusCode: 500, classify: errdefs.IsUnavailable},
		{statusCode: 503, classify: errdefs.IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.statusCode), func(t *testing.T) {
			t.Parallel()

			err := httpclient.NewHTTPError(tt.statusCode, clusterURL, "")
			assert.True(t, tt.classify(err))
		})
	}

	t.Run("conflicts drive the coordinator", func(t *testing.T) {
		t.Parallel()

		assert.True(t, mutation.IsConflict(httpclient.NewHTTPError(409, clusterURL, "stale")))
		assert.False(t, mutation.IsConflict(httpclient.NewHTTPError(422, clusterURL, "invalid")))
		assert.False(t, mutation.IsConflict(httpclient.NewHTTPError(503, clusterURL, "unavailable")))
	})

	t.Run("unmapped status has no class", func(t *testing.T) {
		t.Parallel()

		err := httpclient.NewHTTPError(http.StatusTeapot, clusterURL, "teapot")
		assert.Nil(t, errors.Unwrap(err))
	})
}
