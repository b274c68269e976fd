package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/stacklok/dbcluster-console/internal/api"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/service"
	"github.com/stacklok/dbcluster-console/internal/service/mocks"
)

func serve(t *testing.T, server http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, target, nil)
	} else {
		req, err = http.NewRequest(method, target, strings.NewReader(body))
	}
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockClusterService(ctrl)
	// No expectations needed - health check doesn't call service
	server := api.NewServer(mockSvc)

	rr := serve(t, server, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupMock      func(*mocks.MockClusterService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "service ready",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "ready",
		},
		{
			name: "service not ready",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(service.ErrNotReady)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockClusterService(ctrl)
			tt.setupMock(mockSvc)

			server := api.NewServer(mockSvc)
			rr := serve(t, server, http.MethodGet, "/readiness", "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedBody, response["status"])
			} else {
				assert.Contains(t, response, tt.expectedBody)
			}
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockClusterService(ctrl)
	server := api.NewServer(mockSvc)

	rr := serve(t, server, http.MethodGet, "/version", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	assert.Contains(t, response, "version")
	assert.Contains(t, response, "commit")
	assert.Contains(t, response, "build_date")
	assert.Contains(t, response, "go_version")
	assert.Contains(t, response, "platform")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockClusterService(ctrl)

	withoutMetrics := api.NewServer(mockSvc)
	rr := serve(t, withoutMetrics, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dbcc_mutation_conflicts_total 0\n"))
	})
	withMetrics := api.NewServer(mockSvc, api.WithMetricsHandler(metrics))
	rr = serve(t, withMetrics, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dbcc_mutation_conflicts_total")
}

func TestMiddlewares(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockClusterService(ctrl)

	var called bool
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}
	server := api.NewServer(mockSvc, api.WithMiddlewares(mw, api.LoggingMiddleware))

	rr := serve(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func cluster(rv string) *v1alpha1.DatabaseCluster {
	return &v1alpha1.DatabaseCluster{
		ObjectMeta: metav1.ObjectMeta{
			Name:            "orders",
			Namespace:       "default",
			Generation:      2,
			ResourceVersion: rv,
		},
		Spec: v1alpha1.DatabaseClusterSpec{
			Engine: v1alpha1.Engine{Type: v1alpha1.EngineTypePostgresql, Replicas: 1},
		},
	}
}

func TestDatabaseClusterRoutes(t *testing.T) {
	t.Parallel()

	gr := schema.GroupResource{Group: "dbaas.stacklok.dev", Resource: "databaseclusters"}

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		setupMock      func(*mocks.MockClusterService)
		expectedStatus int
		expectedCode   string
		check          func(t *testing.T, body []byte)
	}{
		{
			name:   "list in namespace",
			method: http.MethodGet,
			target: "/v1/namespaces/default/database-clusters",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().ListDatabaseClusters(gomock.Any(), "default").
					Return([]*v1alpha1.DatabaseCluster{cluster("10")}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				t.Helper()
				var resp struct {
					Items []v1alpha1.DatabaseCluster `json:"items"`
					Count int                        `json:"count"`
				}
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 1, resp.Count)
				assert.Equal(t, "orders", resp.Items[0].Name)
			},
		},
		{
			name:   "list everywhere returns an empty array",
			method: http.MethodGet,
			target: "/v1/database-clusters",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().ListDatabaseClusters(gomock.Any(), "").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				t.Helper()
				assert.JSONEq(t, `{"items":[],"count":0}`, string(body))
			},
		},
		{
			name:   "get",
			method: http.MethodGet,
			target: "/v1/namespaces/default/database-clusters/orders",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().GetDatabaseCluster(gomock.Any(), "default", "orders").Return(cluster("10"), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				t.Helper()
				var got v1alpha1.DatabaseCluster
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "10", got.ResourceVersion)
			},
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			target: "/v1/namespaces/default/database-clusters/orders",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().GetDatabaseCluster(gomock.Any(), "default", "orders").
					Return(nil, fmt.Errorf("%w: DatabaseCluster default/orders", service.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "not_found",
		},
		{
			name:   "update",
			method: http.MethodPut,
			target: "/v1/namespaces/default/database-clusters/orders",
			body:   `{"metadata":{"resourceVersion":"10"},"spec":{"engine":{"type":"postgresql","replicas":1}}}`,
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().UpdateDatabaseCluster(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, obj *v1alpha1.DatabaseCluster) (*v1alpha1.DatabaseCluster, error) {
						// Name and namespace come from the path.
						if obj.Name != "orders" || obj.Namespace != "default" || obj.ResourceVersion != "10" {
							return nil, errors.New("unexpected object")
						}
						return cluster("11"), nil
					})
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				t.Helper()
				var got v1alpha1.DatabaseCluster
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "11", got.ResourceVersion)
			},
		},
		{
			name:   "update with stale resource version",
			method: http.MethodPut,
			target: "/v1/namespaces/default/database-clusters/orders",
			body:   `{"metadata":{"resourceVersion":"9"},"spec":{}}`,
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().UpdateDatabaseCluster(gomock.Any(), gomock.Any()).
					Return(nil, apierrors.NewConflict(gr, "orders", errors.New("the object has been modified")))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "conflict",
		},
		{
			name:   "update failing validation",
			method: http.MethodPut,
			target: "/v1/namespaces/default/database-clusters/orders",
			body:   `{"metadata":{"resourceVersion":"10"},"spec":{}}`,
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().UpdateDatabaseCluster(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: spec.engine.type: is required", v1alpha1.ErrInvalid))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "invalid",
		},
		{
			name:           "update with mismatched name",
			method:         http.MethodPut,
			target:         "/v1/namespaces/default/database-clusters/orders",
			body:           `{"metadata":{"name":"billing","resourceVersion":"10"}}`,
			setupMock:      func(*mocks.MockClusterService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "bad_request",
		},
		{
			name:           "update with malformed body",
			method:         http.MethodPut,
			target:         "/v1/namespaces/default/database-clusters/orders",
			body:           `{"metadata":`,
			setupMock:      func(*mocks.MockClusterService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "bad_request",
		},
		{
			name:           "update without body",
			method:         http.MethodPut,
			target:         "/v1/namespaces/default/database-clusters/orders",
			setupMock:      func(*mocks.MockClusterService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "bad_request",
		},
		{
			name:   "backend failure",
			method: http.MethodGet,
			target: "/v1/namespaces/default/database-clusters/orders",
			setupMock: func(m *mocks.MockClusterService) {
				m.EXPECT().GetDatabaseCluster(gomock.Any(), "default", "orders").
					Return(nil, errors.New("dial tcp 10.0.0.1:6443: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "internal",
			check: func(t *testing.T, body []byte) {
				t.Helper()
				assert.NotContains(t, string(body), "10.0.0.1", "internal details must not leak")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockClusterService(ctrl)
			tt.setupMock(mockSvc)

			server := api.NewServer(mockSvc)
			rr := serve(t, server, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			if tt.expectedCode != "" {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCode, resp["code"])
				assert.NotEmpty(t, resp["error"])
			}
			if tt.check != nil {
				tt.check(t, rr.Body.Bytes())
			}
		})
	}
}

func TestOtherResourceRoutes(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockClusterService(ctrl)
	mockSvc.EXPECT().GetBackupStorage(gomock.Any(), "default", "s3-main").
		Return(&v1alpha1.BackupStorage{ObjectMeta: metav1.ObjectMeta{Name: "s3-main", Namespace: "default"}}, nil)
	mockSvc.EXPECT().ListMonitoringConfigs(gomock.Any(), "").
		Return(nil, service.ErrNotConfigured)

	server := api.NewServer(mockSvc)

	rr := serve(t, server, http.MethodGet, "/v1/namespaces/default/backup-storages/s3-main", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(t, server, http.MethodGet, "/v1/monitoring-configs", "")
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestUnknownRoutes(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	server := api.NewServer(mocks.NewMockClusterService(ctrl))

	tests := []struct {
		name   string
		method string
		target string
		status int
		code   string
	}{
		{name: "unknown top-level path", method: http.MethodGet, target: "/v2/clusters", status: http.StatusNotFound, code: "not_found"},
		{name: "unknown resource", method: http.MethodGet, target: "/v1/namespaces/prod/widgets", status: http.StatusNotFound, code: "not_found"},
		{name: "delete is not offered", method: http.MethodDelete, target: "/v1/namespaces/prod/database-clusters/orders", status: http.StatusMethodNotAllowed, code: "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, server, tt.method, tt.target, "")
			assert.Equal(t, tt.status, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
