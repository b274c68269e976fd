package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/stacklok/dbcluster-console/internal/api"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/service"
	"github.com/stacklok/dbcluster-console/internal/service/mocks"
)

// newAPIClients serves the console API from svc and returns clients talking to it.
func newAPIClients(t *testing.T, svc service.ClusterService) *clientSet {
	t.Helper()

	srv := httptest.NewServer(api.NewServer(svc))
	t.Cleanup(srv.Close)

	clients, err := newClientSet(srv.URL, "")
	require.NoError(t, err)
	return clients
}

func TestNewClientSet_InvalidServer(t *testing.T) {
	t.Parallel()

	_, err := newClientSet("ftp://console.example.com", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create console client")
}

func TestRunGet_ListThroughAPI(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockClusterService(ctrl)
	svc.EXPECT().ListDatabaseClusters(gomock.Any(), "default").Return([]*v1alpha1.DatabaseCluster{
		testCluster("default", "orders", 3),
		testCluster("default", "billing", 1),
	}, nil)

	clients := newAPIClients(t, svc)

	var buf bytes.Buffer
	err := runGet(context.Background(), &buf, clients.clusters, nil,
		getOptions{namespace: "default", output: outputJSON}, databaseClusterColumns)
	require.NoError(t, err)

	var got struct {
		Items []v1alpha1.DatabaseCluster `json:"items"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "orders", got.Items[0].Name)
	assert.Equal(t, "billing", got.Items[1].Name)
}

func TestRunGet_AllNamespaces(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockClusterService(ctrl)
	svc.EXPECT().ListMonitoringConfigs(gomock.Any(), "").Return([]*v1alpha1.MonitoringConfig{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "pmm", Namespace: "monitoring"},
			Spec: v1alpha1.MonitoringConfigSpec{
				Type: v1alpha1.MonitoringTypePMM,
				PMM:  v1alpha1.PMMConfig{URL: "https://pmm.example.com"},
			},
		},
	}, nil)

	clients := newAPIClients(t, svc)

	var buf bytes.Buffer
	err := runGet(context.Background(), &buf, clients.monitoringConfigs, nil,
		getOptions{namespace: "default", allNamespaces: true, output: outputTable}, monitoringConfigColumns)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "https://pmm.example.com")
	assert.Contains(t, buf.String(), "monitoring")
}

func TestRunGet_Single(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockClusterService(ctrl)
	svc.EXPECT().GetBackupStorage(gomock.Any(), "staging", "s3-eu").Return(&v1alpha1.BackupStorage{
		ObjectMeta: metav1.ObjectMeta{Name: "s3-eu", Namespace: "staging"},
		Spec: v1alpha1.BackupStorageSpec{
			Type:   v1alpha1.BackupStorageTypeS3,
			Bucket: "backups",
			Region: "eu-west-1",
		},
	}, nil)

	clients := newAPIClients(t, svc)

	var buf bytes.Buffer
	err := runGet(context.Background(), &buf, clients.backupStorages, []string{"staging/s3-eu"},
		getOptions{namespace: "default", output: outputJSON}, backupStorageColumns)
	require.NoError(t, err)

	var got v1alpha1.BackupStorage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "backups", got.Spec.Bucket)
}

func TestRunGet_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockClusterService(ctrl)
	svc.EXPECT().GetDatabaseCluster(gomock.Any(), "default", "missing").Return(nil, service.ErrNotFound)

	clients := newAPIClients(t, svc)

	err := runGet(context.Background(), &bytes.Buffer{}, clients.clusters, []string{"missing"},
		getOptions{namespace: "default"}, databaseClusterColumns)
	require.Error(t, err)
	assert.True(t, errdefs.IsNotFound(err))
	assert.Contains(t, err.Error(), "default/missing")
}

func TestRunGet_InvalidKey(t *testing.T) {
	t.Parallel()

	err := runGet(context.Background(), &bytes.Buffer{}, nil, []string{"Not_Valid/orders"},
		getOptions{namespace: "default"}, databaseClusterColumns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid namespace")
}

func TestFilterByName(t *testing.T) {
	t.Parallel()

	objs := []*v1alpha1.DatabaseCluster{
		testCluster("default", "orders-eu", 3),
		testCluster("default", "orders-us", 3),
		testCluster("default", "billing", 1),
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{name: "no patterns", want: []string{"orders-eu", "orders-us", "billing"}},
		{name: "prefix", patterns: []string{"orders-*"}, want: []string{"orders-eu", "orders-us"}},
		{name: "any of", patterns: []string{"billing", "*-us"}, want: []string{"orders-us", "billing"}},
		{name: "no match", patterns: []string{"inventory*"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := filterByName(objs, tt.patterns)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, obj := range got {
				names = append(names, obj.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFilterByName_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := filterByName([]*v1alpha1.DatabaseCluster{testCluster("default", "orders", 3)}, []string{"orders-[a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid match pattern")
}

func TestRunGet_MatchWithName(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	clients := newAPIClients(t, mocks.NewMockClusterService(ctrl))

	err := runGet(context.Background(), &bytes.Buffer{}, clients.clusters, []string{"orders"},
		getOptions{namespace: "default", output: outputJSON, match: []string{"orders-*"}}, databaseClusterColumns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--match cannot be combined")
}
