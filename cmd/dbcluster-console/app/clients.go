package app

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/editor"
	"github.com/stacklok/dbcluster-console/internal/httpclient"
	"github.com/stacklok/dbcluster-console/internal/kubernetes"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

// resourceClient reads and writes one kind, through the console API or the Kubernetes API.
type resourceClient[T cache.Object[T]] interface {
	editor.Backend[T]
	List(ctx context.Context, namespace string) ([]T, error)
}

type clientSet struct {
	clusters          resourceClient[*v1alpha1.DatabaseCluster]
	backupStorages    resourceClient[*v1alpha1.BackupStorage]
	monitoringConfigs resourceClient[*v1alpha1.MonitoringConfig]
}

// newClientSet talks to the console API at server, or to Kubernetes when server is empty.
func newClientSet(server, kubeconfig string) (*clientSet, error) {
	if server != "" {
		c, err := httpclient.NewConsoleClient(server, httpclient.NewDefaultClient(0))
		if err != nil {
			return nil, fmt.Errorf("failed to create console client: %w", err)
		}
		return &clientSet{
			clusters:          c.DatabaseClusters(),
			backupStorages:    c.BackupStorages(),
			monitoringConfigs: c.MonitoringConfigs(),
		}, nil
	}

	kc, err := kubernetes.NewClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return &clientSet{
		clusters:          kubernetes.NewDatabaseClusterBackend(kc),
		backupStorages:    kubernetes.NewBackupStorageBackend(kc),
		monitoringConfigs: kubernetes.NewMonitoringConfigBackend(kc),
	}, nil
}

// clientsFromFlags builds the clients selected by --server and --kubeconfig.
// Tests replace it.
var clientsFromFlags = func() (*clientSet, error) {
	return newClientSet(viper.GetString("server"), viper.GetString("kubeconfig"))
}
