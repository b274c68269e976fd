// Package service provides the business logic for the console API
package service

import (
	"context"
	"errors"

	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

var (
	// ErrNotFound is returned when an object does not exist or is hidden from the console
	ErrNotFound = errors.New("not found")
	// ErrNotReady is returned by CheckReadiness while the resource cache is still filling
	ErrNotReady = errors.New("resource cache not synced")
	// ErrNotConfigured is returned for a resource kind the service was not given a backend for
	ErrNotConfigured = errors.New("resource kind not configured")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go ClusterService

// ClusterService defines the interface for console operations on database resources.
//
// Update methods are a single optimistic write: the caller's resourceVersion is sent as-is
// and a stale one fails with a conflict that mutation.IsConflict recognises.
type ClusterService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListDatabaseClusters returns the clusters in namespace, or in every namespace when empty
	ListDatabaseClusters(ctx context.Context, namespace string) ([]*v1alpha1.DatabaseCluster, error)
	// GetDatabaseCluster returns a single cluster
	GetDatabaseCluster(ctx context.Context, namespace, name string) (*v1alpha1.DatabaseCluster, error)
	// UpdateDatabaseCluster validates and writes a cluster
	UpdateDatabaseCluster(ctx context.Context, cluster *v1alpha1.DatabaseCluster) (*v1alpha1.DatabaseCluster, error)

	// ListBackupStorages returns the backup storages in namespace, or in every namespace when empty
	ListBackupStorages(ctx context.Context, namespace string) ([]*v1alpha1.BackupStorage, error)
	// GetBackupStorage returns a single backup storage
	GetBackupStorage(ctx context.Context, namespace, name string) (*v1alpha1.BackupStorage, error)
	// UpdateBackupStorage validates and writes a backup storage
	UpdateBackupStorage(ctx context.Context, storage *v1alpha1.BackupStorage) (*v1alpha1.BackupStorage, error)

	// ListMonitoringConfigs returns the monitoring configs in namespace, or in every namespace when empty
	ListMonitoringConfigs(ctx context.Context, namespace string) ([]*v1alpha1.MonitoringConfig, error)
	// GetMonitoringConfig returns a single monitoring config
	GetMonitoringConfig(ctx context.Context, namespace, name string) (*v1alpha1.MonitoringConfig, error)
	// UpdateMonitoringConfig validates and writes a monitoring config
	UpdateMonitoringConfig(ctx context.Context, config *v1alpha1.MonitoringConfig) (*v1alpha1.MonitoringConfig, error)
}
