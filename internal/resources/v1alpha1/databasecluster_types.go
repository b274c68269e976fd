package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EngineType is the database engine of a cluster.
type EngineType string

const (
	// EngineTypePostgresql is PostgreSQL.
	EngineTypePostgresql EngineType = "postgresql"
	// EngineTypePXC is Percona XtraDB Cluster.
	EngineTypePXC EngineType = "pxc"
	// EngineTypePSMDB is Percona Server for MongoDB.
	EngineTypePSMDB EngineType = "psmdb"
)

// AppState is the lifecycle state reported by the operator.
type AppState string

const (
	AppStateInit      AppState = "initializing"
	AppStateReady     AppState = "ready"
	AppStatePaused    AppState = "paused"
	AppStateUpgrading AppState = "upgrading"
	AppStateError     AppState = "error"
)

// Storage is the persistent volume of the engine.
type Storage struct {
	Size  string `json:"size" validate:"required,quantity"`
	Class string `json:"class,omitempty"`
}

// Engine describes the database engine.
type Engine struct {
	Type      EngineType                  `json:"type" validate:"required,oneof=postgresql pxc psmdb"`
	Version   string                      `json:"version,omitempty" validate:"omitempty,engineversion"`
	Replicas  int32                       `json:"replicas" validate:"min=1,max=9"`
	Storage   Storage                     `json:"storage"`
	Resources corev1.ResourceRequirements `json:"resources,omitempty" validate:"-"`
}

// ExposeType is how the cluster is reachable.
type ExposeType string

const (
	// ExposeTypeInternal keeps the cluster inside Kubernetes.
	ExposeTypeInternal ExposeType = "internal"
	// ExposeTypeExternal exposes the cluster through a load balancer.
	ExposeTypeExternal ExposeType = "external"
)

// Expose is the exposure setting of the proxy.
type Expose struct {
	Type ExposeType `json:"type,omitempty" validate:"omitempty,oneof=internal external"`
}

// Proxy configures the router in front of the engine.
type Proxy struct {
	Type     string `json:"type,omitempty" validate:"omitempty,oneof=mongos haproxy proxysql pgbouncer"`
	Replicas *int32 `json:"replicas,omitempty" validate:"omitempty,min=0,max=9"`
	Expose   Expose `json:"expose,omitempty"`
}

// BackupSchedule is a scheduled backup.
type BackupSchedule struct {
	Name              string `json:"name" validate:"required,dns1123"`
	Enabled           bool   `json:"enabled"`
	Schedule          string `json:"schedule" validate:"required"`
	BackupStorageName string `json:"backupStorageName" validate:"required"`
	RetentionCopies   int32  `json:"retentionCopies,omitempty" validate:"min=0"`
}

// Backup is the backup configuration of a cluster.
type Backup struct {
	Enabled   bool             `json:"enabled"`
	Schedules []BackupSchedule `json:"schedules,omitempty" validate:"unique=Name,dive"`
}

// Monitoring points at a MonitoringConfig.
type Monitoring struct {
	MonitoringConfigName string `json:"monitoringConfigName,omitempty"`
}

// DatabaseClusterSpec is the desired state of a DatabaseCluster.
type DatabaseClusterSpec struct {
	Engine     Engine     `json:"engine"`
	Proxy      Proxy      `json:"proxy,omitempty"`
	Backup     Backup     `json:"backup,omitempty"`
	Monitoring Monitoring `json:"monitoring,omitempty"`
	Paused     bool       `json:"paused,omitempty"`
}

// DatabaseClusterStatus is written by the operator.
type DatabaseClusterStatus struct {
	Status             AppState `json:"status,omitempty"`
	Hostname           string   `json:"hostname,omitempty"`
	Port               int32    `json:"port,omitempty"`
	Ready              int32    `json:"ready,omitempty"`
	Size               int32    `json:"size,omitempty"`
	Message            string   `json:"message,omitempty"`
	ObservedGeneration int64    `json:"observedGeneration,omitempty"`
}

// IsZero reports whether the operator has not written anything yet.
func (s DatabaseClusterStatus) IsZero() bool {
	return s == DatabaseClusterStatus{}
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=dbc

// DatabaseCluster is a managed database.
type DatabaseCluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DatabaseClusterSpec   `json:"spec,omitempty"`
	Status DatabaseClusterStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DatabaseClusterList contains a list of DatabaseCluster
type DatabaseClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DatabaseCluster `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DatabaseCluster{}, &DatabaseClusterList{})
}
