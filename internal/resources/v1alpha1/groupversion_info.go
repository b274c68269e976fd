// Package v1alpha1 contains the database resources edited through the console.
// +kubebuilder:object:generate=true
// +groupName=dbaas.stacklok.dev
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// GroupVersion is group version used to register these objects
	GroupVersion = schema.GroupVersion{Group: "dbaas.stacklok.dev", Version: "v1alpha1"}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

const (
	// KindDatabaseCluster is the kind of DatabaseCluster objects
	KindDatabaseCluster = "DatabaseCluster"
	// KindBackupStorage is the kind of BackupStorage objects
	KindBackupStorage = "BackupStorage"
	// KindMonitoringConfig is the kind of MonitoringConfig objects
	KindMonitoringConfig = "MonitoringConfig"
)
