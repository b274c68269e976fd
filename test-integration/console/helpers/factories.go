package helpers

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

// NewDatabaseCluster returns a ready PXC cluster with the given replica count
func NewDatabaseCluster(namespace, name string, replicas int32) *v1alpha1.DatabaseCluster {
	return &v1alpha1.DatabaseCluster{
		ObjectMeta: metav1.ObjectMeta{
			Name:       name,
			Namespace:  namespace,
			Generation: 1,
		},
		Spec: v1alpha1.DatabaseClusterSpec{
			Engine: v1alpha1.Engine{
				Type:     v1alpha1.EngineTypePXC,
				Version:  "8.0.36",
				Replicas: replicas,
				Storage:  v1alpha1.Storage{Size: "10Gi"},
			},
		},
		Status: v1alpha1.DatabaseClusterStatus{
			Status: v1alpha1.AppStateReady,
			Ready:  replicas,
			Size:   replicas,
		},
	}
}

// NewBackupStorage returns an S3 backup storage
func NewBackupStorage(namespace, name string) *v1alpha1.BackupStorage {
	return &v1alpha1.BackupStorage{
		ObjectMeta: metav1.ObjectMeta{
			Name:       name,
			Namespace:  namespace,
			Generation: 1,
		},
		Spec: v1alpha1.BackupStorageSpec{
			Type:                  v1alpha1.BackupStorageTypeS3,
			Bucket:                "backups",
			Region:                "eu-west-1",
			CredentialsSecretName: name + "-credentials",
		},
	}
}
