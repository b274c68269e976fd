package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BackupStorageType is the object storage flavour.
type BackupStorageType string

const (
	// BackupStorageTypeS3 is any S3 compatible storage.
	BackupStorageTypeS3 BackupStorageType = "s3"
	// BackupStorageTypeAzure is Azure Blob storage.
	BackupStorageTypeAzure BackupStorageType = "azure"
)

// BackupStorageSpec is the desired state of a BackupStorage.
type BackupStorageSpec struct {
	Type                  BackupStorageType `json:"type" validate:"required,oneof=s3 azure"`
	Bucket                string            `json:"bucket" validate:"required"`
	Region                string            `json:"region,omitempty" validate:"required_if=Type s3"`
	EndpointURL           string            `json:"endpointURL,omitempty" validate:"omitempty,url"`
	CredentialsSecretName string            `json:"credentialsSecretName" validate:"required"`
	Description           string            `json:"description,omitempty" validate:"max=256"`
	VerifyTLS             *bool             `json:"verifyTLS,omitempty"`
	ForcePathStyle        *bool             `json:"forcePathStyle,omitempty"`
}

// BackupStorageStatus is written by the operator.
type BackupStorageStatus struct {
	UsedNamespaces map[string]bool `json:"usedNamespaces,omitempty"`
}

// IsZero reports whether the operator has not written anything yet.
func (s BackupStorageStatus) IsZero() bool {
	return len(s.UsedNamespaces) == 0
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// BackupStorage is a backup target shared by database clusters.
type BackupStorage struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BackupStorageSpec   `json:"spec,omitempty"`
	Status BackupStorageStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// BackupStorageList contains a list of BackupStorage
type BackupStorageList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []BackupStorage `json:"items"`
}

func init() {
	SchemeBuilder.Register(&BackupStorage{}, &BackupStorageList{})
}
