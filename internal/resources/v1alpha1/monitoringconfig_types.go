package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MonitoringType is the monitoring backend.
type MonitoringType string

// MonitoringTypePMM is Percona Monitoring and Management.
const MonitoringTypePMM MonitoringType = "pmm"

// PMMConfig is the PMM server a cluster reports to.
type PMMConfig struct {
	URL   string `json:"url" validate:"required,url"`
	Image string `json:"image,omitempty"`
}

// MonitoringConfigSpec is the desired state of a MonitoringConfig.
type MonitoringConfigSpec struct {
	Type                  MonitoringType `json:"type" validate:"required,oneof=pmm"`
	PMM                   PMMConfig      `json:"pmm,omitempty"`
	CredentialsSecretName string         `json:"credentialsSecretName" validate:"required"`
	AllowedNamespaces     []string       `json:"allowedNamespaces,omitempty" validate:"dive,dns1123"`
}

// MonitoringConfigStatus is written by the operator.
type MonitoringConfigStatus struct {
	InUse                  bool  `json:"inUse,omitempty"`
	LastObservedGeneration int64 `json:"lastObservedGeneration,omitempty"`
}

// IsZero reports whether the operator has not written anything yet.
func (s MonitoringConfigStatus) IsZero() bool {
	return s == MonitoringConfigStatus{}
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// MonitoringConfig is a monitoring endpoint shared by database clusters.
type MonitoringConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   MonitoringConfigSpec   `json:"spec,omitempty"`
	Status MonitoringConfigStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// MonitoringConfigList contains a list of MonitoringConfig
type MonitoringConfigList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MonitoringConfig `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MonitoringConfig{}, &MonitoringConfigList{})
}
