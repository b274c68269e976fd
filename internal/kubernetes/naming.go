package kubernetes

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/validation"
)

// ParseObjectKey parses "namespace/name". A bare name gets defaultNamespace.
//
// Kubernetes enforces RFC 1123 names, so both parts are checked here rather than
// waiting for the API server to reject the request:
//   - namespace must be a DNS label (max 63 characters)
//   - name must be a DNS subdomain (max 253 characters)
//
// Examples:
//   - ParseObjectKey("prod/orders", "default") -> prod/orders
//   - ParseObjectKey("orders", "default") -> default/orders
func ParseObjectKey(s, defaultNamespace string) (types.NamespacedName, error) {
	namespace, name, found := strings.Cut(s, "/")
	if !found {
		namespace, name = defaultNamespace, s
	}

	if namespace == "" {
		return types.NamespacedName{}, fmt.Errorf("kubernetes namespace cannot be empty")
	}
	if name == "" {
		return types.NamespacedName{}, fmt.Errorf("kubernetes name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return types.NamespacedName{}, fmt.Errorf("invalid object key %q: expected namespace/name", s)
	}
	if errs := validation.IsDNS1123Label(namespace); len(errs) > 0 {
		return types.NamespacedName{}, fmt.Errorf("invalid namespace %q: %s", namespace, strings.Join(errs, "; "))
	}
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return types.NamespacedName{}, fmt.Errorf("invalid name %q: %s", name, strings.Join(errs, "; "))
	}

	return types.NamespacedName{Namespace: namespace, Name: name}, nil
}

// FormatObjectKey is the inverse of ParseObjectKey.
func FormatObjectKey(key types.NamespacedName) string {
	return key.Namespace + "/" + key.Name
}
