// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"k8s.io/apimachinery/pkg/util/validation"
)

// GetNamespaceParam returns the decoded namespace path parameter. A namespace must be a
// DNS-1123 label.
func GetNamespaceParam(r *http.Request) (string, error) {
	return objectParam(r, "namespace", validation.IsDNS1123Label)
}

// GetNameParam returns the decoded name path parameter. A name must be a DNS-1123 subdomain.
func GetNameParam(r *http.Request) (string, error) {
	return objectParam(r, "name", validation.IsDNS1123Subdomain)
}

func objectParam(r *http.Request, paramName string, check func(string) []string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, paramName))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", paramName)
	}

	if strings.TrimSpace(decoded) == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}

	if errs := check(decoded); len(errs) > 0 {
		return "", fmt.Errorf("invalid %s %q: %s", paramName, decoded, strings.Join(errs, "; "))
	}

	return decoded, nil
}
