// Package kubernetes talks to the Kubernetes API on behalf of the console. It provides
// typed backends for the dbaas resources that plug into the mutation coordinator, and a
// controller that keeps the console's cache warm by watching those resources.
package kubernetes
