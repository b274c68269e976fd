// Package integration runs the console server against a fake Kubernetes API and edits
// resources through the REST client, including edits that race with other writers.
package integration
