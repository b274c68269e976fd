// Package helpers starts the console for integration tests.
package helpers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/onsi/gomega"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	consoleapp "github.com/stacklok/dbcluster-console/internal/app"
	"github.com/stacklok/dbcluster-console/internal/config"
	"github.com/stacklok/dbcluster-console/internal/httpclient"
	"github.com/stacklok/dbcluster-console/internal/kubernetes"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

// ServerTestHelper manages the console server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	kubeClient client.Client
	baseURL    string
	address    string
	httpClient *http.Client
	app        *consoleapp.ConsoleApp
}

// NewFakeKubeClient returns a fake Kubernetes client holding objects. Status is served as
// a subresource, so plain updates leave it untouched as they would on a real cluster.
func NewFakeKubeClient(objects ...client.Object) client.Client {
	scheme, err := kubernetes.NewScheme()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(objects...).
		WithStatusSubresource(
			&v1alpha1.DatabaseCluster{},
			&v1alpha1.BackupStorage{},
			&v1alpha1.MonitoringConfig{},
		).
		Build()
}

// NewServerTestHelper creates a helper serving kubeClient on a free local port
func NewServerTestHelper(ctx context.Context, kubeClient client.Client) *ServerTestHelper {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	address := listener.Addr().String()
	gomega.Expect(listener.Close()).To(gomega.Succeed())

	return &ServerTestHelper{
		ctx:        ctx,
		kubeClient: kubeClient,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// StartServer starts the console programmatically
func (s *ServerTestHelper) StartServer() error {
	cfg := config.Default()
	cfg.Kubernetes.Watch = ptr.To(false)

	app, err := consoleapp.NewConsoleApp(s.ctx,
		consoleapp.WithConfig(cfg),
		consoleapp.WithAddress(s.address),
		consoleapp.WithKubeClient(s.kubeClient),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	// Start the server in a goroutine (non-blocking)
	go func() {
		if err := app.Start(); err != nil {
			// The test will fail when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the console
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// ConsoleClient returns a REST client for the running server
func (s *ServerTestHelper) ConsoleClient() *httpclient.ConsoleClient {
	c, err := httpclient.NewConsoleClient(s.baseURL, httpclient.NewDefaultClient(5*time.Second))
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return c
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}
