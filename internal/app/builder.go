package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/stacklok/dbcluster-console/internal/api"
	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/config"
	"github.com/stacklok/dbcluster-console/internal/kubernetes"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/service"
	"github.com/stacklok/dbcluster-console/internal/service/kube"
	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	tracerName = "github.com/stacklok/dbcluster-console"
)

// ConsoleAppOptions is a function that configures the console app builder
type ConsoleAppOptions func(*consoleAppConfig) error

// consoleAppConfig collects everything NewConsoleApp needs.
// Component overrides are mostly used by tests.
type consoleAppConfig struct {
	config *config.Config

	// Optional component overrides
	kubeClient     client.Client
	clusterService service.ClusterService
	watcher        Watcher
	telemetry      *telemetry.Telemetry

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...ConsoleAppOptions) (*consoleAppConfig, error) {
	cfg := &consoleAppConfig{
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		idleTimeout:  defaultIdleTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		cfg.config = config.Default()
	}
	if cfg.address == "" {
		cfg.address = cfg.config.Server.GetAddress()
	}
	if cfg.requestTimeout == 0 {
		cfg.requestTimeout = cfg.config.Server.GetRequestTimeout()
	}

	return cfg, nil
}

// NewConsoleApp builds the application from the given options
func NewConsoleApp(
	ctx context.Context,
	opts ...ConsoleAppOptions,
) (*ConsoleApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.config.Telemetry))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	// Build service components
	svc, watcher, err := buildServiceComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	// Build HTTP server
	httpServer, err := buildHTTPServer(ctx, cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	// Create application context
	appCtx, cancel := context.WithCancel(ctx)

	return &ConsoleApp{
		config: cfg.config,
		components: &AppComponents{
			ClusterService: svc,
			Watcher:        watcher,
			Telemetry:      cfg.telemetry,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding server.address
func WithAddress(addr string) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithKubeClient allows injecting the Kubernetes client (for testing)
func WithKubeClient(c client.Client) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		cfg.kubeClient = c
		return nil
	}
}

// WithClusterService allows injecting a custom cluster service (for testing)
func WithClusterService(svc service.ClusterService) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		cfg.clusterService = svc
		return nil
	}
}

// WithWatcher allows injecting a custom cache watcher (for testing)
func WithWatcher(w Watcher) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		cfg.watcher = w
		return nil
	}
}

// WithTelemetry sets already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) ConsoleAppOptions {
	return func(cfg *consoleAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildServiceComponents builds the cluster service and, when watching is enabled, the cache watcher
func buildServiceComponents(
	_ context.Context,
	b *consoleAppConfig,
) (service.ClusterService, Watcher, error) {
	if b.clusterService != nil {
		return b.clusterService, b.watcher, nil
	}

	slog.Info("Initializing service components")

	if b.kubeClient == nil {
		c, err := kubernetes.NewClient(b.config.Kubernetes.Kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}
		b.kubeClient = c
	}

	clusters := cache.NewStore[*v1alpha1.DatabaseCluster]()
	backupStorages := cache.NewStore[*v1alpha1.BackupStorage]()
	monitoringConfigs := cache.NewStore[*v1alpha1.MonitoringConfig]()

	watcher := b.watcher
	if watcher == nil && b.config.Kubernetes.WatchEnabled() {
		w, err := buildCacheWatcher(b, clusters, backupStorages, monitoringConfigs)
		if err != nil {
			return nil, nil, err
		}
		watcher = w
	}

	svcOpts := []kube.Option{
		kube.WithDatabaseClusters(kubernetes.NewDatabaseClusterBackend(b.kubeClient), clusters),
		kube.WithBackupStorages(kubernetes.NewBackupStorageBackend(b.kubeClient), backupStorages),
		kube.WithMonitoringConfigs(kubernetes.NewMonitoringConfigBackend(b.kubeClient), monitoringConfigs),
		kube.WithTracer(b.telemetry.Tracer(tracerName)),
	}
	if watcher != nil {
		svcOpts = append(svcOpts, kube.WithCacheSync(watcher))
	}

	svc, err := kube.New(svcOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cluster service: %w", err)
	}

	slog.Info("Service components initialized successfully", "watch", watcher != nil)
	return svc, watcher, nil
}

func buildCacheWatcher(
	b *consoleAppConfig,
	clusters *cache.Store[*v1alpha1.DatabaseCluster],
	backupStorages *cache.Store[*v1alpha1.BackupStorage],
	monitoringConfigs *cache.Store[*v1alpha1.MonitoringConfig],
) (*kubernetes.CacheWatcher, error) {
	restConfig, err := kubernetes.GetRestConfig(b.config.Kubernetes.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes config: %w", err)
	}

	cacheMetrics, err := telemetry.NewCacheMetrics(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create cache metrics: %w", err)
	}

	w, err := kubernetes.NewCacheWatcher(
		kubernetes.WithRestConfig(restConfig),
		kubernetes.WithNamespaces(b.config.Kubernetes.Namespaces...),
		kubernetes.WithDatabaseClusterStore(clusters),
		kubernetes.WithBackupStorageStore(backupStorages),
		kubernetes.WithMonitoringConfigStore(monitoringConfigs),
		kubernetes.WithCacheMetrics(cacheMetrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache watcher: %w", err)
	}
	return w, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *consoleAppConfig,
	svc service.ClusterService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	// Use default middlewares if not provided
	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	serverOpts := []api.ServerOption{}

	if b.telemetry != nil {
		// Tracing and metrics go first to capture every request
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		prefix := []func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.telemetry.TracerProvider())}
		if metricsMiddleware != nil {
			prefix = append(prefix, metricsMiddleware)
		}
		b.middlewares = append(prefix, b.middlewares...)

		if handler := b.telemetry.MetricsHandler(); handler != nil {
			serverOpts = append(serverOpts, api.WithMetricsHandler(handler))
		}
	}

	serverOpts = append(serverOpts, api.WithMiddlewares(b.middlewares...))
	router := api.NewServer(svc, serverOpts...)

	// Create HTTP server
	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
