// Package config provides configuration loading and management for the console server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

const (
	// EnvPrefix is the prefix for environment variables read by the console
	EnvPrefix = "DBCC"

	// DefaultAddress is the listen address used when server.address is not set
	DefaultAddress = ":8080"

	// DefaultShutdownTimeout bounds graceful shutdown when server.shutdownTimeout is not set
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultRequestTimeout bounds a single API request when server.requestTimeout is not set
	DefaultRequestTimeout = 60 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Kubernetes KubernetesConfig  `yaml:"kubernetes"`
	Mutation   MutationConfig    `yaml:"mutation"`
	Telemetry  *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080"
	Address string `yaml:"address,omitempty"`

	// RequestTimeout bounds a single request (duration string)
	RequestTimeout string `yaml:"requestTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (duration string)
	ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"`
}

// KubernetesConfig configures access to the cluster that holds the database resources
type KubernetesConfig struct {
	// Kubeconfig is the path to a kubeconfig file. Empty means in-cluster, then the default loading rules.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// Namespaces restricts the console to these namespaces. Empty means all namespaces.
	Namespaces []string `yaml:"namespaces,omitempty"`

	// Watch keeps an in-memory cache of the resources up to date. Defaults to true.
	Watch *bool `yaml:"watch,omitempty"`
}

// MutationConfig tunes the conflict handling of edits
type MutationConfig struct {
	// MaxWindow is how long conflicts are retried after the first one (duration string)
	MaxWindow string `yaml:"maxWindow,omitempty"`

	// RetryDelay is the pause before refetching after a conflict (duration string)
	RetryDelay string `yaml:"retryDelay,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	errs = append(errs, validateDuration("server.requestTimeout", c.Server.RequestTimeout, false))
	errs = append(errs, validateDuration("server.shutdownTimeout", c.Server.ShutdownTimeout, false))
	errs = append(errs, validateDuration("mutation.maxWindow", c.Mutation.MaxWindow, false))
	errs = append(errs, validateDuration("mutation.retryDelay", c.Mutation.RetryDelay, true))

	seen := make(map[string]bool)
	for i, ns := range c.Kubernetes.Namespaces {
		if msgs := validation.IsDNS1123Label(ns); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("kubernetes.namespaces[%d]: %q is not a valid namespace", i, ns))
			continue
		}
		if seen[ns] {
			errs = append(errs, fmt.Errorf("kubernetes.namespaces[%d]: duplicate namespace %q", i, ns))
		}
		seen[ns] = true
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func validateDuration(field, value string, allowZero bool) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '5s', '200ms'): %w", field, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("%s must be greater than zero", field)
	}
	return nil
}

// GetAddress returns the listen address, using DefaultAddress if not specified
func (s *ServerConfig) GetAddress() string {
	if s.Address == "" {
		return DefaultAddress
	}
	return s.Address
}

// GetRequestTimeout returns the request timeout, using DefaultRequestTimeout if not specified
func (s *ServerConfig) GetRequestTimeout() time.Duration {
	return parseOr(s.RequestTimeout, DefaultRequestTimeout)
}

// GetShutdownTimeout returns the shutdown timeout, using DefaultShutdownTimeout if not specified
func (s *ServerConfig) GetShutdownTimeout() time.Duration {
	return parseOr(s.ShutdownTimeout, DefaultShutdownTimeout)
}

// WatchEnabled reports whether the resource cache should be kept warm
func (k *KubernetesConfig) WatchEnabled() bool {
	return k.Watch == nil || *k.Watch
}

// GetMaxWindow returns the conflict window, using mutation.DefaultMaxWindow if not specified
func (m *MutationConfig) GetMaxWindow() time.Duration {
	return parseOr(m.MaxWindow, mutation.DefaultMaxWindow)
}

// GetRetryDelay returns the retry delay, using mutation.DefaultRetryDelay if not specified
func (m *MutationConfig) GetRetryDelay() time.Duration {
	return parseOr(m.RetryDelay, mutation.DefaultRetryDelay)
}

// CoordinatorOptions converts the configuration to coordinator options
func (m *MutationConfig) CoordinatorOptions() []mutation.Option {
	return []mutation.Option{
		mutation.WithMaxWindow(m.GetMaxWindow()),
		mutation.WithRetryDelay(m.GetRetryDelay()),
	}
}

func parseOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
