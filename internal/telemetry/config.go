// Package telemetry wires OpenTelemetry tracing and metrics for the console: OTLP/HTTP
// export, an optional Prometheus scrape endpoint, HTTP instrumentation and the mutation
// and cache instruments.
package telemetry

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultServiceName identifies the console in exported telemetry
	DefaultServiceName = "dbcluster-console"

	// DefaultEndpoint is the OTLP/HTTP collector address
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling samples 5% of traces
	DefaultSampling = 0.05

	// DefaultExportInterval is how often metrics are pushed to the collector
	DefaultExportInterval = 60 * time.Second
)

// Config is the telemetry section of the console configuration.
//
// Nothing is exported unless Enabled is set and the matching Tracing or Metrics block is
// enabled as well.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// ServiceName defaults to DefaultServiceName
	ServiceName string `yaml:"serviceName,omitempty"`
	// ServiceVersion defaults to "unknown"
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is a host:port; the exporters append /v1/traces and /v1/metrics
	Endpoint string `yaml:"endpoint,omitempty"`
	// Insecure sends telemetry over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`
	// Headers are added to every export request, e.g. a collector API key
	Headers map[string]string `yaml:"headers,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of sampled traces in (0, 1]
	Sampling *float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval between OTLP pushes (duration string), DefaultExportInterval when empty
	Interval string `yaml:"interval,omitempty"`

	// Prometheus additionally serves the console's metrics on /metrics
	Prometheus bool `yaml:"prometheus,omitempty"`
}

// GetServiceName returns the service name or DefaultServiceName
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version or "unknown"
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the collector endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// TracingEnabled reports whether spans are exported.
func (c *Config) TracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

// MetricsEnabled reports whether metrics are exported.
func (c *Config) MetricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled
}

// PrometheusEnabled reports whether /metrics should be served.
func (c *Config) PrometheusEnabled() bool {
	return c.MetricsEnabled() && c.Metrics.Prometheus
}

// GetSampling returns the sampling ratio or DefaultSampling
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == nil {
		return DefaultSampling
	}
	return *c.Sampling
}

// GetInterval returns the export interval or DefaultExportInterval
func (c *MetricsConfig) GetInterval() time.Duration {
	if c.Interval == "" {
		return DefaultExportInterval
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return DefaultExportInterval
	}
	return d
}

// Validate checks the enabled parts of the configuration. A nil or disabled config is valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	for name := range c.Headers {
		if name == "" {
			errs = append(errs, errors.New("headers: empty header name"))
		}
	}
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	return errors.Join(errs...)
}

// Validate checks the sampling ratio.
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled || c.Sampling == nil {
		return nil
	}
	if s := *c.Sampling; s <= 0 || s > 1.0 {
		return fmt.Errorf("sampling must be greater than 0.0 and at most 1.0, got %f", s)
	}
	return nil
}

// Validate checks the export interval.
func (c *MetricsConfig) Validate() error {
	if c == nil || !c.Enabled || c.Interval == "" {
		return nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	return nil
}
