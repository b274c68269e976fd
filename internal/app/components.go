package app

import (
	"context"

	"github.com/stacklok/dbcluster-console/internal/service"
	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

// Watcher keeps the resource stores warm until its context is cancelled
type Watcher interface {
	Start(ctx context.Context) error
	Synced() bool
}

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// ClusterService provides the resource API business logic
	ClusterService service.ClusterService

	// Watcher keeps the read cache warm (optional)
	Watcher Watcher

	// Telemetry holds the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
