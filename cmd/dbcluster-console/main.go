// Package main is the entry point for the database cluster console.
package main

import (
	"os"

	"github.com/stacklok/dbcluster-console/cmd/dbcluster-console/app"
	"github.com/stacklok/dbcluster-console/internal/logging"
)

func main() {
	// Logs go to stderr so that get and version output can be piped.
	logging.Setup(logging.LevelFromEnv())

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
