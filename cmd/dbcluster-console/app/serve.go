package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	consoleapp "github.com/stacklok/dbcluster-console/internal/app"
	"github.com/stacklok/dbcluster-console/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console API server",
	Long: `Start the console API server.

The optional configuration file (--config) sets the listen address, the Kubernetes
connection and watched namespaces, the conflict window used by edits and telemetry.
See the examples/ directory for a sample configuration.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides server.address)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
}

// loadConfig reads the file named by --config, or returns the defaults when none is given.
// --kubeconfig overrides kubernetes.kubeconfig.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	configPath := viper.GetString("config")
	if configPath == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.LoadConfig(config.WithConfigPath(configPath))
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		slog.Debug("Loaded configuration", "path", configPath)
	}

	if kubeconfig := viper.GetString("kubeconfig"); kubeconfig != "" {
		cfg.Kubernetes.Kubeconfig = kubeconfig
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := []consoleapp.ConsoleAppOptions{consoleapp.WithConfig(cfg)}
	if address := viper.GetString("address"); address != "" {
		opts = append(opts, consoleapp.WithAddress(address))
	}

	consoleApp, err := consoleapp.NewConsoleApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create console app: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- consoleApp.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			_ = consoleApp.Stop(cfg.Server.GetShutdownTimeout())
			return err
		}
		return nil
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	}

	if err := consoleApp.Stop(cfg.Server.GetShutdownTimeout()); err != nil {
		return err
	}
	return <-errCh
}
