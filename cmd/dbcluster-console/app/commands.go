// Package app provides the entry point for the database cluster console application.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/dbcluster-console/internal/config"
	"github.com/stacklok/dbcluster-console/internal/logging"
	"github.com/stacklok/dbcluster-console/internal/versions"
)

var rootCmd = &cobra.Command{
	Use:               "dbcluster-console",
	DisableAutoGenTag: true,
	Short:             "Database cluster console",
	Long: `dbcluster-console serves a REST API over DatabaseCluster, BackupStorage and
MonitoringConfig resources and edits them from the command line.

Edits are optimistic: a write that loses a race against an unrelated status update is
rebased and retried for a few seconds; a concurrent spec change is reported instead.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if viper.GetBool("debug") {
			logging.Setup(slog.LevelDebug)
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

// NewRootCmd creates a new root command for the console.
func NewRootCmd() *cobra.Command {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug mode")
	flags.String("config", "", "Path to configuration file (YAML format)")
	flags.String("server", "", "Console API URL; when empty the Kubernetes API is used directly")
	flags.String("kubeconfig", "", "Path to a kubeconfig file; in-cluster config is tried first")
	flags.StringP("namespace", "n", "default", "Namespace of the resource")

	for _, name := range []string{"debug", "config", "server", "kubeconfig", "namespace"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newEditCmd())

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versions.GetVersionInfo()
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format version info: %w", err)
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		case "":
			_, err = fmt.Fprintf(out, "Version:     %s\nCommit:      %s\nBuilt:       %s\nAPI:         %s\nGo:          %s\nPlatform:    %s\n",
				info.Version, info.Commit, info.BuildDate, info.APIVersion, info.GoVersion, info.Platform)
			return err
		default:
			return fmt.Errorf("unsupported format %q", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "", "Output format (json)")
}
