package app

import (
	"context"
	"fmt"
	"io"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/kubernetes"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Display one or many resources",
	}

	cmd.AddCommand(
		newGetKindCmd("database-clusters", []string{"database-cluster", "dbc"},
			func(c *clientSet) resourceClient[*v1alpha1.DatabaseCluster] { return c.clusters },
			databaseClusterColumns),
		newGetKindCmd("backup-storages", []string{"backup-storage", "bs"},
			func(c *clientSet) resourceClient[*v1alpha1.BackupStorage] { return c.backupStorages },
			backupStorageColumns),
		newGetKindCmd("monitoring-configs", []string{"monitoring-config", "mc"},
			func(c *clientSet) resourceClient[*v1alpha1.MonitoringConfig] { return c.monitoringConfigs },
			monitoringConfigColumns),
	)
	return cmd
}

type getOptions struct {
	namespace     string
	allNamespaces bool
	output        string
	match         []string
}

func newGetKindCmd[T cache.Object[T]](
	use string,
	aliases []string,
	pick func(*clientSet) resourceClient[T],
	cols columns[T],
) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use + " [NAME]",
		Aliases: aliases,
		Short:   "Display " + use,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			all, err := cmd.Flags().GetBool("all-namespaces")
			if err != nil {
				return err
			}
			match, err := cmd.Flags().GetStringSlice("match")
			if err != nil {
				return err
			}

			clients, err := clientsFromFlags()
			if err != nil {
				return err
			}

			return runGet(cmd.Context(), cmd.OutOrStdout(), pick(clients), args, getOptions{
				namespace:     viper.GetString("namespace"),
				allNamespaces: all,
				output:        output,
				match:         match,
			}, cols)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output format: table, yaml or json (default table on a terminal, yaml otherwise)")
	cmd.Flags().BoolP("all-namespaces", "A", false, "List the resources across all namespaces")
	cmd.Flags().StringSlice("match", nil, "Only list resources whose name matches one of these glob patterns")
	return cmd
}

// runGet prints the object named by args, or every object of the namespace when args is empty.
func runGet[T cache.Object[T]](
	ctx context.Context,
	out io.Writer,
	client resourceClient[T],
	args []string,
	opts getOptions,
	cols columns[T],
) error {
	if len(args) == 1 {
		if len(opts.match) > 0 {
			return fmt.Errorf("--match cannot be combined with a resource name")
		}
		key, err := kubernetes.ParseObjectKey(args[0], opts.namespace)
		if err != nil {
			return err
		}
		obj, err := client.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", kubernetes.FormatObjectKey(key), err)
		}
		return printObject(out, opts.output, obj, cols)
	}

	namespace := opts.namespace
	if opts.allNamespaces {
		namespace = ""
	}
	objs, err := client.List(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to list: %w", err)
	}
	if objs, err = filterByName(objs, opts.match); err != nil {
		return err
	}
	return printList(out, opts.output, objs, cols)
}

// filterByName keeps the objects whose name matches any of patterns.
// No patterns keeps everything.
func filterByName[T cache.Object[T]](objs []T, patterns []string) ([]T, error) {
	if len(patterns) == 0 {
		return objs, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	kept := make([]T, 0, len(objs))
	for _, obj := range objs {
		for _, g := range globs {
			if g.Match(obj.GetName()) {
				kept = append(kept, obj)
				break
			}
		}
	}
	return kept, nil
}
