package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/editor"
	"github.com/stacklok/dbcluster-console/internal/kubernetes"
	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

const editTracerName = "github.com/stacklok/dbcluster-console/edit"

var errNoChanges = errors.New("no changes requested, set at least one flag")

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change a resource",
		Long: `Change a resource in place.

The change is applied to the latest known version of the object. If the write loses a
race against a status update it is rebased and retried; if someone else changed the
spec in the meantime the edit is refused and nothing is written.`,
	}

	cmd.AddCommand(
		newEditDatabaseClusterCmd(),
		newEditBackupStorageCmd(),
		newEditMonitoringConfigCmd(),
	)
	return cmd
}

func newEditDatabaseClusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "database-cluster NAME",
		Aliases: []string{"dbc"},
		Short:   "Change a DatabaseCluster",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			change, err := databaseClusterChange(cmd.Flags())
			if err != nil {
				return err
			}
			clients, err := clientsFromFlags()
			if err != nil {
				return err
			}
			return runEdit[*v1alpha1.DatabaseCluster](cmd, clients.clusters, v1alpha1.KindDatabaseCluster, args[0], change,
				editor.WithValidation[*v1alpha1.DatabaseCluster](v1alpha1.ValidateDatabaseClusterUpdate),
				editor.WithMerger[*v1alpha1.DatabaseCluster](
					mutation.MergerFunc[*v1alpha1.DatabaseCluster](v1alpha1.MergeDatabaseCluster)),
			)
		},
	}

	f := cmd.Flags()
	f.Int32("replicas", 0, "Number of engine replicas")
	f.String("engine-version", "", "Engine version, downgrades are rejected")
	f.Bool("paused", false, "Pause or resume the cluster")
	f.String("storage-size", "", "Size of the engine volume, e.g. 20Gi")
	return cmd
}

// databaseClusterChange builds the change from the flags that were set.
func databaseClusterChange(flags *pflag.FlagSet) (func(*v1alpha1.DatabaseCluster), error) {
	var changes []func(*v1alpha1.DatabaseCluster)

	if flags.Changed("replicas") {
		replicas, err := flags.GetInt32("replicas")
		if err != nil {
			return nil, err
		}
		changes = append(changes, func(dc *v1alpha1.DatabaseCluster) { dc.Spec.Engine.Replicas = replicas })
	}
	if flags.Changed("engine-version") {
		version, err := flags.GetString("engine-version")
		if err != nil {
			return nil, err
		}
		changes = append(changes, func(dc *v1alpha1.DatabaseCluster) { dc.Spec.Engine.Version = version })
	}
	if flags.Changed("paused") {
		paused, err := flags.GetBool("paused")
		if err != nil {
			return nil, err
		}
		changes = append(changes, func(dc *v1alpha1.DatabaseCluster) { dc.Spec.Paused = paused })
	}
	if flags.Changed("storage-size") {
		size, err := flags.GetString("storage-size")
		if err != nil {
			return nil, err
		}
		changes = append(changes, func(dc *v1alpha1.DatabaseCluster) { dc.Spec.Engine.Storage.Size = size })
	}

	return combine(changes)
}

func newEditBackupStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup-storage NAME",
		Aliases: []string{"bs"},
		Short:   "Change a BackupStorage",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			change, err := backupStorageChange(cmd.Flags())
			if err != nil {
				return err
			}
			clients, err := clientsFromFlags()
			if err != nil {
				return err
			}
			return runEdit[*v1alpha1.BackupStorage](cmd, clients.backupStorages, v1alpha1.KindBackupStorage, args[0], change,
				editor.WithValidation[*v1alpha1.BackupStorage](v1alpha1.ValidateBackupStorageUpdate),
				editor.WithMerger[*v1alpha1.BackupStorage](
					mutation.MergerFunc[*v1alpha1.BackupStorage](v1alpha1.MergeBackupStorage)),
			)
		},
	}

	f := cmd.Flags()
	f.String("description", "", "Free form description")
	f.String("bucket", "", "Bucket name")
	f.String("region", "", "Bucket region")
	return cmd
}

func backupStorageChange(flags *pflag.FlagSet) (func(*v1alpha1.BackupStorage), error) {
	var changes []func(*v1alpha1.BackupStorage)

	for _, field := range []struct {
		flag string
		set  func(*v1alpha1.BackupStorage, string)
	}{
		{flag: "description", set: func(bs *v1alpha1.BackupStorage, v string) { bs.Spec.Description = v }},
		{flag: "bucket", set: func(bs *v1alpha1.BackupStorage, v string) { bs.Spec.Bucket = v }},
		{flag: "region", set: func(bs *v1alpha1.BackupStorage, v string) { bs.Spec.Region = v }},
	} {
		if !flags.Changed(field.flag) {
			continue
		}
		value, err := flags.GetString(field.flag)
		if err != nil {
			return nil, err
		}
		set := field.set
		changes = append(changes, func(bs *v1alpha1.BackupStorage) { set(bs, value) })
	}

	return combine(changes)
}

func newEditMonitoringConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitoring-config NAME",
		Aliases: []string{"mc"},
		Short:   "Change a MonitoringConfig",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			change, err := monitoringConfigChange(cmd.Flags())
			if err != nil {
				return err
			}
			clients, err := clientsFromFlags()
			if err != nil {
				return err
			}
			return runEdit[*v1alpha1.MonitoringConfig](cmd, clients.monitoringConfigs, v1alpha1.KindMonitoringConfig, args[0], change,
				editor.WithValidation[*v1alpha1.MonitoringConfig](func(_, updated *v1alpha1.MonitoringConfig) error {
					return v1alpha1.ValidateMonitoringConfig(updated)
				}),
				editor.WithMerger[*v1alpha1.MonitoringConfig](
					mutation.MergerFunc[*v1alpha1.MonitoringConfig](v1alpha1.MergeMonitoringConfig)),
			)
		},
	}

	cmd.Flags().String("url", "", "PMM server URL")
	return cmd
}

func monitoringConfigChange(flags *pflag.FlagSet) (func(*v1alpha1.MonitoringConfig), error) {
	var changes []func(*v1alpha1.MonitoringConfig)

	if flags.Changed("url") {
		url, err := flags.GetString("url")
		if err != nil {
			return nil, err
		}
		changes = append(changes, func(mc *v1alpha1.MonitoringConfig) { mc.Spec.PMM.URL = url })
	}

	return combine(changes)
}

func combine[T any](changes []func(T)) (func(T), error) {
	if len(changes) == 0 {
		return nil, errNoChanges
	}
	return func(obj T) {
		for _, change := range changes {
			change(obj)
		}
	}, nil
}

// runEdit applies change to the object named by arg and reports the outcome.
func runEdit[T cache.Object[T]](
	cmd *cobra.Command,
	backend editor.Backend[T],
	kind, arg string,
	change func(T),
	opts ...editor.Option[T],
) error {
	ctx := cmd.Context()

	key, err := kubernetes.ParseObjectKey(arg, viper.GetString("namespace"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			slog.Warn("Failed to flush telemetry", "error", err)
		}
	}()

	metrics, err := telemetry.NewMutationMetrics(tel.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create mutation metrics: %w", err)
	}

	coordOpts := append(cfg.Mutation.CoordinatorOptions(),
		mutation.WithResource(kind, kubernetes.FormatObjectKey(key)),
		mutation.WithTracer(tel.Tracer(editTracerName)),
		mutation.WithMetrics(metrics),
	)
	opts = append(opts, editor.WithCoordinatorOptions[T](coordOpts...))

	updated, err := editObject(ctx, backend, key, change, opts...)
	if err != nil {
		slog.Debug("Edit failed", "kind", kind, "key", key.String(), "error", err)
		return errors.New(editor.Describe(err))
	}

	reportEdit(cmd.OutOrStdout(), kind, updated)
	return nil
}

func editObject[T cache.Object[T]](
	ctx context.Context,
	backend editor.Backend[T],
	key types.NamespacedName,
	change func(T),
	opts ...editor.Option[T],
) (T, error) {
	session, err := editor.Open(ctx, backend, key, nil, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return session.Apply(ctx, change)
}

func reportEdit[T cache.Object[T]](out io.Writer, kind string, obj T) {
	fmt.Fprintf(out, "%s %s/%s edited (generation %d, resourceVersion %s)\n",
		kind, obj.GetNamespace(), obj.GetName(), obj.GetGeneration(), obj.GetResourceVersion())
}
