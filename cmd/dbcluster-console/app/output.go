package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
	"sigs.k8s.io/yaml"

	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

// columns renders one kind as table rows.
type columns[T any] struct {
	headers []string
	row     func(T) []string
}

// resolveFormat picks a table for terminals and YAML otherwise when no format was asked for.
func resolveFormat(format string, out io.Writer) (string, error) {
	switch format {
	case outputTable, outputYAML, outputJSON:
		return format, nil
	case "":
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return outputTable, nil
		}
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, yaml or json)", format)
	}
}

// printList writes objs as a table, or as {"items": [...]} in YAML or JSON.
func printList[T any](out io.Writer, format string, objs []T, cols columns[T]) error {
	format, err := resolveFormat(format, out)
	if err != nil {
		return err
	}
	if format == outputTable {
		return printTable(out, objs, cols)
	}
	return printData(out, format, map[string]any{"items": objs})
}

// printObject writes a single object.
func printObject[T any](out io.Writer, format string, obj T, cols columns[T]) error {
	format, err := resolveFormat(format, out)
	if err != nil {
		return err
	}
	if format == outputTable {
		return printTable(out, []T{obj}, cols)
	}
	return printData(out, format, obj)
}

func printTable[T any](out io.Writer, objs []T, cols columns[T]) error {
	table := tablewriter.NewWriter(out)
	headers := make([]any, len(cols.headers))
	for i, h := range cols.headers {
		headers[i] = h
	}
	table.Header(headers...)
	for _, obj := range objs {
		if err := table.Append(cols.row(obj)); err != nil {
			return fmt.Errorf("failed to render row: %w", err)
		}
	}
	return table.Render()
}

func printData(out io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	if format == outputJSON {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = out.Write(data)
	return err
}

var databaseClusterColumns = columns[*v1alpha1.DatabaseCluster]{
	headers: []string{"NAMESPACE", "NAME", "ENGINE", "VERSION", "REPLICAS", "READY", "STATUS", "PAUSED", "GENERATION"},
	row: func(dc *v1alpha1.DatabaseCluster) []string {
		return []string{
			dc.Namespace,
			dc.Name,
			string(dc.Spec.Engine.Type),
			dc.Spec.Engine.Version,
			strconv.Itoa(int(dc.Spec.Engine.Replicas)),
			fmt.Sprintf("%d/%d", dc.Status.Ready, dc.Status.Size),
			string(dc.Status.Status),
			strconv.FormatBool(dc.Spec.Paused),
			strconv.FormatInt(dc.Generation, 10),
		}
	},
}

var backupStorageColumns = columns[*v1alpha1.BackupStorage]{
	headers: []string{"NAMESPACE", "NAME", "TYPE", "BUCKET", "REGION", "DESCRIPTION"},
	row: func(bs *v1alpha1.BackupStorage) []string {
		return []string{
			bs.Namespace,
			bs.Name,
			string(bs.Spec.Type),
			bs.Spec.Bucket,
			bs.Spec.Region,
			bs.Spec.Description,
		}
	},
}

var monitoringConfigColumns = columns[*v1alpha1.MonitoringConfig]{
	headers: []string{"NAMESPACE", "NAME", "TYPE", "URL", "IN USE", "ALLOWED NAMESPACES"},
	row: func(mc *v1alpha1.MonitoringConfig) []string {
		return []string{
			mc.Namespace,
			mc.Name,
			string(mc.Spec.Type),
			mc.Spec.PMM.URL,
			strconv.FormatBool(mc.Status.InUse),
			strings.Join(mc.Spec.AllowedNamespaces, ","),
		}
	},
}
