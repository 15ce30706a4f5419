package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change settings stored in the config file.

Keys:
  storage.data_dir          catalog database directory
  storage.blob_dir          original file directory
  ingest.max_chunk_size     chunk bound in characters
  ingest.max_upload_bytes   largest accepted upload
  ingest.default_category   category for uploads without one
  import.concurrency        uploads in flight during import
  import.rate_per_second    import throttle, 0 for unlimited
  import.extensions         comma separated extension allow-list
  search.default_limit      results returned by search
  mcp.port                  HTTP port for mcp serve, 0 for stdio`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print stored values",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if structured() {
		return printStructured(cmd, settings)
	}

	out := cmd.OutOrStdout()
	printHeader(cmd, "Current Settings")

	fmt.Fprintln(out, "[Storage]")
	fmt.Fprintf(out, "  Data dir: %s\n", settings.Storage.DataDir)
	fmt.Fprintf(out, "  Blob dir: %s\n", settings.Storage.BlobDir)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Ingest]")
	fmt.Fprintf(out, "  Max chunk size:   %d\n", settings.Ingest.MaxChunkSize)
	fmt.Fprintf(out, "  Max upload:       %s\n", humanSize(settings.Ingest.MaxUploadBytes))
	fmt.Fprintf(out, "  Default category: %s\n", settings.Ingest.DefaultCategory)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Import]")
	fmt.Fprintf(out, "  Concurrency: %d\n", settings.Import.Concurrency)
	if settings.Import.RatePerSecond > 0 {
		fmt.Fprintf(out, "  Rate:        %g/s\n", settings.Import.RatePerSecond)
	} else {
		fmt.Fprintln(out, "  Rate:        unlimited")
	}
	fmt.Fprintf(out, "  Extensions:  %s\n", strings.Join(settings.Import.Extensions, ", "))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Search]")
	fmt.Fprintf(out, "  Default limit: %d\n", settings.Search.DefaultLimit)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[MCP]")
	if settings.MCP.Port > 0 {
		fmt.Fprintf(out, "  Transport: http on port %d\n", settings.MCP.Port)
	} else {
		fmt.Fprintln(out, "  Transport: stdio")
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	values := svc.Settings.Values()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		val, ok := values[args[0]]
		if !ok {
			return fmt.Errorf("%w: config key %q is not set", domain.ErrNotFound, args[0])
		}
		fmt.Fprintln(out, formatValue(val))
		return nil
	}

	if structured() {
		return printStructured(cmd, values)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s = %s\n", k, formatValue(values[k]))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	if err := svc.Settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), svc.Settings.Path())
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
