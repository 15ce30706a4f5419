package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	watchCategory   string
	watchExtensions string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload new files as they appear in a directory",
	Long: `Watches a directory and uploads every new file once it stops changing.
Modified and removed files are left alone. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchCategory, "category", "c", "", "category for uploaded files (default from config)")
	watchCmd.Flags().StringVar(&watchExtensions, "ext", "", "comma separated extension allow-list, \"*\" for all")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	opts := domain.WatchOptions{Category: watchCategory}
	if svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			opts.Extensions = settings.Import.Extensions
		}
	}
	if cmd.Flags().Changed("ext") {
		opts.Extensions = parseExtensions(watchExtensions)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %s\n", args[0])
	err = svc.AutoIngest.Watch(ctx, args[0], opts, func(path string, res domain.IngestionResult) {
		printIngestion(cmd, out, path, res)
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
