package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files",
	Long: `Lists stored files, most recent first.

Use --output json or --output yaml to export the metadata of every file.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list this category")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	files, err := svc.Files.List(cmd.Context(), listCategory)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if structured() {
		return printStructured(cmd, files)
	}

	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No files found.")
		return nil
	}

	printHeader(cmd, "Files")
	for i := range files {
		printSummaryLine(cmd, &files[i])
	}
	fmt.Fprintf(out, "\nTotal: %d files\n", len(files))
	return nil
}

func printSummaryLine(cmd *cobra.Command, f *domain.FileSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s  %s\n", f.ID, f.OriginalName)
	meta := fmt.Sprintf("%s · %s · %s · %d chunks",
		f.Category, f.FileType, humanSize(f.FileSize), f.ChunkCount)
	if len(f.Tags) > 0 {
		meta += " · " + strings.Join(f.Tags, ", ")
	}
	fmt.Fprintf(out, "    %s\n", render(cmd, mutedStyle, meta))
}
