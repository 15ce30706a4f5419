package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	importCategory    string
	importRecursive   bool
	importConcurrency int
	importRate        float64
	importExtensions  string
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Upload every file in a directory",
	Long: `Uploads the regular files of a directory. Hidden files are skipped.
Only files with an allowed extension are imported; the allow-list comes from
the import.extensions setting unless --ext is given.

Examples:
  knowbase import ./policies --category HR
  knowbase import ~/docs -r --concurrency 8 --rate 5 --ext pdf,docx`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importCategory, "category", "c", domain.BulkImportCategory, "category for imported files")
	importCmd.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "descend into subdirectories")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "uploads in flight (default from config)")
	importCmd.Flags().Float64Var(&importRate, "rate", 0, "maximum uploads per second, 0 for unlimited (default from config)")
	importCmd.Flags().StringVar(&importExtensions, "ext", "", "comma separated extension allow-list, \"*\" for all")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	opts := domain.ImportOptions{
		Category:      importCategory,
		Recursive:     importRecursive,
		Concurrency:   importConcurrency,
		RatePerSecond: importRate,
	}
	if svc.Settings != nil {
		settings, err := svc.Settings.Get()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if !cmd.Flags().Changed("concurrency") {
			opts.Concurrency = settings.Import.Concurrency
		}
		if !cmd.Flags().Changed("rate") {
			opts.RatePerSecond = settings.Import.RatePerSecond
		}
		opts.Extensions = settings.Import.Extensions
	}
	if cmd.Flags().Changed("ext") {
		opts.Extensions = parseExtensions(importExtensions)
	}

	report, err := svc.Importer.Import(cmd.Context(), args[0], opts)
	if report != nil {
		if structured() {
			if perr := printStructured(cmd, report); perr != nil {
				return perr
			}
		} else {
			printImportReport(cmd, report)
		}
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

// parseExtensions reads a comma separated allow-list. "*" means every file.
func parseExtensions(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return nil
	}
	var exts []string
	for _, ext := range domain.SplitTags(s) {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	return exts
}

func printImportReport(cmd *cobra.Command, report *domain.ImportReport) {
	out := cmd.OutOrStdout()
	for _, d := range report.Details {
		if d.OK {
			fmt.Fprintf(out, "  ok     %s (%d chunks)\n", d.Path, d.Chunks)
			continue
		}
		fmt.Fprintf(out, "  %s %s: %s\n", render(cmd, errorStyle, "failed"), d.Path, d.Error)
	}
	fmt.Fprintf(out, "\nAttempted: %d  Succeeded: %d  Failed: %d\n",
		report.Attempted, report.Succeeded, report.Failed)
}
