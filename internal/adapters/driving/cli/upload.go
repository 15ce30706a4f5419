package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	uploadCategory    string
	uploadTags        string
	uploadDescription string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [path...]",
	Short: "Upload files into the knowledge base",
	Long: `Stores each file, extracts its text and splits it into chunks.

Files in formats without a text extractor are still stored, with no chunks.
Tags are given as a comma separated list.

Examples:
  knowbase upload handbook.pdf --category HR --tags "policy, leave"
  knowbase upload notes/*.md --description "meeting notes"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", "", "category (default from config)")
	uploadCmd.Flags().StringVarP(&uploadTags, "tags", "t", "", "comma separated tags")
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "short description")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	opts := domain.UploadOptions{
		Category:    uploadCategory,
		Tags:        domain.SplitTags(uploadTags),
		Description: uploadDescription,
	}

	results := make([]domain.IngestionResult, 0, len(args))
	var errs []error
	for _, path := range args {
		res := svc.Ingest.UploadFile(cmd.Context(), path, opts)
		results = append(results, res)
		if err := res.Error(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}

	if structured() {
		if err := printStructured(cmd, results); err != nil {
			return err
		}
		return errors.Join(errs...)
	}

	out := cmd.OutOrStdout()
	for i, res := range results {
		printIngestion(cmd, out, args[i], res)
	}
	return errors.Join(errs...)
}

func printIngestion(cmd *cobra.Command, out io.Writer, path string, res domain.IngestionResult) {
	if !res.OK {
		fmt.Fprintf(out, "%s %s: %s\n", render(cmd, errorStyle, "failed"), path, res.Err.Message)
		return
	}
	fmt.Fprintf(out, "uploaded %s\n", path)
	fmt.Fprintf(out, "  ID:       %s\n", res.File.ID)
	fmt.Fprintf(out, "  Category: %s\n", res.File.Category)
	fmt.Fprintf(out, "  Chunks:   %d\n", res.File.ChunkCount)
}
