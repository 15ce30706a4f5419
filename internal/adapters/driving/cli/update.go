package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	updateCategory    string
	updateDescription string
	updateTags        string
)

var updateCmd = &cobra.Command{
	Use:   "update [file-id]",
	Short: "Change the category, description or tags of a file",
	Long: `Changes file metadata. Only the flags given are updated; pass an empty
value to clear a description or tags.

Examples:
  knowbase update 3f2a... --category Finance
  knowbase update 3f2a... --tags "q3, budget" --description ""`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateCategory, "category", "c", "", "new category")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "new description")
	updateCmd.Flags().StringVarP(&updateTags, "tags", "t", "", "new comma separated tags")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	var update domain.MetadataUpdate
	if cmd.Flags().Changed("category") {
		update.Category = &updateCategory
	}
	if cmd.Flags().Changed("description") {
		update.Description = &updateDescription
	}
	if cmd.Flags().Changed("tags") {
		tags := domain.SplitTags(updateTags)
		update.Tags = &tags
	}
	if update.IsEmpty() {
		return fmt.Errorf("%w: nothing to update, set --category, --description or --tags", domain.ErrInvalidInput)
	}

	f, err := svc.Files.UpdateMetadata(cmd.Context(), args[0], update)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}

	if structured() {
		return printStructured(cmd, f)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", f.ID)
	printSummaryLine(cmd, f)
	return nil
}
