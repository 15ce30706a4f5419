package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contentChunk int

var contentCmd = &cobra.Command{
	Use:   "content [file-id]",
	Short: "Print the extracted text of a file",
	Long: `Prints the extracted text of a file, rebuilt from its chunks.
Use --chunk to print a single chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runContent,
}

func init() {
	contentCmd.Flags().IntVar(&contentChunk, "chunk", 0, "print only this 0-based chunk")
	rootCmd.AddCommand(contentCmd)
}

func runContent(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	var chunk *int
	if cmd.Flags().Changed("chunk") {
		idx := contentChunk
		chunk = &idx
	}

	content, err := svc.Files.Content(cmd.Context(), args[0], chunk)
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	if structured() {
		return printStructured(cmd, content)
	}

	fmt.Fprintln(cmd.OutOrStdout(), content.Text)
	return nil
}
