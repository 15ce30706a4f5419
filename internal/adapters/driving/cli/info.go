package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file-id]",
	Short: "Show file metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	f, err := svc.Files.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	if structured() {
		return printStructured(cmd, f)
	}

	out := cmd.OutOrStdout()
	printHeader(cmd, "File: "+f.ID)
	fmt.Fprintf(out, "  Name:        %s\n", f.OriginalName)
	fmt.Fprintf(out, "  Stored as:   %s\n", f.Filename)
	fmt.Fprintf(out, "  Type:        %s (%s)\n", f.FileType, f.MIMEType)
	fmt.Fprintf(out, "  Size:        %s\n", humanSize(f.FileSize))
	fmt.Fprintf(out, "  Uploaded:    %s\n", f.UploadDate.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Category:    %s\n", f.Category)
	fmt.Fprintf(out, "  Description: %s\n", f.Description)
	fmt.Fprintf(out, "  Tags:        %s\n", strings.Join(f.Tags, ", "))
	fmt.Fprintf(out, "  Chunks:      %d\n", f.ChunkCount)
	return nil
}
