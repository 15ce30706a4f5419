package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [file-id...]",
	Short: "Delete files and their chunks",
	Long:  `Removes each file from the catalog together with its chunks and stored bytes.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, id := range args {
		if err := svc.Files.Delete(cmd.Context(), id); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", id, err))
			continue
		}
		fmt.Fprintf(out, "deleted %s\n", id)
	}
	return errors.Join(errs...)
}
