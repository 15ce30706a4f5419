package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	getDest  string
	getForce bool
)

var getCmd = &cobra.Command{
	Use:   "get [file-id]",
	Short: "Download the original bytes of a file",
	Long: `Writes the original file to disk. Without --out the stored name is used
in the current directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getDest, "out", "o", "", "destination path")
	getCmd.Flags().BoolVarP(&getForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	data, f, err := svc.Files.Open(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	dest := getDest
	if dest == "" {
		dest = f.Filename
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, f.Filename)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !getForce {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(dest, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s already exists (use --force)", domain.ErrInvalidInput, dest)
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", dest, humanSize(int64(len(data))))
	return nil
}
