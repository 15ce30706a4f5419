package driven

import "context"

// FileSource enumerates local files for a bulk import.
type FileSource interface {
	// Files returns the regular files under dir in lexical order.
	// Hidden files and directories are skipped.
	// Returns domain.ErrInvalidInput when dir is missing or not a directory.
	Files(ctx context.Context, dir string, recursive bool) ([]string, error)
}
