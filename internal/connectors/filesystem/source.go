package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// Source enumerates regular files in local directories.
type Source struct{}

// NewSource creates a new filesystem source.
func NewSource() *Source {
	return &Source{}
}

// Files returns the regular files under dir in lexical order.
// Hidden files and directories and symlinks are skipped.
func (s *Source) Files(ctx context.Context, dir string, recursive bool) ([]string, error) {
	root, err := checkDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// checkDir returns the absolute form of dir if it is an existing directory.
func checkDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: directory is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s does not exist", domain.ErrInvalidInput, dir)
	case err != nil:
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	case !info.IsDir():
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}
	return abs, nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == filepath.Separator }) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
