// Package local provides a BlobStore on the local filesystem.
//
// Files are written to <root>/.tmp, fsynced, then renamed into
// <root>/<yyyy>/<mm>/<uuid>_<name>. Storage paths are slash separated and
// relative to the root.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const tmpDir = ".tmp"

// Store keeps blobs under a root directory.
type Store struct {
	root string
	now  func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the clock used for the year/month layout.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates the root and temp directories if needed.
func New(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: blob root is empty", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}

	s := &Store{root: abs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Join(abs, tmpDir), 0o700); err != nil {
		return nil, storageErr("init", "", err)
	}
	return s, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes data atomically and returns its storage path.
func (s *Store) Put(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := domain.SanitizeFilename(suggestedName)
	if name == "" {
		name = "file"
	}
	now := s.now().UTC()
	rel := path.Join(now.Format("2006"), now.Format("01"), uuid.New().String()+"_"+name)

	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "put-*")
	if err != nil {
		return "", storageErr("put", rel, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", storageErr("put", rel, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", storageErr("put", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return "", storageErr("put", rel, err)
	}

	dest := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return "", storageErr("put", rel, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", storageErr("put", rel, err)
	}
	committed = true
	return rel, nil
}

// Get reads the bytes at storagePath.
func (s *Store) Get(ctx context.Context, storagePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, storageErr("get", storagePath, err)
	}
	return data, nil
}

// Delete removes the bytes at storagePath.
func (s *Store) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return storageErr("delete", storagePath, err)
	}
	return nil
}

// Exists reports whether storagePath holds a regular file.
func (s *Store) Exists(ctx context.Context, storagePath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := s.resolve(storagePath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("exists", storagePath, err)
	}
	return info.Mode().IsRegular(), nil
}

// resolve maps a storage path to a file under the root.
func (s *Store) resolve(storagePath string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(storagePath, `\`, "/"))
	if storagePath == "" || clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &domain.StorageError{
			Op:   "resolve",
			Path: storagePath,
			Err:  fmt.Errorf("%w: path escapes blob root", domain.ErrInvalidInput),
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// storageErr classifies filesystem failures.
func storageErr(op, p string, err error) error {
	var kind error
	switch {
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		kind = domain.ErrStorageFull
	case errors.Is(err, fs.ErrPermission):
		kind = domain.ErrStoragePermission
	case errors.Is(err, fs.ErrNotExist):
		kind = domain.ErrNotFound
	}
	if kind != nil {
		err = fmt.Errorf("%w: %w", kind, err)
	}
	return &domain.StorageError{Op: op, Path: p, Err: err}
}
