package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrDuplicate", ErrDuplicate},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidQuery", ErrInvalidQuery},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrStorageFull", ErrStorageFull},
		{"ErrStoragePermission", ErrStoragePermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrInvalidQuery_WrapsInvalidInput tests that an invalid query is also invalid input
func TestErrInvalidQuery_WrapsInvalidInput(t *testing.T) {
	assert.True(t, errors.Is(ErrInvalidQuery, ErrInvalidInput))
	assert.False(t, errors.Is(ErrInvalidInput, ErrInvalidQuery))
	assert.False(t, errors.Is(ErrInvalidQuery, ErrNotFound))
}

// TestStorageError tests StorageError formatting and unwrapping
func TestStorageError(t *testing.T) {
	err := &StorageError{Op: "put", Path: "2025/01/x_a.txt", Err: ErrStorageFull}

	assert.Equal(t, "storage put 2025/01/x_a.txt: storage full", err.Error())
	assert.True(t, errors.Is(err, ErrStorageFull))

	noPath := &StorageError{Op: "put", Err: fs.ErrPermission}
	assert.Equal(t, "storage put: permission denied", noPath.Error())

	var target *StorageError
	wrapped := fmt.Errorf("upload: %w", err)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "put", target.Op)
}

// TestCatalogError tests CatalogError formatting and unwrapping
func TestCatalogError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := &CatalogError{Op: "insert file", Err: cause}

	assert.Equal(t, "catalog insert file: disk I/O error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"invalid input", ErrInvalidInput, KindInvalidInput},
		{"invalid query", ErrInvalidQuery, KindInvalidInput},
		{"wrapped invalid input", fmt.Errorf("name: %w", ErrInvalidInput), KindInvalidInput},
		{"not found", ErrNotFound, KindNotFound},
		{"unsupported", ErrUnsupportedFormat, KindUnsupported},
		{"storage full", ErrStorageFull, KindStorage},
		{"storage error", &StorageError{Op: "get", Err: ErrNotFound}, KindStorage},
		{"catalog error", &CatalogError{Op: "list", Err: errors.New("boom")}, KindCatalog},
		{"duplicate", ErrDuplicate, KindCatalog},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
