package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates an identity collision in the catalog.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuery indicates an empty or blank search query.
	// It wraps ErrInvalidInput so callers can match either.
	ErrInvalidQuery = fmt.Errorf("%w: query must not be empty", ErrInvalidInput)

	// ErrUnsupportedFormat indicates no text extractor accepts the content.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Storage Errors.

	// ErrStorageFull indicates the blob volume or quota is exhausted.
	ErrStorageFull = errors.New("storage full")

	// ErrStoragePermission indicates the blob root is not writable or readable.
	ErrStoragePermission = errors.New("storage permission denied")
)

// StorageError is returned by blob stores.
type StorageError struct {
	// Op is the failed operation (put, get, delete, exists).
	Op string

	// Path is the storage path involved, if any.
	Path string

	Err error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CatalogError is returned by catalog stores for failures other than
// ErrNotFound and ErrDuplicate.
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// ErrorKind classifies an error for callers that need a coarse category,
// such as exit codes and ingestion results.
type ErrorKind string

// Error kinds.
const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNotFound     ErrorKind = "not_found"
	KindStorage      ErrorKind = "storage"
	KindCatalog      ErrorKind = "catalog"
	KindUnsupported  ErrorKind = "unsupported_format"
	KindInternal     ErrorKind = "internal"
)

// String returns the string representation.
func (k ErrorKind) String() string {
	return string(k)
}

// KindOf classifies err. A nil error has no kind and returns "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var storageErr *StorageError
	var catalogErr *CatalogError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupported
	case errors.As(err, &storageErr),
		errors.Is(err, ErrStorageFull),
		errors.Is(err, ErrStoragePermission):
		return KindStorage
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &catalogErr), errors.Is(err, ErrDuplicate):
		return KindCatalog
	default:
		return KindInternal
	}
}
