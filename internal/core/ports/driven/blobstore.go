package driven

import "context"

// BlobStore persists the original bytes of uploaded files.
// Failures are reported as *domain.StorageError.
type BlobStore interface {
	// Put writes data atomically and returns its storage path.
	// suggestedName is used to build a readable file name.
	Put(ctx context.Context, data []byte, suggestedName string) (string, error)

	// Get reads the bytes at storagePath.
	// Returns domain.ErrNotFound when nothing is stored there.
	Get(ctx context.Context, storagePath string) ([]byte, error)

	// Delete removes the bytes at storagePath.
	// Returns domain.ErrNotFound when nothing is stored there.
	Delete(ctx context.Context, storagePath string) error

	// Exists reports whether storagePath holds data.
	Exists(ctx context.Context, storagePath string) (bool, error)
}
