package driven

import (
	"context"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// Catalog persists file records and their chunks.
// Backed by SQLite; an in-memory implementation exists for tests.
//
// Errors other than domain.ErrNotFound and domain.ErrDuplicate are
// returned as *domain.CatalogError.
type Catalog interface {
	// InsertFile stores a file record and its chunks as one unit.
	// Chunk indices 0..n-1 are assigned in order.
	// Returns domain.ErrDuplicate if the id is or ever was in use.
	InsertFile(ctx context.Context, rec *domain.FileRecord, chunks []domain.ChunkInput) (string, error)

	// InsertChunks appends chunks to an existing file, continuing its index sequence.
	InsertChunks(ctx context.Context, fileID string, chunks []domain.ChunkInput) error

	// GetFile retrieves a file record with its chunk count.
	GetFile(ctx context.Context, id string) (*domain.FileRecord, error)

	// GetChunk retrieves one chunk of a file by index.
	GetChunk(ctx context.Context, fileID string, index int) (*domain.ChunkRecord, error)

	// ListChunks returns all chunks of a file ordered by index.
	ListChunks(ctx context.Context, fileID string) ([]domain.ChunkRecord, error)

	// ListFiles returns files ordered by upload date, most recent first.
	// A non-empty category restricts the result to an exact match.
	ListFiles(ctx context.Context, category string) ([]domain.FileRecord, error)

	// SearchText returns the raw per-file matches for query, case-insensitively.
	// The query is split on whitespace and a field or chunk matches when it
	// contains every term. A non-empty category restricts the result to an
	// exact match. Files with no match are omitted.
	SearchText(ctx context.Context, query string, category string) ([]domain.TextMatch, error)

	// UpdateFileMetadata changes category, description or tags.
	UpdateFileMetadata(ctx context.Context, id string, update domain.MetadataUpdate) error

	// DeleteFile removes a file and all its chunks in one unit.
	// The id is never accepted again by InsertFile.
	DeleteFile(ctx context.Context, id string) error

	// AggregateStats summarises the catalog.
	AggregateStats(ctx context.Context) (*domain.AggregateStats, error)

	// Close releases the underlying resources.
	Close() error
}
