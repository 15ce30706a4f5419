package driving

import (
	"context"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// FileService manages stored files and their content.
type FileService interface {
	// List returns file summaries, most recent first.
	// A non-empty category restricts the result to an exact match.
	List(ctx context.Context, category string) ([]domain.FileSummary, error)

	// Get retrieves a file summary by ID.
	Get(ctx context.Context, id string) (*domain.FileSummary, error)

	// Content returns one chunk when chunkIndex is set, otherwise the whole
	// text reconstructed from all chunks.
	Content(ctx context.Context, id string, chunkIndex *int) (*domain.FileContent, error)

	// Open returns the original bytes of a file.
	Open(ctx context.Context, id string) ([]byte, *domain.FileSummary, error)

	// Stats summarises the knowledge base.
	Stats(ctx context.Context) (*domain.AggregateStats, error)

	// Delete removes a file, its chunks and its stored bytes.
	Delete(ctx context.Context, id string) error

	// UpdateMetadata changes category, description or tags.
	UpdateMetadata(ctx context.Context, id string, update domain.MetadataUpdate) (*domain.FileSummary, error)
}
