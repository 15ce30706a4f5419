package driving

import (
	"context"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// IngestService accepts documents into the knowledge base.
type IngestService interface {
	// Upload stores, extracts, chunks and catalogs one document.
	// Failures are reported in the result, never partially committed.
	Upload(ctx context.Context, req domain.UploadRequest) domain.IngestionResult

	// UploadFile reads a local file and uploads it.
	UploadFile(ctx context.Context, path string, opts domain.UploadOptions) domain.IngestionResult
}

// BulkImporter uploads every file found in a directory.
type BulkImporter interface {
	// Import walks dir and uploads each eligible file.
	// Returns domain.ErrInvalidInput when dir is missing or not a directory.
	// Individual failures are recorded in the report.
	Import(ctx context.Context, dir string, opts domain.ImportOptions) (*domain.ImportReport, error)
}

// AutoIngester ingests files as they appear in a watched directory.
type AutoIngester interface {
	// Watch blocks until ctx is done, uploading each new file in dir and
	// passing every outcome to onResult.
	Watch(ctx context.Context, dir string, opts domain.WatchOptions, onResult func(path string, res domain.IngestionResult)) error
}
