package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure AutoIngestService implements the interface.
var _ driving.AutoIngester = (*AutoIngestService)(nil)

// AutoIngestService uploads files dropped into a watched directory.
// Only new files are ingested; edits and deletions are logged and ignored
// because uploads are never deduplicated.
type AutoIngestService struct {
	ingest  driving.IngestService
	watcher driven.DirectoryWatcher
}

// NewAutoIngestService creates a new auto-ingest service.
func NewAutoIngestService(ingest driving.IngestService, watcher driven.DirectoryWatcher) *AutoIngestService {
	return &AutoIngestService{
		ingest:  ingest,
		watcher: watcher,
	}
}

// Watch blocks until ctx is done or the watcher stops.
func (s *AutoIngestService) Watch(
	ctx context.Context, dir string, opts domain.WatchOptions,
	onResult func(path string, res domain.IngestionResult),
) error {
	events, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for new files", dir)

	category := strings.TrimSpace(opts.Category)
	for fe := range events {
		if fe.Op != domain.FileCreated {
			logger.Debug("Ignoring %s event for %s", fe.Op, fe.Path)
			continue
		}
		if len(filterExtensions([]string{fe.Path}, opts.Extensions)) == 0 {
			logger.Debug("Skipping %s: extension not allowed", fe.Path)
			continue
		}

		res := s.ingest.UploadFile(ctx, fe.Path, domain.UploadOptions{Category: category})
		if onResult != nil {
			onResult(fe.Path, res)
		}
	}

	logger.Info("Stopped watching %s", dir)
	return nil
}
