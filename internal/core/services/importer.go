package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.BulkImporter = (*Importer)(nil)

// Importer uploads every eligible file of a directory.
type Importer struct {
	ingest driving.IngestService
	source driven.FileSource
}

// NewImporter creates a new bulk importer.
func NewImporter(ingest driving.IngestService, source driven.FileSource) *Importer {
	return &Importer{
		ingest: ingest,
		source: source,
	}
}

// Import walks dir and uploads each eligible file with bounded concurrency.
// Per-file failures are recorded in the report. A cancelled context stops
// the import and returns the partial report with the context error.
func (im *Importer) Import(ctx context.Context, dir string, opts domain.ImportOptions) (*domain.ImportReport, error) {
	logger.Section("Bulk Import")

	files, err := im.source.Files(ctx, dir, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", dir, err)
	}
	eligible := filterExtensions(files, opts.Extensions)
	logger.Debug("Found %d files in %s, %d eligible", len(files), dir, len(eligible))

	category := strings.TrimSpace(opts.Category)
	if category == "" {
		category = domain.BulkImportCategory
	}
	concurrency := max(1, opts.Concurrency)

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	details := make([]domain.ImportDetail, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range eligible {
		details[i].Path = path
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					details[i].Error = err.Error()
					return err
				}
			}
			if err := gctx.Err(); err != nil {
				details[i].Error = err.Error()
				return err
			}

			res := im.ingest.UploadFile(gctx, path, domain.UploadOptions{Category: category})
			if !res.OK {
				details[i].Error = res.Err.Message
				logger.Warn("Import of %s failed: %s", path, res.Err.Message)
				return nil
			}
			details[i].OK = true
			details[i].FileID = res.File.ID
			details[i].Chunks = res.File.ChunkCount
			return nil
		})
	}
	waitErr := g.Wait()

	report := &domain.ImportReport{
		Attempted: len(eligible),
		Details:   details,
	}
	for _, d := range details {
		if d.OK {
			report.Succeeded++
		}
	}
	report.Failed = report.Attempted - report.Succeeded

	logger.Info("Imported %d of %d files from %s", report.Succeeded, report.Attempted, dir)
	if waitErr != nil {
		return report, fmt.Errorf("import %s: %w", dir, waitErr)
	}
	return report, nil
}

// filterExtensions keeps files whose extension is in allowed.
// An empty allow-list keeps everything.
func filterExtensions(files, allowed []string) []string {
	if len(allowed) == 0 {
		return files
	}
	set := make(map[string]struct{}, len(allowed))
	for _, ext := range allowed {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			set[ext] = struct{}{}
		}
	}

	var kept []string
	for _, f := range files {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f)), ".")
		if _, ok := set[ext]; ok {
			kept = append(kept, f)
		}
	}
	return kept
}
