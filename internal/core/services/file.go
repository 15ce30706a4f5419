package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// chunkSeparator joins chunks when a whole document is reconstructed.
const chunkSeparator = "\n\n"

// FileService reads and maintains cataloged files.
type FileService struct {
	catalog driven.Catalog
	blobs   driven.BlobStore

	// orphans are blobs whose catalog entry is gone but whose bytes
	// could not be removed. Each Delete sweeps them first.
	mu      sync.Mutex
	orphans []string
}

// NewFileService creates a new file service.
func NewFileService(catalog driven.Catalog, blobs driven.BlobStore) *FileService {
	return &FileService{
		catalog: catalog,
		blobs:   blobs,
	}
}

// List returns file summaries, most recent first.
func (s *FileService) List(ctx context.Context, category string) ([]domain.FileSummary, error) {
	files, err := s.catalog.ListFiles(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	summaries := make([]domain.FileSummary, len(files))
	for i := range files {
		summaries[i] = files[i].Summary()
	}
	return summaries, nil
}

// Get retrieves a file summary by ID.
func (s *FileService) Get(ctx context.Context, id string) (*domain.FileSummary, error) {
	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	summary := rec.Summary()
	return &summary, nil
}

// Content returns one chunk when chunkIndex is set, otherwise the whole
// text reconstructed from all chunks.
func (s *FileService) Content(ctx context.Context, id string, chunkIndex *int) (*domain.FileContent, error) {
	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	content := &domain.FileContent{
		File:        rec.Summary(),
		TotalChunks: rec.ChunkCount,
	}

	if chunkIndex != nil {
		if *chunkIndex < 0 {
			return nil, fmt.Errorf("%w: chunk index must not be negative", domain.ErrInvalidInput)
		}
		chunk, err := s.catalog.GetChunk(ctx, id, *chunkIndex)
		if err != nil {
			return nil, fmt.Errorf("get content: %w", err)
		}
		index := chunk.Index
		content.ChunkIndex = &index
		content.Text = chunk.Text
		return content, nil
	}

	chunks, err := s.catalog.ListChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	content.Text = strings.Join(texts, chunkSeparator)
	return content, nil
}

// Open returns the original bytes of a file.
func (s *FileService) Open(ctx context.Context, id string) ([]byte, *domain.FileSummary, error) {
	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	data, err := s.blobs.Get(ctx, rec.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	summary := rec.Summary()
	return data, &summary, nil
}

// Stats summarises the knowledge base.
func (s *FileService) Stats(ctx context.Context) (*domain.AggregateStats, error) {
	stats, err := s.catalog.AggregateStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// Delete removes the catalog entry first, then the stored bytes.
// A blob that is already gone is not an error. A blob that cannot be
// removed is kept as an orphan for the next sweep.
func (s *FileService) Delete(ctx context.Context, id string) error {
	s.SweepOrphans(ctx)

	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if err := s.catalog.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	err = s.blobs.Delete(context.WithoutCancel(ctx), rec.StoragePath)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Warn("Blob for %s was already gone: %s", id, rec.StoragePath)
	case err != nil:
		logger.Error("Deleted %s from the catalog but not its blob %s: %v", id, rec.StoragePath, err)
		s.mu.Lock()
		s.orphans = append(s.orphans, rec.StoragePath)
		s.mu.Unlock()
		return fmt.Errorf("delete file blob: %w", err)
	}

	logger.Info("Deleted %s (%s)", id, rec.OriginalName)
	return nil
}

// UpdateMetadata changes category, description or tags and returns the
// updated summary. A blank category resets it to the default.
func (s *FileService) UpdateMetadata(
	ctx context.Context, id string, update domain.MetadataUpdate,
) (*domain.FileSummary, error) {
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			category = domain.DefaultCategory
		}
		update.Category = &category
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		update.Description = &description
	}
	if update.Tags != nil {
		tags := domain.NormaliseTags(*update.Tags)
		update.Tags = &tags
	}

	if err := s.catalog.UpdateFileMetadata(ctx, id, update); err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	return s.Get(ctx, id)
}

// Orphans lists blobs left behind by deletes that could not remove them.
func (s *FileService) Orphans() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.orphans...)
}

// SweepOrphans removes orphaned blobs and returns how many remain.
func (s *FileService) SweepOrphans(ctx context.Context) int {
	s.mu.Lock()
	pending := s.orphans
	s.orphans = nil
	s.mu.Unlock()

	var remaining []string
	for _, p := range pending {
		exists, err := s.blobs.Exists(ctx, p)
		if err == nil && !exists {
			logger.Debug("Orphaned blob %s is already gone", p)
			continue
		}
		if err == nil {
			err = s.blobs.Delete(ctx, p)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Orphaned blob %s is still stored: %v", p, err)
			remaining = append(remaining, p)
			continue
		}
		logger.Info("Removed orphaned blob %s", p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orphans = append(s.orphans, remaining...)
	return len(s.orphans)
}
