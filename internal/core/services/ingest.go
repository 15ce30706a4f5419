package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// MIMEDetector returns the content type of a named document.
type MIMEDetector func(name string, content []byte) string

// IngestService stores, extracts, chunks and catalogs uploaded documents.
type IngestService struct {
	catalog  driven.Catalog
	blobs    driven.BlobStore
	registry driven.NormaliserRegistry
	chunker  driven.Chunker

	detect          MIMEDetector
	now             func() time.Time
	maxUploadBytes  int64
	defaultCategory string
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithMaxUploadBytes rejects uploads larger than n bytes. Zero disables the check.
func WithMaxUploadBytes(n int64) IngestOption {
	return func(s *IngestService) {
		s.maxUploadBytes = n
	}
}

// WithDefaultCategory sets the category used when an upload names none.
func WithDefaultCategory(category string) IngestOption {
	return func(s *IngestService) {
		if category = strings.TrimSpace(category); category != "" {
			s.defaultCategory = category
		}
	}
}

// WithMIMEDetector replaces the content type detection.
func WithMIMEDetector(detect MIMEDetector) IngestOption {
	return func(s *IngestService) {
		if detect != nil {
			s.detect = detect
		}
	}
}

// WithIngestClock sets the clock used for upload dates.
func WithIngestClock(now func() time.Time) IngestOption {
	return func(s *IngestService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	catalog driven.Catalog,
	blobs driven.BlobStore,
	registry driven.NormaliserRegistry,
	chunker driven.Chunker,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		catalog:         catalog,
		blobs:           blobs,
		registry:        registry,
		chunker:         chunker,
		detect:          sniffMIME,
		now:             time.Now,
		maxUploadBytes:  domain.DefaultMaxUploadBytes,
		defaultCategory: domain.DefaultCategory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sniffMIME(_ string, content []byte) string {
	return http.DetectContentType(content)
}

// Upload runs one document through the pipeline.
// Nothing is left behind when a stage fails.
func (s *IngestService) Upload(ctx context.Context, req domain.UploadRequest) domain.IngestionResult {
	logger.Debug("Ingest %q: %s", req.OriginalName, domain.StageReceived)

	name, err := s.validate(req.OriginalName, int64(len(req.Content)))
	if err != nil {
		return s.fail(req.OriginalName, domain.StageReceived, err)
	}
	if err := ctx.Err(); err != nil {
		return s.fail(req.OriginalName, domain.StageValidated, err)
	}
	logger.Debug("Ingest %q: %s as %q", req.OriginalName, domain.StageValidated, name)

	storagePath, err := s.blobs.Put(ctx, req.Content, name)
	if err != nil {
		return s.fail(req.OriginalName, domain.StageValidated, err)
	}
	logger.Debug("Ingest %q: %s at %s", req.OriginalName, domain.StageBlobStored, storagePath)

	mimeType := s.detect(name, req.Content)
	text := s.extract(ctx, name, mimeType, req.Content)
	logger.Debug("Ingest %q: %s (%s, %d chars)", req.OriginalName, domain.StageTextExtracted, mimeType, len(text))

	chunks := s.chunker.Chunk(text)
	logger.Debug("Ingest %q: %s into %d chunks", req.OriginalName, domain.StageChunked, len(chunks))

	sum := sha256.Sum256(req.Content)
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = s.defaultCategory
	}
	rec := &domain.FileRecord{
		ID:           uuid.New().String(),
		Filename:     name,
		OriginalName: req.OriginalName,
		FileType:     domain.FileTypeOf(name),
		MIMEType:     mimeType,
		FileSize:     int64(len(req.Content)),
		UploadDate:   s.now().UTC(),
		Category:     category,
		Description:  strings.TrimSpace(req.Description),
		Tags:         domain.NormaliseTags(req.Tags),
		StoragePath:  storagePath,
		Checksum:     hex.EncodeToString(sum[:]),
	}

	id, err := s.catalog.InsertFile(ctx, rec, chunks)
	if err != nil {
		// The caller may have gone away; the blob must still be removed.
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), storagePath); derr != nil {
			logger.Error("Ingest %q: removing blob %s: %v", req.OriginalName, storagePath, derr)
		}
		return s.fail(req.OriginalName, domain.StageChunked, err)
	}
	rec.ID = id
	rec.ChunkCount = len(chunks)
	logger.Debug("Ingest %q: %s as %s", req.OriginalName, domain.StageCataloged, id)
	logger.Debug("Ingest %q: %s", req.OriginalName, domain.StageCommitted)

	logger.Info("Ingested %s as %s (%d chunks)", req.OriginalName, id, len(chunks))
	return domain.Succeeded(rec.Summary())
}

// UploadFile reads a local file and uploads it under its base name.
func (s *IngestService) UploadFile(ctx context.Context, path string, opts domain.UploadOptions) domain.IngestionResult {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s.fail(path, domain.StageReceived, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidInput, path))
	case err != nil:
		return s.fail(path, domain.StageReceived, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	case !info.Mode().IsRegular():
		return s.fail(path, domain.StageReceived, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, path))
	}
	if _, err := s.validate(filepath.Base(path), info.Size()); err != nil {
		return s.fail(path, domain.StageReceived, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return s.fail(path, domain.StageReceived, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}

	return s.Upload(ctx, domain.UploadRequest{
		Content:      content,
		OriginalName: filepath.Base(path),
		Category:     opts.Category,
		Tags:         opts.Tags,
		Description:  opts.Description,
	})
}

// validate checks name and size and returns the sanitized name.
func (s *IngestService) validate(originalName string, size int64) (string, error) {
	if strings.TrimSpace(originalName) == "" {
		return "", fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	name := domain.SanitizeFilename(originalName)
	if name == "" {
		return "", fmt.Errorf("%w: file name %q has no usable characters", domain.ErrInvalidInput, originalName)
	}
	if size == 0 {
		return "", fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	if s.maxUploadBytes > 0 && size > s.maxUploadBytes {
		return "", fmt.Errorf("%w: file is %d bytes, limit is %d", domain.ErrInvalidInput, size, s.maxUploadBytes)
	}
	return name, nil
}

// extract returns the document text. Unsupported or unreadable formats
// yield no text so the upload is still kept.
func (s *IngestService) extract(ctx context.Context, name, mimeType string, content []byte) string {
	if s.registry == nil {
		return ""
	}
	result, err := s.registry.Normalise(ctx, &domain.RawDocument{
		Name:     name,
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			logger.Warn("No text extracted from %s: unsupported format %s", name, mimeType)
		} else {
			logger.Warn("No text extracted from %s: %v", name, err)
		}
		return ""
	}
	return result.Text
}

func (s *IngestService) fail(name string, stage domain.IngestStage, err error) domain.IngestionResult {
	logger.Error("Ingest %q failed after %s: %v", name, stage, err)
	return domain.Failed(stage, err)
}
