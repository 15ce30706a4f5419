package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.Catalog = (*Catalog)(nil)

// Catalog is an in-memory implementation of driven.Catalog.
type Catalog struct {
	mu      sync.RWMutex
	files   map[string]domain.FileRecord
	chunks  map[string][]domain.ChunkRecord
	deleted map[string]struct{}
}

// NewCatalog creates a new in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		files:   make(map[string]domain.FileRecord),
		chunks:  make(map[string][]domain.ChunkRecord),
		deleted: make(map[string]struct{}),
	}
}

// InsertFile stores a file record and its chunks.
func (c *Catalog) InsertFile(_ context.Context, rec *domain.FileRecord, chunks []domain.ChunkInput) (string, error) {
	if rec == nil {
		return "", domain.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, live := c.files[id]
	_, gone := c.deleted[id]
	if live || gone {
		return "", fmt.Errorf("file %s: %w", id, domain.ErrDuplicate)
	}

	stored := *rec
	stored.ID = id
	stored.UploadDate = rec.UploadDate.UTC()
	stored.Tags = append([]string{}, rec.Tags...)
	stored.ChunkCount = 0
	c.files[id] = stored
	c.appendChunks(id, chunks)
	return id, nil
}

// InsertChunks appends chunks after the file's current last index.
func (c *Catalog) InsertChunks(_ context.Context, fileID string, chunks []domain.ChunkInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.files[fileID]; !ok {
		return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	c.appendChunks(fileID, chunks)
	return nil
}

// appendChunks must be called with the write lock held.
func (c *Catalog) appendChunks(fileID string, chunks []domain.ChunkInput) {
	existing := c.chunks[fileID]
	for _, in := range chunks {
		existing = append(existing, domain.ChunkRecord{
			ID:     uuid.New().String(),
			FileID: fileID,
			Index:  len(existing),
			Text:   in.Text,
			Offset: in.Offset,
		})
	}
	if len(existing) > 0 {
		c.chunks[fileID] = existing
	}
}

// record returns a copy of a stored file with its chunk count.
// Must be called with a lock held.
func (c *Catalog) record(id string) (domain.FileRecord, bool) {
	rec, ok := c.files[id]
	if !ok {
		return domain.FileRecord{}, false
	}
	rec.Tags = append([]string{}, rec.Tags...)
	rec.ChunkCount = len(c.chunks[id])
	return rec, true
}

// GetFile retrieves a file record by ID.
func (c *Catalog) GetFile(_ context.Context, id string) (*domain.FileRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.record(id)
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return &rec, nil
}

// GetChunk retrieves one chunk of a file by index.
func (c *Catalog) GetChunk(_ context.Context, fileID string, index int) (*domain.ChunkRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chunks := c.chunks[fileID]
	if index < 0 || index >= len(chunks) {
		return nil, fmt.Errorf("chunk %d of file %s: %w", index, fileID, domain.ErrNotFound)
	}
	chunk := chunks[index]
	return &chunk, nil
}

// ListChunks returns all chunks of a file ordered by index.
func (c *Catalog) ListChunks(_ context.Context, fileID string) ([]domain.ChunkRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chunks, ok := c.chunks[fileID]
	if !ok {
		return nil, nil
	}
	return append([]domain.ChunkRecord(nil), chunks...), nil
}

// sorted returns files in category, newest first. Must be called with a lock held.
func (c *Catalog) sorted(category string) []domain.FileRecord {
	result := []domain.FileRecord{}
	for id := range c.files {
		rec, _ := c.record(id)
		if category != "" && rec.Category != category {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadDate.Equal(result[j].UploadDate) {
			return result[i].UploadDate.After(result[j].UploadDate)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// ListFiles returns files, most recent upload first.
func (c *Catalog) ListFiles(_ context.Context, category string) ([]domain.FileRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sorted(category), nil
}

// containsAll reports whether text contains every lower-cased term.
func containsAll(text string, terms []string) bool {
	folded := strings.ToLower(text)
	for _, term := range terms {
		if !strings.Contains(folded, term) {
			return false
		}
	}
	return true
}

// SearchText returns the raw per-file matches for query.
func (c *Catalog) SearchText(_ context.Context, query, category string) ([]domain.TextMatch, error) {
	terms := strings.Fields(strings.ToLower(query))
	matches := []domain.TextMatch{}
	if len(terms) == 0 {
		return matches, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.sorted(category) {
		var fields []string
		if containsAll(rec.Filename, terms) || containsAll(rec.OriginalName, terms) {
			fields = append(fields, domain.FieldFilename)
		}
		if containsAll(rec.Description, terms) {
			fields = append(fields, domain.FieldDescription)
		}
		if containsAll(strings.Join(rec.Tags, " "), terms) {
			fields = append(fields, domain.FieldTags)
		}

		m := domain.TextMatch{File: rec, Fields: fields}
		for _, chunk := range c.chunks[rec.ID] {
			if containsAll(chunk.Text, terms) {
				m.ChunkIndices = append(m.ChunkIndices, chunk.Index)
				m.ChunkTexts = append(m.ChunkTexts, chunk.Text)
			}
		}
		if len(m.Fields) == 0 && len(m.ChunkIndices) == 0 {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// UpdateFileMetadata changes category, description or tags.
func (c *Catalog) UpdateFileMetadata(_ context.Context, id string, update domain.MetadataUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.files[id]
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	if update.Category != nil {
		rec.Category = *update.Category
	}
	if update.Description != nil {
		rec.Description = *update.Description
	}
	if update.Tags != nil {
		rec.Tags = append([]string{}, *update.Tags...)
	}
	c.files[id] = rec
	return nil
}

// DeleteFile removes a file and its chunks. The id is never reused.
func (c *Catalog) DeleteFile(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(c.files, id)
	delete(c.chunks, id)
	c.deleted[id] = struct{}{}
	return nil
}

// AggregateStats summarises the catalog.
func (c *Catalog) AggregateStats(_ context.Context) (*domain.AggregateStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := &domain.AggregateStats{
		CountsByType:     map[string]int{},
		CountsByCategory: map[string]int{},
	}
	for id, rec := range c.files {
		stats.TotalFiles++
		stats.TotalSize += rec.FileSize
		stats.TotalChunks += len(c.chunks[id])
		stats.CountsByType[rec.FileType]++
		stats.CountsByCategory[rec.Category]++
	}
	return stats, nil
}

// Close is a no-op.
func (c *Catalog) Close() error {
	return nil
}
