// Package catalogtest holds the behaviour every driven.Catalog implementation
// must share. Adapter packages run it from their own tests.
package catalogtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// Factory returns an empty catalog. Cleanup is registered on t.
type Factory func(t *testing.T) driven.Catalog

var base = time.Date(2025, 1, 15, 9, 30, 0, 123456789, time.UTC)

// NewRecord builds a record uploaded minutesAgo before a fixed instant.
func NewRecord(name, category string, minutesAgo int) *domain.FileRecord {
	return &domain.FileRecord{
		ID:           uuid.New().String(),
		Filename:     name,
		OriginalName: name,
		FileType:     domain.FileTypeOf(name),
		MIMEType:     "text/plain",
		FileSize:     int64(len(name) * 10),
		UploadDate:   base.Add(-time.Duration(minutesAgo) * time.Minute),
		Category:     category,
		Tags:         []string{},
		StoragePath:  "2025/01/" + name,
		Checksum:     "abc",
	}
}

// Chunks turns texts into chunk inputs with running offsets.
func Chunks(texts ...string) []domain.ChunkInput {
	out := make([]domain.ChunkInput, len(texts))
	offset := 0
	for i, text := range texts {
		out[i] = domain.ChunkInput{Text: text, Offset: offset}
		offset += len([]rune(text)) + 2
	}
	return out
}

// Run executes the shared catalog behaviour against newCatalog.
func Run(t *testing.T, newCatalog Factory) {
	t.Run("InsertAndGet", func(t *testing.T) { testInsertAndGet(t, newCatalog(t)) })
	t.Run("InsertWithoutChunks", func(t *testing.T) { testInsertWithoutChunks(t, newCatalog(t)) })
	t.Run("DuplicateID", func(t *testing.T) { testDuplicateID(t, newCatalog(t)) })
	t.Run("InsertChunksAppends", func(t *testing.T) { testInsertChunksAppends(t, newCatalog(t)) })
	t.Run("ChunkLookups", func(t *testing.T) { testChunkLookups(t, newCatalog(t)) })
	t.Run("ListFiles", func(t *testing.T) { testListFiles(t, newCatalog(t)) })
	t.Run("SearchText", func(t *testing.T) { testSearchText(t, newCatalog(t)) })
	t.Run("SearchTextCategory", func(t *testing.T) { testSearchTextCategory(t, newCatalog(t)) })
	t.Run("UpdateMetadata", func(t *testing.T) { testUpdateMetadata(t, newCatalog(t)) })
	t.Run("DeleteFile", func(t *testing.T) { testDeleteFile(t, newCatalog(t)) })
	t.Run("AggregateStats", func(t *testing.T) { testAggregateStats(t, newCatalog(t)) })
}

func insert(t *testing.T, c driven.Catalog, rec *domain.FileRecord, chunks []domain.ChunkInput) string {
	t.Helper()
	id, err := c.InsertFile(context.Background(), rec, chunks)
	require.NoError(t, err)
	return id
}

func testInsertAndGet(t *testing.T, c driven.Catalog) {
	ctx := context.Background()
	rec := NewRecord("handbook.txt", "HR", 0)
	rec.Description = "Employee handbook"
	rec.Tags = []string{"policy", "2024"}

	id := insert(t, c, rec, Chunks("first", "second", "third"))
	assert.Equal(t, rec.ID, id)

	got, err := c.GetFile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "handbook.txt", got.Filename)
	assert.Equal(t, "txt", got.FileType)
	assert.Equal(t, "HR", got.Category)
	assert.Equal(t, "Employee handbook", got.Description)
	assert.Equal(t, []string{"policy", "2024"}, got.Tags)
	assert.Equal(t, rec.StoragePath, got.StoragePath)
	assert.True(t, rec.UploadDate.Equal(got.UploadDate))
	assert.Equal(t, 3, got.ChunkCount)

	_, err = c.GetFile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testInsertWithoutChunks(t *testing.T, c driven.Catalog) {
	id := insert(t, c, NewRecord("scan.png", "General", 0), nil)

	got, err := c.GetFile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ChunkCount)
}

func testDuplicateID(t *testing.T, c driven.Catalog) {
	ctx := context.Background()
	rec := NewRecord("a.txt", "General", 0)
	insert(t, c, rec, Chunks("x"))

	_, err := c.InsertFile(ctx, rec, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, c.DeleteFile(ctx, rec.ID))
	_, err = c.InsertFile(ctx, rec, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "deleted ids are never reused")
}

func testInsertChunksAppends(t *testing.T, c driven.Catalog) {
	ctx := context.Background()
	id := insert(t, c, NewRecord("a.txt", "General", 0), Chunks("zero", "one"))

	require.NoError(t, c.InsertChunks(ctx, id, Chunks("two", "three")))

	chunks, err := c.ListChunks(ctx, id)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, id, chunk.FileID)
		assert.NotEmpty(t, chunk.ID)
	}
	assert.Equal(t, "three", chunks[3].Text)

	err = c.InsertChunks(ctx, "missing", Chunks("x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testChunkLookups(t *testing.T, c driven.Catalog) {
	ctx := context.Background()
	id := insert(t, c, NewRecord("a.txt", "General", 0), Chunks("alpha", "beta"))

	chunk, err := c.GetChunk(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "beta", chunk.Text)
	assert.Equal(t, 7, chunk.Offset)

	_, err = c.GetChunk(ctx, id, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := c.ListChunks(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func testListFiles(t *testing.T, c driven.Catalog) {
	ctx := context.Background()

	files, err := c.ListFiles(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	old := insert(t, c, NewRecord("old.txt", "HR", 30), nil)
	newest := insert(t, c, NewRecord("new.txt", "Finance", 1), Chunks("x"))
	mid := insert(t, c, NewRecord("mid.txt", "HR", 10), nil)

	files, err = c.ListFiles(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{newest, mid, old}, []string{files[0].ID, files[1].ID, files[2].ID})
	assert.Equal(t, 1, files[0].ChunkCount)

	files, err = c.ListFiles(ctx, "HR")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, mid, files[0].ID)

	files, err = c.ListFiles(ctx, "hr")
	require.NoError(t, err)
	assert.Empty(t, files, "category match is exact")
}

func testSearchText(t *testing.T, c driven.Catalog) {
	ctx := context.Background()

	byName := NewRecord("Budget-Plan.txt", "Finance", 5)
	insert(t, c, byName, Chunks("nothing relevant"))

	byDesc := NewRecord("notes.txt", "General", 4)
	byDesc.Description = "The annual BUDGET review"
	insert(t, c, byDesc, nil)

	byTags := NewRecord("misc.txt", "General", 3)
	byTags.Tags = []string{"finance", "budget"}
	insert(t, c, byTags, nil)

	byChunks := NewRecord("report.txt", "General", 2)
	insert(t, c, byChunks, Chunks("intro", "the Budget grew", "outro", "budget again"))

	insert(t, c, NewRecord("other.txt", "General", 1), Chunks("unrelated"))

	matches, err := c.SearchText(ctx, "budget", "")
	require.NoError(t, err)
	require.Len(t, matches, 4)

	got := map[string]domain.TextMatch{}
	for _, m := range matches {
		got[m.File.ID] = m
	}
	assert.Equal(t, []string{domain.FieldFilename}, got[byName.ID].Fields)
	assert.Empty(t, got[byName.ID].ChunkIndices)
	assert.Equal(t, []string{domain.FieldDescription}, got[byDesc.ID].Fields)
	assert.Equal(t, []string{domain.FieldTags}, got[byTags.ID].Fields)
	assert.Empty(t, got[byChunks.ID].Fields)
	assert.Equal(t, []int{1, 3}, got[byChunks.ID].ChunkIndices)
	assert.Equal(t, []string{"the Budget grew", "budget again"}, got[byChunks.ID].ChunkTexts)
	assert.Equal(t, 4, got[byChunks.ID].File.ChunkCount)

	// Every term must occur in the same field or chunk.
	matches, err = c.SearchText(ctx, "annual review", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, byDesc.ID, matches[0].File.ID)

	matches, err = c.SearchText(ctx, "budget unrelated", "")
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = c.SearchText(ctx, "zzzznotfound", "")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func testSearchTextCategory(t *testing.T, c driven.Catalog) {
	ctx := context.Background()

	hr := NewRecord("policy.txt", "HR", 2)
	insert(t, c, hr, Chunks("Leave policy for ÜBER staff"))
	fin := NewRecord("ledger.txt", "Finance", 1)
	insert(t, c, fin, Chunks("policy on expenses"))

	matches, err := c.SearchText(ctx, "policy", "HR")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, hr.ID, matches[0].File.ID)

	matches, err = c.SearchText(ctx, "policy", "Finance")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, fin.ID, matches[0].File.ID)

	matches, err = c.SearchText(ctx, "über", "")
	require.NoError(t, err)
	require.Len(t, matches, 1, "case folding covers non-ASCII letters")
}

func testUpdateMetadata(t *testing.T, c driven.Catalog) {
	ctx := context.Background()
	id := insert(t, c, NewRecord("a.txt", "General", 0), Chunks("keep me"))

	cat := "Legal"
	desc := "Signed contract"
	tags := []string{"contract"}
	require.NoError(t, c.UpdateFileMetadata(ctx, id, domain.MetadataUpdate{Category: &cat, Description: &desc, Tags: &tags}))

	got, err := c.GetFile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Legal", got.Category)
	assert.Equal(t, "Signed contract", got.Description)
	assert.Equal(t, []string{"contract"}, got.Tags)
	assert.Equal(t, 1, got.ChunkCount, "chunks untouched")

	onlyDesc := "Amended"
	require.NoError(t, c.UpdateFileMetadata(ctx, id, domain.MetadataUpdate{Description: &onlyDesc}))
	got, err = c.GetFile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Legal", got.Category)
	assert.Equal(t, "Amended", got.Description)

	err = c.UpdateFileMetadata(ctx, "missing", domain.MetadataUpdate{Category: &cat})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = c.UpdateFileMetadata(ctx, "missing", domain.MetadataUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteFile(t *testing.T, c driven.Catalog) {
	ctx := context.Background()
	id := insert(t, c, NewRecord("a.txt", "General", 0), Chunks("one", "two"))
	other := insert(t, c, NewRecord("b.txt", "General", 0), Chunks("three"))

	require.NoError(t, c.DeleteFile(ctx, id))

	_, err := c.GetFile(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, err := c.ListChunks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	assert.ErrorIs(t, c.DeleteFile(ctx, id), domain.ErrNotFound)

	got, err := c.GetFile(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ChunkCount)
}

func testAggregateStats(t *testing.T, c driven.Catalog) {
	ctx := context.Background()

	stats, err := c.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFiles)
	assert.NotNil(t, stats.CountsByType)

	for i := 0; i < 3; i++ {
		insert(t, c, NewRecord(fmt.Sprintf("doc%d.txt", i), "HR", i), Chunks("a", "b"))
	}
	insert(t, c, NewRecord("sheet.pdf", "Finance", 9), Chunks("c"))

	stats, err = c.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalFiles)
	assert.Equal(t, 7, stats.TotalChunks)
	assert.Equal(t, int64(3*80+90), stats.TotalSize)
	assert.Equal(t, map[string]int{"txt": 3, "pdf": 1}, stats.CountsByType)
	assert.Equal(t, map[string]int{"HR": 3, "Finance": 1}, stats.CountsByCategory)
}
