package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/adapters/driven/blob/local"
	"github.com/custodia-labs/knowbase/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/normalisers"
	"github.com/custodia-labs/knowbase/internal/postprocessors/chunker"
)

// sqliteEnv wires the services the way the binary does.
type sqliteEnv struct {
	catalog driven.Catalog
	blobs   *local.Store
	chunker *chunker.Processor
	ingest  *IngestService
	files   *FileService
	search  *SearchService
}

func newSQLiteEnv(t *testing.T) *sqliteEnv {
	t.Helper()
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := local.New(t.TempDir())
	require.NoError(t, err)

	env := &sqliteEnv{
		catalog: store.Catalog(),
		blobs:   blobs,
		chunker: chunker.New(chunker.WithChunkSize(60)),
	}
	env.ingest = NewIngestService(env.catalog, blobs, normalisers.DefaultRegistry(), env.chunker,
		WithMIMEDetector(normalisers.DetectMIME))
	env.files = NewFileService(env.catalog, blobs)
	env.search = NewSearchService(env.catalog)
	return env
}

// documentText builds a document whose chunk count grows with i.
func documentText(i int) string {
	var b strings.Builder
	for p := 0; p <= i%4; p++ {
		fmt.Fprintf(&b, "Shared handbook paragraph %d of document %02d.\n\n", p, i)
	}
	return b.String()
}

func TestSQLitePipeline_ConcurrentUploads(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()

	const workers = 50
	results := make([]domain.IngestionResult, workers)
	searchErrs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = env.ingest.Upload(ctx, domain.UploadRequest{
				Content:      []byte(documentText(i)),
				OriginalName: fmt.Sprintf("doc-%02d.txt", i),
			})
			if _, err := env.search.Search(ctx, "handbook", domain.SearchOptions{}); err != nil {
				searchErrs <- err
			}
		}(i)
	}
	wg.Wait()
	close(searchErrs)

	for err := range searchErrs {
		assert.NoError(t, err)
	}

	seen := make(map[string]bool)
	for i, res := range results {
		require.True(t, res.OK, "upload %d: %v", i, res.Error())
		assert.False(t, seen[res.File.ID], "id %s assigned twice", res.File.ID)
		seen[res.File.ID] = true
		assert.Equal(t, len(env.chunker.Chunk(documentText(i))), res.File.ChunkCount, "doc %d", i)
	}

	stats, err := env.files.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, stats.TotalFiles)

	files, err := env.files.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, workers)
	total := 0
	for _, f := range files {
		chunks, err := env.catalog.ListChunks(ctx, f.ID)
		require.NoError(t, err)
		assert.Len(t, chunks, f.ChunkCount, f.OriginalName)
		total += len(chunks)
	}
	assert.Equal(t, total, stats.TotalChunks)

	hits, err := env.search.Search(ctx, "handbook", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, workers)
}

func TestSQLitePipeline_SearchScenarios(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()

	upload := func(name, text, category string) domain.FileSummary {
		res := env.ingest.Upload(ctx, domain.UploadRequest{
			Content:      []byte(text),
			OriginalName: name,
			Category:     category,
		})
		require.True(t, res.OK, "upload %s: %v", name, res.Error())
		return *res.File
	}

	greek := upload("greek.txt", "Alpha beta. Gamma delta epsilon.", "")
	require.Equal(t, 1, greek.ChunkCount)
	hr := upload("leave.txt", "Annual leave policy for all staff.", "HR")
	upload("expenses.txt", "Expense policy and travel limits.", "Finance")

	hits, err := env.search.Search(ctx, "GAMMA", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, greek.ID, hits[0].File.ID)
	assert.Equal(t, []int{0}, hits[0].ChunkIndices)

	hits, err = env.search.Search(ctx, "zzzznotfound", domain.SearchOptions{})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	hits, err = env.search.Search(ctx, "policy", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = env.search.Search(ctx, "policy", domain.SearchOptions{Category: "HR"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, hr.ID, hits[0].File.ID)

	_, err = env.search.Search(ctx, "  ", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSQLitePipeline_DeleteRemovesEverything(t *testing.T) {
	env := newSQLiteEnv(t)
	ctx := context.Background()

	res := env.ingest.Upload(ctx, domain.UploadRequest{
		Content:      []byte(documentText(3)),
		OriginalName: "handbook.txt",
	})
	require.True(t, res.OK, "%v", res.Error())
	id := res.File.ID
	rec, err := env.catalog.GetFile(ctx, id)
	require.NoError(t, err)

	require.NoError(t, env.files.Delete(ctx, id))

	_, err = env.files.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.files.Content(ctx, id, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := env.catalog.ListChunks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	exists, err := env.blobs.Exists(ctx, rec.StoragePath)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, env.files.Delete(ctx, id), domain.ErrNotFound)
}
