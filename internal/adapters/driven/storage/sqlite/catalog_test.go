package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/adapters/driven/storage/catalogtest"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

func TestCatalog(t *testing.T) {
	catalogtest.Run(t, func(t *testing.T) driven.Catalog {
		return setupTestStore(t).Catalog()
	})
}

func TestCatalog_DeleteCascadesChunks(t *testing.T) {
	store := setupTestStore(t)
	cat := store.Catalog()
	ctx := context.Background()

	rec := catalogtest.NewRecord("a.txt", "General", 0)
	_, err := cat.InsertFile(ctx, rec, catalogtest.Chunks("one", "two", "three"))
	require.NoError(t, err)

	require.NoError(t, cat.DeleteFile(ctx, rec.ID))

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks WHERE file_id = ?", rec.ID).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM deleted_files WHERE id = ?", rec.ID).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestCatalog_ConcurrentInserts(t *testing.T) {
	store := setupTestStore(t)
	cat := store.Catalog()
	ctx := context.Background()

	const workers = 50
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := catalogtest.NewRecord(fmt.Sprintf("file-%02d.txt", i), "General", i)
			chunks := catalogtest.Chunks(fmt.Sprintf("body %d part a", i), fmt.Sprintf("body %d part b", i))
			ids[i], errs[i] = cat.InsertFile(ctx, rec, chunks)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "id %s assigned twice", ids[i])
		seen[ids[i]] = true
	}

	stats, err := cat.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, stats.TotalFiles)
	assert.Equal(t, 2*workers, stats.TotalChunks)

	files, err := cat.ListFiles(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, workers)
	for _, f := range files {
		chunks, err := cat.ListChunks(ctx, f.ID)
		require.NoError(t, err)
		assert.Len(t, chunks, f.ChunkCount)
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
		}
	}
}

func TestCatalog_SearchDuringWrites(t *testing.T) {
	store := setupTestStore(t)
	cat := store.Catalog()
	ctx := context.Background()

	const files = 10
	ids := make([]string, files)
	for i := range ids {
		rec := catalogtest.NewRecord(fmt.Sprintf("ledger-%02d.txt", i), "General", i)
		id, err := cat.InsertFile(ctx, rec, catalogtest.Chunks("ledger entry"))
		require.NoError(t, err)
		ids[i] = id
	}

	stop := make(chan struct{})
	var writers sync.WaitGroup
	writeErrs := make(chan error, files)
	for i := 0; i < files; i++ {
		writers.Add(1)
		go func(i int) {
			defer writers.Done()
			for round := 0; round < 5; round++ {
				if err := cat.InsertChunks(ctx, ids[i], catalogtest.Chunks("ledger entry appended")); err != nil {
					writeErrs <- err
					return
				}
			}
			if i%2 == 0 {
				if err := cat.DeleteFile(ctx, ids[i]); err != nil {
					writeErrs <- err
				}
			}
		}(i)
	}
	go func() {
		writers.Wait()
		close(stop)
	}()

	for done := false; !done; {
		select {
		case <-stop:
			done = true
		default:
		}
		matches, err := cat.SearchText(ctx, "ledger entry", "")
		require.NoError(t, err)
		for _, m := range matches {
			require.LessOrEqual(t, len(m.ChunkIndices), m.File.ChunkCount, m.File.ID)
			for _, idx := range m.ChunkIndices {
				assert.Less(t, idx, m.File.ChunkCount, m.File.ID)
			}
		}
	}
	close(writeErrs)
	for err := range writeErrs {
		assert.NoError(t, err)
	}

	matches, err := cat.SearchText(ctx, "ledger entry", "")
	require.NoError(t, err)
	require.Len(t, matches, files/2)
	for _, m := range matches {
		assert.Equal(t, 6, m.File.ChunkCount)
		assert.Len(t, m.ChunkIndices, 6)
	}
}

func TestCatalog_TagsStoredAsJSON(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := catalogtest.NewRecord("a.txt", "General", 0)
	rec.Tags = nil
	_, err := store.Catalog().InsertFile(ctx, rec, nil)
	require.NoError(t, err)

	var raw string
	require.NoError(t, store.db.QueryRow("SELECT tags FROM files WHERE id = ?", rec.ID).Scan(&raw))
	assert.Equal(t, "[]", raw)

	got, err := store.Catalog().GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}
