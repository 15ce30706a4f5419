package services

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/adapters/driven/blob/local"
	"github.com/custodia-labs/knowbase/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/normalisers"
	"github.com/custodia-labs/knowbase/internal/postprocessors/chunker"
)

// testEnv wires the services over an in-memory catalog and a temp blob root.
type testEnv struct {
	catalog *memory.Catalog
	blobs   *local.Store
	ingest  *IngestService
	files   *FileService
	search  *SearchService
}

// stepClock returns a clock that advances one minute per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newTestEnv(t *testing.T, opts ...IngestOption) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil, nil, opts...)
}

// newTestEnvWith lets a test replace the catalog or blob store seen by ingestion.
func newTestEnvWith(t *testing.T, catalog driven.Catalog, blobs driven.BlobStore, opts ...IngestOption) *testEnv {
	t.Helper()
	store, err := local.New(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{catalog: memory.NewCatalog(), blobs: store}
	if catalog == nil {
		catalog = env.catalog
	}
	if blobs == nil {
		blobs = store
	}

	opts = append([]IngestOption{
		WithMIMEDetector(normalisers.DetectMIME),
		WithIngestClock(stepClock()),
	}, opts...)
	env.ingest = NewIngestService(catalog, blobs, normalisers.DefaultRegistry(), chunker.New(), opts...)
	env.files = NewFileService(env.catalog, store)
	env.search = NewSearchService(env.catalog)
	return env
}

// upload ingests text and fails the test on error.
func (e *testEnv) upload(t *testing.T, name, text string, mutate ...func(*domain.UploadRequest)) domain.FileSummary {
	t.Helper()
	req := domain.UploadRequest{Content: []byte(text), OriginalName: name}
	for _, m := range mutate {
		m(&req)
	}
	res := e.ingest.Upload(context.Background(), req)
	require.True(t, res.OK, "upload %s: %v", name, res.Error())
	return *res.File
}

// blobCount counts committed blobs, ignoring the temp area.
func (e *testEnv) blobCount(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(e.blobs.Root(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".tmp" {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

var errBoom = errors.New("boom")

// failingCatalog rejects inserts and searches.
type failingCatalog struct {
	*memory.Catalog
}

func (c failingCatalog) InsertFile(context.Context, *domain.FileRecord, []domain.ChunkInput) (string, error) {
	return "", &domain.CatalogError{Op: "insert file", Err: errBoom}
}

func (c failingCatalog) SearchText(context.Context, string, string) ([]domain.TextMatch, error) {
	return nil, &domain.CatalogError{Op: "search", Err: errBoom}
}

// fullBlobStore fails every write with a full disk.
type fullBlobStore struct {
	driven.BlobStore
}

func (fullBlobStore) Put(context.Context, []byte, string) (string, error) {
	return "", &domain.StorageError{Op: "put", Err: domain.ErrStorageFull}
}

// stuckBlobStore refuses the first failures deletes.
type stuckBlobStore struct {
	driven.BlobStore

	mu       sync.Mutex
	failures int
}

func (s *stuckBlobStore) Delete(ctx context.Context, storagePath string) error {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return &domain.StorageError{Op: "delete", Path: storagePath, Err: domain.ErrStoragePermission}
	}
	return s.BlobStore.Delete(ctx, storagePath)
}
