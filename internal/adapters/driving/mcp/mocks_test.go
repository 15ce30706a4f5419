package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits      []domain.SearchHit
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchHit, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.hits, m.err
}

// mockFileService is a mock implementation of driving.FileService.
type mockFileService struct {
	files        []domain.FileSummary
	content      *domain.FileContent
	stats        *domain.AggregateStats
	err          error
	lastCategory string
	lastChunk    *int
}

func (m *mockFileService) List(_ context.Context, category string) ([]domain.FileSummary, error) {
	m.lastCategory = category
	return m.files, m.err
}

func (m *mockFileService) Get(_ context.Context, id string) (*domain.FileSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.files {
		if m.files[i].ID == id {
			return &m.files[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockFileService) Content(_ context.Context, _ string, chunkIndex *int) (*domain.FileContent, error) {
	m.lastChunk = chunkIndex
	return m.content, m.err
}

func (m *mockFileService) Open(_ context.Context, _ string) ([]byte, *domain.FileSummary, error) {
	return nil, nil, m.err
}

func (m *mockFileService) Stats(_ context.Context) (*domain.AggregateStats, error) {
	return m.stats, m.err
}

func (m *mockFileService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockFileService) UpdateMetadata(
	_ context.Context,
	_ string,
	_ domain.MetadataUpdate,
) (*domain.FileSummary, error) {
	return nil, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  domain.IngestionResult
	lastReq domain.UploadRequest
}

func (m *mockIngestService) Upload(_ context.Context, req domain.UploadRequest) domain.IngestionResult {
	m.lastReq = req
	return m.result
}

func (m *mockIngestService) UploadFile(_ context.Context, _ string, _ domain.UploadOptions) domain.IngestionResult {
	return m.result
}

func sampleFile() domain.FileSummary {
	return domain.FileSummary{
		ID:           "file-1",
		Filename:     "handbook.md",
		OriginalName: "handbook.md",
		FileType:     "md",
		MIMEType:     "text/markdown",
		FileSize:     1234,
		UploadDate:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Category:     "HR",
		Description:  "Employee handbook",
		Tags:         []string{"policy"},
		ChunkCount:   3,
	}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}
