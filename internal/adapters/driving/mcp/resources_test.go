package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

func TestExtractFileID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid file URI",
			uri:      "knowbase://files/file-456",
			expected: "file-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://files/file-456",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "knowbase://files/a/b",
			expected: "",
		},
		{
			name:     "list URI",
			uri:      "knowbase://files",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractFileID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleFilesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns files as JSON", func(t *testing.T) {
		files := &mockFileService{files: []domain.FileSummary{sampleFile()}}
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: files})

		result, err := server.handleFilesResource(ctx, makeReadResourceRequest("knowbase://files"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var decoded []FileOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "file-1", decoded[0].FileID)
		assert.Empty(t, files.lastCategory)
	})

	t.Run("empty catalog is an empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: &mockFileService{}})

		result, err := server.handleFilesResource(ctx, makeReadResourceRequest("knowbase://files"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("list failure", func(t *testing.T) {
		files := &mockFileService{err: errors.New("db closed")}
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: files})

		_, err := server.handleFilesResource(ctx, makeReadResourceRequest("knowbase://files"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing files")
	})
}

func TestServer_handleStatsResource(t *testing.T) {
	files := &mockFileService{stats: &domain.AggregateStats{
		TotalFiles:       1,
		CountsByType:     map[string]int{"md": 1},
		CountsByCategory: map[string]int{"HR": 1},
	}}
	server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: files})

	result, err := server.handleStatsResource(context.Background(), makeReadResourceRequest("knowbase://stats"))

	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"total_files": 1`)
	assert.Contains(t, result.Contents[0].Text, `"HR": 1`)
}

func TestServer_handleFileContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns full text", func(t *testing.T) {
		files := &mockFileService{content: &domain.FileContent{
			File:        sampleFile(),
			TotalChunks: 2,
			Text:        "first\n\nsecond",
		}}
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: files})

		result, err := server.handleFileContentResource(ctx, makeReadResourceRequest("knowbase://files/file-1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "first\n\nsecond", result.Contents[0].Text)
		assert.Nil(t, files.lastChunk)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: &mockFileService{}})

		_, err := server.handleFileContentResource(ctx, makeReadResourceRequest("knowbase://other/x"))

		assert.Error(t, err)
	})

	t.Run("unknown file is not found", func(t *testing.T) {
		files := &mockFileService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: files})

		_, err := server.handleFileContentResource(ctx, makeReadResourceRequest("knowbase://files/missing"))

		assert.Error(t, err)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		files := &mockFileService{err: errors.New("disk gone")}
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Files: files})

		_, err := server.handleFileContentResource(ctx, makeReadResourceRequest("knowbase://files/file-1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting file content")
	})
}
