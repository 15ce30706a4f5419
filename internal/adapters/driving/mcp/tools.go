package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// defaultSearchLimit applies when a search call sets no limit.
const defaultSearchLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"words to look for in file names, descriptions, tags and content"`
	Category string `json:"category,omitempty" jsonschema:"restrict results to this exact category"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	FileID        string   `json:"file_id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Score         int      `json:"score"`
	MatchedFields []string `json:"matched_fields,omitempty"`
	ChunkIndices  []int    `json:"chunk_indices,omitempty"`
	Snippets      []string `json:"snippets,omitempty"`
}

// ListFilesInput is the input schema for the list_files tool.
type ListFilesInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list files in this exact category"`
}

// ListFilesOutput is the output schema for the list_files tool.
type ListFilesOutput struct {
	Files []FileOutput `json:"files"`
	Count int          `json:"count"`
}

// FileOutput describes one cataloged file.
type FileOutput struct {
	FileID      string   `json:"file_id"`
	Name        string   `json:"name"`
	FileType    string   `json:"file_type"`
	Size        int64    `json:"size"`
	UploadDate  string   `json:"upload_date"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ChunkCount  int      `json:"chunk_count"`
}

// GetContentInput is the input schema for the get_content tool.
type GetContentInput struct {
	FileID     string `json:"file_id" jsonschema:"identifier of the file"`
	ChunkIndex *int   `json:"chunk_index,omitempty" jsonschema:"return only this 0-based chunk instead of the whole text"`
}

// GetContentOutput is the output schema for the get_content tool.
type GetContentOutput struct {
	File        FileOutput `json:"file"`
	ChunkIndex  *int       `json:"chunk_index,omitempty"`
	TotalChunks int        `json:"total_chunks"`
	Text        string     `json:"text"`
}

// FileInfoInput is the input schema for the file_info tool.
type FileInfoInput struct {
	FileID string `json:"file_id" jsonschema:"identifier of the file"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalFiles       int            `json:"total_files"`
	TotalSize        int64          `json:"total_size"`
	TotalChunks      int            `json:"total_chunks"`
	CountsByType     map[string]int `json:"counts_by_type"`
	CountsByCategory map[string]int `json:"counts_by_category"`
}

// UploadTextInput is the input schema for the upload_text tool.
type UploadTextInput struct {
	Name        string   `json:"name" jsonschema:"file name including extension, e.g. notes.md"`
	Text        string   `json:"text" jsonschema:"document content"`
	Category    string   `json:"category,omitempty" jsonschema:"category for the new file"`
	Description string   `json:"description,omitempty" jsonschema:"short description"`
	Tags        []string `json:"tags,omitempty" jsonschema:"tags for the new file"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base. Every word of the query must appear in a field or chunk.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_files",
		Description: "List stored files, most recent first",
	}, s.handleListFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_content",
		Description: "Read the extracted text of a file, or of one chunk",
	}, s.handleGetContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "file_info",
		Description: "Show metadata for a file",
	}, s.handleFileInfo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Summarise the knowledge base by file type and category",
	}, s.handleStats)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "upload_text",
			Description: "Add a text document to the knowledge base",
		}, s.handleUploadText)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := domain.SearchOptions{Category: input.Category, Limit: limit}
	hits, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		output.Results[i] = SearchResultOutput{
			FileID:        hits[i].File.ID,
			Name:          hits[i].File.OriginalName,
			Category:      hits[i].File.Category,
			Score:         hits[i].Score,
			MatchedFields: hits[i].MatchedFields,
			ChunkIndices:  hits[i].ChunkIndices,
			Snippets:      hits[i].Snippets,
		}
	}

	return nil, output, nil
}

// handleListFiles handles the list_files tool invocation.
func (s *Server) handleListFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListFilesInput,
) (*mcp.CallToolResult, ListFilesOutput, error) {
	files, err := s.ports.Files.List(ctx, input.Category)
	if err != nil {
		return nil, ListFilesOutput{}, toolError("list_files", err)
	}

	output := ListFilesOutput{
		Files: make([]FileOutput, len(files)),
		Count: len(files),
	}
	for i := range files {
		output.Files[i] = toFileOutput(&files[i])
	}
	return nil, output, nil
}

// handleGetContent handles the get_content tool invocation.
func (s *Server) handleGetContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetContentInput,
) (*mcp.CallToolResult, GetContentOutput, error) {
	content, err := s.ports.Files.Content(ctx, input.FileID, input.ChunkIndex)
	if err != nil {
		return nil, GetContentOutput{}, toolError("get_content", err)
	}

	return nil, GetContentOutput{
		File:        toFileOutput(&content.File),
		ChunkIndex:  content.ChunkIndex,
		TotalChunks: content.TotalChunks,
		Text:        content.Text,
	}, nil
}

// handleFileInfo handles the file_info tool invocation.
func (s *Server) handleFileInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FileInfoInput,
) (*mcp.CallToolResult, FileOutput, error) {
	file, err := s.ports.Files.Get(ctx, input.FileID)
	if err != nil {
		return nil, FileOutput{}, toolError("file_info", err)
	}
	return nil, toFileOutput(file), nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Files.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, toolError("stats", err)
	}

	output := StatsOutput{
		TotalFiles:       stats.TotalFiles,
		TotalSize:        stats.TotalSize,
		TotalChunks:      stats.TotalChunks,
		CountsByType:     stats.CountsByType,
		CountsByCategory: stats.CountsByCategory,
	}
	if output.CountsByType == nil {
		output.CountsByType = map[string]int{}
	}
	if output.CountsByCategory == nil {
		output.CountsByCategory = map[string]int{}
	}
	return nil, output, nil
}

// handleUploadText handles the upload_text tool invocation.
func (s *Server) handleUploadText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadTextInput,
) (*mcp.CallToolResult, FileOutput, error) {
	res := s.ports.Ingest.Upload(ctx, domain.UploadRequest{
		Content:      []byte(input.Text),
		OriginalName: input.Name,
		Category:     input.Category,
		Tags:         input.Tags,
		Description:  input.Description,
	})
	if err := res.Error(); err != nil {
		return nil, FileOutput{}, toolError("upload_text", err)
	}
	return nil, toFileOutput(res.File), nil
}

func toFileOutput(f *domain.FileSummary) FileOutput {
	return FileOutput{
		FileID:      f.ID,
		Name:        f.OriginalName,
		FileType:    f.FileType,
		Size:        f.FileSize,
		UploadDate:  f.UploadDate.Format(time.RFC3339),
		Category:    f.Category,
		Description: f.Description,
		Tags:        f.Tags,
		ChunkCount:  f.ChunkCount,
	}
}
