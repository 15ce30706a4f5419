package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for knowbase resources.
	uriScheme = "knowbase://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing files.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "files",
		Name:        "files",
		Description: "Every stored file, most recent first",
		MIMEType:    "application/json",
	}, s.handleFilesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "File counts and sizes by type and category",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// Template for file content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "files/{fileId}",
		Name:        "file-content",
		Description: "Extracted text of a specific file",
		MIMEType:    "text/plain",
	}, s.handleFileContentResource)
}

// handleFilesResource returns a JSON list of all files.
func (s *Server) handleFilesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	files, err := s.ports.Files.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	infos := make([]FileOutput, len(files))
	for i := range files {
		infos[i] = toFileOutput(&files[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handleStatsResource returns aggregate statistics as JSON.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Files.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleFileContentResource returns the full text of a specific file.
func (s *Server) handleFileContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract fileId from URI: knowbase://files/{fileId}
	fileID := extractFileID(req.Params.URI)
	if fileID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Files.Content(ctx, fileID, nil)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting file content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content.Text,
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFileID extracts the file ID from a URI like knowbase://files/{fileId}.
func extractFileID(uri string) string {
	const prefix = uriScheme + "files/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
