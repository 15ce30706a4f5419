package mcp

import (
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers free-text queries.
	Search driving.SearchService

	// Files lists files and reads their content.
	Files driving.FileService

	// Ingest accepts new documents. Optional: without it the upload_text
	// tool is not registered.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Files == nil {
		return ErrMissingFileService
	}
	return nil
}
