// Package mcp provides an MCP (Model Context Protocol) server adapter for knowbase.
// It lets an answering assistant search the knowledge base and read file
// content without touching the catalog directly.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingFileService is returned when the file service is not provided.
	ErrMissingFileService = errors.New("mcp: file service is required")
)

// toolError prefixes err with its kind so clients can tell a bad request
// from a storage failure.
func toolError(op string, err error) error {
	return fmt.Errorf("%s: %s: %w", op, domain.KindOf(err), err)
}
