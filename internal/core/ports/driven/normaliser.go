package driven

import (
	"context"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// Normaliser extracts plain text from raw document bytes.
// Each normaliser handles specific MIME types (e.g., PDF, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the text of a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking happens afterwards in the ingestion pipeline.
type NormaliseResult struct {
	// Text is the extracted plain text.
	Text string

	// Metadata holds format specific facts, such as a page count.
	Metadata map[string]any
}
