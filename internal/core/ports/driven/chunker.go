package driven

import "github.com/custodia-labs/knowbase/internal/core/domain"

// Chunker splits extracted text into ordered, bounded pieces.
type Chunker interface {
	// Chunk splits text. Empty or whitespace-only text yields no chunks.
	Chunk(text string) []domain.ChunkInput
}
