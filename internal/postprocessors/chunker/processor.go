// Package chunker splits extracted document text into bounded, ordered chunks.
package chunker

import "github.com/custodia-labs/knowbase/internal/core/domain"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultMaxChunkSize

// Processor splits text into boundary-aware chunks.
// It implements the driven.Chunker interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured bound.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Chunk splits text into chunks carrying their rune offsets.
func (p *Processor) Chunk(text string) []domain.ChunkInput {
	pieces := Split(text, p.chunkSize)
	if len(pieces) == 0 {
		return nil
	}

	chunks := make([]domain.ChunkInput, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.ChunkInput{Text: piece.Text, Offset: piece.Offset}
	}
	return chunks
}
