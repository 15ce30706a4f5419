// Package domain defines the core business entities for knowbase.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FileRecord: An uploaded document with its catalog metadata
//   - ChunkRecord: A bounded, ordered text segment of a file
//   - SearchHit: A ranked file-level match with matched chunk indices
//   - IngestionResult: The tagged outcome of an upload
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
