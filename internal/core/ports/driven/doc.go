// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - BlobStore: Original file bytes (local filesystem)
//   - Catalog: File and chunk metadata persistence (SQLite)
//   - Normaliser: Extracts plain text from one family of formats
//   - NormaliserRegistry: Selects the appropriate normaliser by MIME type
//   - Chunker: Splits extracted text into bounded chunks
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
