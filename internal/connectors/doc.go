// Package connectors provides the local sources documents are read from.
// The filesystem connector enumerates directories for bulk imports and
// watches a directory for files to ingest automatically.
package connectors
