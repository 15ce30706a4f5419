package domain

// FileOp is the kind of change observed in a watched directory.
type FileOp string

// File operations reported by a directory watcher.
const (
	FileCreated FileOp = "created"
	FileUpdated FileOp = "updated"
	FileDeleted FileOp = "deleted"
)

// FileEvent is a settled change to one file in a watched directory.
type FileEvent struct {
	Path string
	Op   FileOp
}

// WatchOptions configures automatic ingestion of a watched directory.
type WatchOptions struct {
	// Category applied to ingested files. Empty uses the configured default.
	Category string

	// Extensions restricts ingested files to these extensions (without dot).
	// Empty means every regular file.
	Extensions []string
}
