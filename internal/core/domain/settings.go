package domain

// Default setting values.
const (
	DefaultMaxChunkSize   = 1000
	DefaultMaxUploadBytes = 50 << 20
	DefaultConcurrency    = 4
	DefaultSearchLimit    = 20
)

// StorageSettings locates the catalog database and the blob root.
type StorageSettings struct {
	// DataDir holds the catalog database.
	DataDir string

	// BlobDir holds original file bytes. Defaults to <DataDir>/files.
	BlobDir string
}

// IngestSettings holds ingestion pipeline configuration.
type IngestSettings struct {
	// MaxChunkSize is the chunk bound in characters.
	MaxChunkSize int

	// MaxUploadBytes rejects larger uploads.
	MaxUploadBytes int64

	// DefaultCategory applies when an upload names no category.
	DefaultCategory string
}

// ImportSettings holds bulk import configuration.
type ImportSettings struct {
	Concurrency   int
	RatePerSecond float64

	// Extensions is the allow-list of file extensions without dot.
	Extensions []string
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultLimit applies when a caller does not set a limit.
	DefaultLimit int
}

// MCPSettings holds MCP server configuration.
type MCPSettings struct {
	// Port selects HTTP transport. Zero means stdio.
	Port int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage StorageSettings
	Ingest  IngestSettings
	Import  ImportSettings
	Search  SearchSettings
	MCP     MCPSettings
}

// DefaultImportExtensions lists the formats the extractor registry understands.
func DefaultImportExtensions() []string {
	return []string{"txt", "md", "markdown", "html", "htm", "docx", "pdf", "csv", "json", "log"}
}

// DefaultAppSettings returns settings with sensible defaults.
// Storage directories are resolved by the config layer.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Ingest: IngestSettings{
			MaxChunkSize:    DefaultMaxChunkSize,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			DefaultCategory: DefaultCategory,
		},
		Import: ImportSettings{
			Concurrency: DefaultConcurrency,
			Extensions:  DefaultImportExtensions(),
		},
		Search: SearchSettings{
			DefaultLimit: DefaultSearchLimit,
		},
	}
}
