package domain

// AggregateStats summarises the whole catalog.
type AggregateStats struct {
	TotalFiles       int            `json:"total_files" yaml:"total_files"`
	TotalSize        int64          `json:"total_size" yaml:"total_size"`
	TotalChunks      int            `json:"total_chunks" yaml:"total_chunks"`
	CountsByType     map[string]int `json:"counts_by_type" yaml:"counts_by_type"`
	CountsByCategory map[string]int `json:"counts_by_category" yaml:"counts_by_category"`
}
