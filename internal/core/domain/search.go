package domain

// Searchable field names reported in SearchHit.MatchedFields.
const (
	FieldFilename    = "filename"
	FieldDescription = "description"
	FieldTags        = "tags"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// Category restricts results to an exact category. Empty means all.
	Category string

	// Limit is the maximum number of results. Zero or less means no limit.
	Limit int
}

// TextMatch is the raw per-file match reported by a catalog before ranking.
type TextMatch struct {
	// File is the matched file with its chunk count.
	File FileRecord

	// Fields lists which of filename, description and tags matched.
	Fields []string

	// ChunkIndices lists the matching chunk indices in ascending order.
	ChunkIndices []int

	// ChunkTexts holds the text of each matching chunk, parallel to ChunkIndices.
	ChunkTexts []string
}

// SearchHit represents a single ranked search result.
type SearchHit struct {
	// File is the matched file.
	File FileSummary `json:"file" yaml:"file"`

	// Score is the number of matching fields plus the number of matching chunks.
	Score int `json:"score" yaml:"score"`

	// MatchedFields lists which metadata fields matched.
	MatchedFields []string `json:"matched_fields" yaml:"matched_fields"`

	// ChunkIndices lists the matching chunk indices in ascending order.
	ChunkIndices []int `json:"chunk_indices" yaml:"chunk_indices"`

	// Snippets contains short excerpts around the first occurrence in matching chunks.
	Snippets []string `json:"snippets" yaml:"snippets"`
}
