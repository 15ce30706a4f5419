package domain

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultCategory is the bucket used when an upload names no category.
const DefaultCategory = "General"

// UnknownFileType is the file type recorded for names without an extension.
const UnknownFileType = "unknown"

// FileRecord represents one uploaded document in the catalog.
type FileRecord struct {
	// ID is the file identity. Assigned once at ingestion and never reused.
	ID string `json:"file_id" yaml:"file_id"`

	// Filename is the sanitized storage name.
	Filename string `json:"filename" yaml:"filename"`

	// OriginalName is the name as submitted by the caller.
	OriginalName string `json:"original_name" yaml:"original_name"`

	// FileType is the lower-case extension without the dot (e.g. "pdf").
	FileType string `json:"file_type" yaml:"file_type"`

	// MIMEType is the detected content type.
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// FileSize is the size of the original bytes.
	FileSize int64 `json:"file_size" yaml:"file_size"`

	// UploadDate is set once at ingestion.
	UploadDate time.Time `json:"upload_date" yaml:"upload_date"`

	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`

	// StoragePath locates the original bytes in the blob store.
	StoragePath string `json:"-" yaml:"-"`

	// Checksum is the hex SHA-256 of the original bytes.
	Checksum string `json:"checksum" yaml:"checksum"`

	// ChunkCount is derived from the chunk rows when read back from a catalog.
	// It is never written.
	ChunkCount int `json:"chunk_count" yaml:"chunk_count"`
}

// Summary returns the externally visible view of the record.
func (f *FileRecord) Summary() FileSummary {
	return FileSummary{
		ID:           f.ID,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		FileType:     f.FileType,
		MIMEType:     f.MIMEType,
		FileSize:     f.FileSize,
		UploadDate:   f.UploadDate,
		Category:     f.Category,
		Description:  f.Description,
		Tags:         append([]string(nil), f.Tags...),
		ChunkCount:   f.ChunkCount,
	}
}

// FileSummary is a FileRecord without storage internals.
type FileSummary struct {
	ID           string    `json:"file_id" yaml:"file_id"`
	Filename     string    `json:"filename" yaml:"filename"`
	OriginalName string    `json:"original_name" yaml:"original_name"`
	FileType     string    `json:"file_type" yaml:"file_type"`
	MIMEType     string    `json:"mime_type" yaml:"mime_type"`
	FileSize     int64     `json:"file_size" yaml:"file_size"`
	UploadDate   time.Time `json:"upload_date" yaml:"upload_date"`
	Category     string    `json:"category" yaml:"category"`
	Description  string    `json:"description" yaml:"description"`
	Tags         []string  `json:"tags" yaml:"tags"`
	ChunkCount   int       `json:"chunk_count" yaml:"chunk_count"`
}

// ChunkRecord represents one extracted text segment of a file.
type ChunkRecord struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"chunk_id" yaml:"chunk_id"`

	// FileID links to the owning FileRecord.
	FileID string `json:"file_id" yaml:"file_id"`

	// Index is the 0-based ordinal within the file.
	Index int `json:"chunk_index" yaml:"chunk_index"`

	// Text is the segment content.
	Text string `json:"text" yaml:"text"`

	// Offset is the rune offset of the segment start in the extracted text.
	Offset int `json:"offset" yaml:"offset"`
}

// ChunkInput is a chunk as handed to the catalog, before an index is assigned.
type ChunkInput struct {
	Text   string
	Offset int
}

// MetadataUpdate carries the fields that may change after ingestion.
// Nil fields are left untouched.
type MetadataUpdate struct {
	Category    *string
	Description *string
	Tags        *[]string
}

// IsEmpty reports whether the update changes nothing.
func (u MetadataUpdate) IsEmpty() bool {
	return u.Category == nil && u.Description == nil && u.Tags == nil
}

// FileContent is the answer to a content request: one chunk or the whole file.
type FileContent struct {
	File FileSummary `json:"file" yaml:"file"`

	// ChunkIndex is set when a single chunk was requested.
	ChunkIndex *int `json:"chunk_index,omitempty" yaml:"chunk_index,omitempty"`

	// TotalChunks is the number of chunks in the file.
	TotalChunks int `json:"total_chunks" yaml:"total_chunks"`

	// Text is the chunk text or the reconstructed document text.
	Text string `json:"text" yaml:"text"`
}

// FileTypeOf derives the file type from a file name.
func FileTypeOf(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return UnknownFileType
	}
	return ext
}

// NormaliseTags trims tags, drops empty ones and removes duplicates.
// The order of first appearance is kept.
func NormaliseTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SplitTags parses a comma separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormaliseTags(strings.Split(s, ","))
}

// maxFilenameBytes bounds a sanitized file name in UTF-8 bytes. Blob
// stores prefix the name with a uuid, and most filesystems cap a path
// element at 255 bytes.
const maxFilenameBytes = 200

// maxExtBytes is the longest extension kept when a name is shortened.
const maxExtBytes = 16

// SanitizeFilename reduces a submitted name to a safe base name.
// Directory parts and control characters are removed and spaces become
// underscores. Long names are cut on a rune boundary, keeping the
// extension. Returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsControl(r) || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			continue
		case unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return truncateFilename(strings.TrimLeft(b.String(), "."), maxFilenameBytes)
}

// truncateFilename shortens name to at most limit bytes.
func truncateFilename(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > maxExtBytes || len(ext) == len(name) {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]
	budget := limit - len(ext)
	for i, r := range stem {
		if i+utf8.RuneLen(r) > budget {
			stem = stem[:i]
			break
		}
	}
	return stem + ext
}
