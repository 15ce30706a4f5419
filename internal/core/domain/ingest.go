package domain

import "fmt"

// BulkImportCategory is the default category for files added by a bulk import.
const BulkImportCategory = "Bulk Upload"

// IngestStage names a step of the ingestion pipeline.
type IngestStage string

// Ingestion stages, in pipeline order. StageFailed is reachable from any stage.
const (
	StageReceived      IngestStage = "received"
	StageValidated     IngestStage = "validated"
	StageBlobStored    IngestStage = "blob_stored"
	StageTextExtracted IngestStage = "text_extracted"
	StageChunked       IngestStage = "chunked"
	StageCataloged     IngestStage = "cataloged"
	StageCommitted     IngestStage = "committed"
	StageFailed        IngestStage = "failed"
)

// String returns the string representation.
func (s IngestStage) String() string {
	return string(s)
}

// UploadRequest carries one document into the ingestion pipeline.
type UploadRequest struct {
	Content      []byte
	OriginalName string
	Category     string
	Tags         []string
	Description  string
}

// UploadOptions holds the metadata for an upload read from a local path.
type UploadOptions struct {
	Category    string
	Tags        []string
	Description string
}

// IngestError describes a failed ingestion.
type IngestError struct {
	// Stage is the last stage reached before the failure.
	Stage IngestStage `json:"stage" yaml:"stage"`

	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`

	// Cause is the underlying error.
	Cause error `json:"-" yaml:"-"`
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest failed at %s (%s): %s", e.Stage, e.Kind, e.Message)
}

func (e *IngestError) Unwrap() error { return e.Cause }

// NewIngestError builds an IngestError classified by KindOf(cause).
func NewIngestError(stage IngestStage, cause error) *IngestError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &IngestError{
		Stage:   stage,
		Kind:    KindOf(cause),
		Message: msg,
		Cause:   cause,
	}
}

// IngestionResult is the tagged outcome of an upload.
// Exactly one of File and Err is set.
type IngestionResult struct {
	OK bool `json:"ok" yaml:"ok"`

	// Stage is StageCommitted on success and StageFailed otherwise.
	Stage IngestStage `json:"stage" yaml:"stage"`

	File *FileSummary `json:"file,omitempty" yaml:"file,omitempty"`
	Err  *IngestError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(file FileSummary) IngestionResult {
	return IngestionResult{OK: true, Stage: StageCommitted, File: &file}
}

// Failed builds a failed result.
func Failed(stage IngestStage, cause error) IngestionResult {
	return IngestionResult{Stage: StageFailed, Err: NewIngestError(stage, cause)}
}

// Error returns the failure as an error, or nil on success.
func (r IngestionResult) Error() error {
	if r.OK || r.Err == nil {
		return nil
	}
	return r.Err
}

// ImportOptions configures a bulk directory import.
type ImportOptions struct {
	// Category applied to every imported file. Defaults to BulkImportCategory.
	Category string

	// Recursive descends into subdirectories.
	Recursive bool

	// Concurrency bounds the number of uploads in flight. Zero or less means 1.
	Concurrency int

	// RatePerSecond throttles uploads. Zero or less means unlimited.
	RatePerSecond float64

	// Extensions restricts imported files to these extensions (without dot).
	// Empty means every regular file.
	Extensions []string
}

// ImportDetail records the outcome for one file of a bulk import.
type ImportDetail struct {
	Path   string `json:"path" yaml:"path"`
	OK     bool   `json:"ok" yaml:"ok"`
	FileID string `json:"file_id,omitempty" yaml:"file_id,omitempty"`
	Chunks int    `json:"chunk_count" yaml:"chunk_count"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ImportReport summarises a bulk import.
type ImportReport struct {
	Attempted int            `json:"attempted" yaml:"attempted"`
	Succeeded int            `json:"succeeded" yaml:"succeeded"`
	Failed    int            `json:"failed" yaml:"failed"`
	Details   []ImportDetail `json:"details" yaml:"details"`
}
