package plaintext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-java",
		"text/x-c",
		"text/x-shellscript",
		"text/x-sql",
		"text/csv",
		"text/tab-separated-values",
		"text/yaml",
		"text/toml",
		"text/javascript",
		"text/css",
		"text/xml",
		"application/json",
		"application/xml",
		"application/x-yaml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the content as text.
// Invalid UTF-8 sequences are dropped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ToValidUTF8(string(raw.Content), "")
	text = strings.TrimPrefix(text, "\ufeff")

	return &driven.NormaliseResult{
		Text: text,
		Metadata: map[string]any{
			"mime_type": raw.MIMEType,
			"format":    "text",
			"title":     extractTitle(raw.Name),
		},
	}, nil
}

// extractTitle extracts a human-readable title from a file name.
func extractTitle(name string) string {
	filename := filepath.Base(name)

	// Remove common extensions for cleaner title
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	// Replace underscores and dashes with spaces
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
