// Package pdf provides a Normaliser for PDF documents.
// Text is extracted page by page with github.com/ledongthuc/pdf and the page
// count is read with pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds a first line used as title.
const maxTitleLength = 200

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	// pdfcpu writes a config directory under the user's home unless told not to.
	api.DisableConfigDir()
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts the text of every page. Pages are separated by blank
// lines. Pages without extractable text (scans) are skipped.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := extractPages(ctx, raw.Content)
	if err != nil {
		return nil, err
	}
	content := strings.Join(pages, "\n\n")

	metadata := map[string]any{
		"mime_type": raw.MIMEType,
		"format":    "pdf",
		"title":     extractTitle(content, raw.Name),
	}
	if count, err := api.PageCount(bytes.NewReader(raw.Content), nil); err == nil {
		metadata["pages"] = count
	} else {
		logger.Debug("pdf: page count for %s: %v", raw.Name, err)
	}

	return &driven.NormaliseResult{
		Text:     content,
		Metadata: metadata,
	}, nil
}

// extractPages returns the trimmed, non-empty text of each page.
// The reader panics on some malformed files, which is reported as an error.
func extractPages(ctx context.Context, content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()

	rdr, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("pdf: open: %w", err)
	}

	n := rdr.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pg := rdr.Page(i)
		if pg.V.IsNull() {
			continue
		}
		txt, err := pg.GetPlainText(nil)
		if err != nil {
			logger.Debug("pdf: page %d: %v", i, err)
			continue
		}
		if s := strings.TrimSpace(txt); s != "" {
			pages = append(pages, s)
		}
	}
	return pages, nil
}

// extractTitle uses the first short non-empty line, falling back to the file name.
func extractTitle(content, name string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= maxTitleLength {
			return line
		}
	}

	filename := filepath.Base(name)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
