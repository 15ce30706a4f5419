package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Name:     "page.html",
		MIMEType: "text/html",
		Content: []byte(`<html><head><title>Leave &amp; Holidays</title><style>p{}</style></head>
<body><h1>Policy</h1><p>Staff get <b>25</b> days.</p><script>alert(1)</script>
<p>Line one<br>line two</p></body></html>`),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Leave & Holidays", result.Metadata["title"])
	assert.Equal(t, "html", result.Metadata["format"])
	assert.Equal(t, "Policy\n\nStaff get 25 days.\n\nLine one\nline two", result.Text)
	assert.NotContains(t, result.Text, "alert")
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	raw := &domain.RawDocument{Name: "team_page.htm", Content: []byte("<p>hi</p>")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "team page", result.Metadata["title"])
	assert.Equal(t, "hi", result.Text)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestStripHTML_Entities(t *testing.T) {
	assert.Equal(t, "a < b & c", stripHTML("a &lt; b &amp; c"))
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
