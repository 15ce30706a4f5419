package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	if coreXML != "" {
		core, err := w.Create("docProps/core.xml")
		require.NoError(t, err)
		_, err = core.Write([]byte(coreXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Equal(t, []string{MIMEType}, mimeTypes)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	docXML := docHeader + `<w:body>
<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> World</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
</w:body></w:document>`
	coreXML := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Handbook</dc:title>
</cp:coreProperties>`

	raw := &domain.RawDocument{
		Name:     "handbook.docx",
		MIMEType: MIMEType,
		Content:  createTestDOCX(t, docXML, coreXML),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Hello World\n\nSecond paragraph.", result.Text)
	assert.Equal(t, "Handbook", result.Metadata["title"])
	assert.Equal(t, "docx", result.Metadata["format"])
}

func TestNormalise_Tables(t *testing.T) {
	docXML := docHeader + `<w:body>
<w:p><w:r><w:t>Rates</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Day</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>100</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body></w:document>`

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		Name:    "rates.docx",
		Content: createTestDOCX(t, docXML, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rates\n\nDay | 100", result.Text)
	assert.Equal(t, "rates", result.Metadata["title"])
}

func TestNormalise_InvalidZip(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		Name:    "broken.docx",
		Content: []byte("not a zip"),
	})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestNormalise_MissingDocumentXML(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		Name:    "empty.docx",
		Content: createTestDOCX(t, "", ""),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
