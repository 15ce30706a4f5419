package normalisers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// extensionTypes covers extensions the platform MIME table often lacks.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".json":     "application/json",
	".xml":      "application/xml",
	".yaml":     "application/x-yaml",
	".yml":      "application/x-yaml",
	".toml":     "text/toml",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".sql":      "text/x-sql",
	".sh":       "text/x-shellscript",
}

// DetectMIME returns the content type of an upload.
//
// The content is sniffed first. When sniffing only finds generic text or
// bytes, or finds a container format such as zip, the file extension decides.
func DetectMIME(name string, content []byte) string {
	sniffed := baseMIME(http.DetectContentType(content))
	byExt := typeByExtension(name)

	switch sniffed {
	case "application/octet-stream", "text/plain", "application/zip":
		if byExt != "" {
			return byExt
		}
	}
	return sniffed
}

func typeByExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return baseMIME(mime.TypeByExtension(ext))
}

// baseMIME strips parameters such as charset.
func baseMIME(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}
