package domain

// RawDocument represents the opaque bytes of an upload handed to a normaliser.
type RawDocument struct {
	// Name is the original file name. Normalisers use it for format hints.
	Name string

	// MIMEType is the detected content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
