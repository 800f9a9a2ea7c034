package bundle

import (
	"bytes"
	"io"
	"strings"
)

// Source names the widget an image came from.
type Source string

// Supported image sources.
const (
	SourceDragDrop   Source = "drag-drop"
	SourceFilePicker Source = "file-picker"
)

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	return s == SourceDragDrop || s == SourceFilePicker
}

// Candidate is an image the user picked but has not submitted yet.
type Candidate struct {
	name        string
	contentType string
	data        []byte
}

// NewCandidate builds a candidate from its declared name, media type and bytes.
func NewCandidate(name, contentType string, data []byte) Candidate {
	return Candidate{name: name, contentType: contentType, data: data}
}

// Name returns the original file name.
func (c Candidate) Name() string { return c.name }

// ContentType returns the declared media type.
func (c Candidate) ContentType() string { return c.contentType }

// Size returns the payload length in bytes.
func (c Candidate) Size() int { return len(c.data) }

// Open returns a reader over the image bytes.
func (c Candidate) Open() io.Reader { return bytes.NewReader(c.data) }

// IsImage reports whether the declared media type is image/*.
func (c Candidate) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.contentType)), "image/")
}
