package evaluation

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var errNoContent = errors.New("document has no content source")

// Opener returns a fresh reader over a document's bytes.
type Opener func() (io.ReadCloser, error)

// Document is an opaque, immutable handle to a selected manuscript. The zero
// value means no document is selected.
type Document struct {
	name   string
	size   int64
	path   string
	opener Opener
}

// NewDocument builds a handle. path may be empty for documents that do not
// live on disk.
func NewDocument(name string, size int64, path string, opener Opener) Document {
	return Document{name: name, size: size, path: path, opener: opener}
}

// NewMemoryDocument builds a handle backed by an in-memory copy of data.
func NewMemoryDocument(name string, data []byte) Document {
	content := append([]byte(nil), data...)
	return Document{
		name: name,
		size: int64(len(content)),
		opener: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// Name returns the file name as supplied by the user.
func (d Document) Name() string { return d.name }

// Size returns the document size in bytes.
func (d Document) Size() int64 { return d.size }

// Path returns the on-disk location, or "" for in-memory documents.
func (d Document) Path() string { return d.path }

// Extension returns the lower-cased file extension including the dot.
func (d Document) Extension() string {
	return strings.ToLower(filepath.Ext(d.name))
}

// IsZero reports whether the handle refers to no document.
func (d Document) IsZero() bool {
	return d.name == "" && d.opener == nil && d.path == ""
}

// Open returns a reader over the document content.
func (d Document) Open() (io.ReadCloser, error) {
	if d.opener == nil {
		return nil, errNoContent
	}
	return d.opener()
}
