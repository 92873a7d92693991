package document

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

// DefaultMaxSize is the largest manuscript accepted without configuration.
const DefaultMaxSize int64 = 10 * 1000 * 1000

// Policy decides which files may be handed to the pipeline. It only looks at
// the name and size; content is never inspected.
type Policy struct {
	Extensions []string
	MaxSize    int64
}

// DefaultPolicy accepts .pdf, .docx and .doc files up to 10 MB.
func DefaultPolicy() Policy {
	return Policy{
		Extensions: []string{".pdf", ".docx", ".doc"},
		MaxSize:    DefaultMaxSize,
	}
}

// Accepts reports whether ext (with or without a leading dot) is allowed.
func (p Policy) Accepts(ext string) bool {
	ext = normaliseExt(ext)
	for _, allowed := range p.Extensions {
		if normaliseExt(allowed) == ext {
			return true
		}
	}
	return false
}

// Check validates a candidate file by name and size.
func (p Policy) Check(name string, size int64) error {
	ext := extensionOf(name)
	if ext == "" || !p.Accepts(ext) {
		return inkerrors.NewValidationError("document", fmt.Sprintf("unsupported file type %q; accepted: %s", name, strings.Join(p.Extensions, ", ")), nil)
	}
	if size < 0 {
		return inkerrors.NewValidationError("document", "file size is unknown", nil)
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		return inkerrors.NewValidationError("document", fmt.Sprintf("file is %s; the limit is %s", FormatSize(size), FormatSize(p.MaxSize)), nil)
	}
	return nil
}

// Describe renders the policy for help text, e.g. "PDF, DOCX, DOC up to 10 MB".
func (p Policy) Describe() string {
	names := make([]string, 0, len(p.Extensions))
	for _, ext := range p.Extensions {
		names = append(names, strings.ToUpper(strings.TrimPrefix(normaliseExt(ext), ".")))
	}
	desc := strings.Join(names, ", ")
	if p.MaxSize > 0 {
		desc += " up to " + FormatSize(p.MaxSize)
	}
	return desc
}

// FormatSize renders a byte count for display.
func FormatSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(size))
}

func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return normaliseExt(name[idx:])
}
