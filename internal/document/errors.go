package document

import "fmt"

// MalformedKind sub-classifies a document that failed the signature check.
// It refines the user-facing message only; both kinds abort the pipeline.
type MalformedKind int

const (
	// KindSourceErrorPage means the leading bytes resemble markup: the
	// upstream almost certainly served an HTML error page instead of the
	// document.
	KindSourceErrorPage MalformedKind = iota
	// KindUnknownBinary means the bytes are neither a PDF nor
	// recognizable markup.
	KindUnknownBinary
)

// MalformedDocumentError reports fetched bytes that are not a genuine PDF.
type MalformedDocumentError struct {
	Kind   MalformedKind
	Detail string
}

// Error returns the string representation of the malformed document error
func (e *MalformedDocumentError) Error() string {
	switch e.Kind {
	case KindSourceErrorPage:
		return "the requested document is not available (source returned an HTML error page)"
	default:
		if e.Detail != "" {
			return fmt.Sprintf("the source file is not a valid PDF: %s", e.Detail)
		}
		return "the source file is not a valid PDF"
	}
}

// RenderError reports a failure while decoding or rasterizing a document.
// Page is -1 when the document itself could not be decoded.
type RenderError struct {
	Page int
	Err  error
}

// Error returns the string representation of the render error
func (e *RenderError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("failed to decode document: %v", e.Err)
	}
	return fmt.Sprintf("failed to render page %d: %v", e.Page, e.Err)
}

// Unwrap returns the underlying error
func (e *RenderError) Unwrap() error {
	return e.Err
}
