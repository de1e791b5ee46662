package document

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfSignature is the fixed leading byte sequence identifying a genuine PDF.
// It is the sole trust boundary for document validity: advertised content
// types are never consulted.
const pdfSignature = "%PDF-"

// HasSignature reports whether buf begins with the PDF signature bytes.
func HasSignature(buf []byte) bool {
	return len(buf) >= len(pdfSignature) && string(buf[:len(pdfSignature)]) == pdfSignature
}

// Validator checks that fetched bytes are a genuine PDF before they reach
// the stamper or renderer.
type Validator struct {
	maxSize int64
}

// NewValidator creates a validator with the specified size constraint
func NewValidator(maxSize int64) *Validator {
	return &Validator{maxSize: maxSize}
}

// Validate inspects a fetched buffer. It returns nil for a genuine PDF and
// *MalformedDocumentError otherwise, sub-classified by whether the leading
// bytes resemble an HTML error page.
func (v *Validator) Validate(buf []byte) error {
	if len(buf) == 0 {
		return &MalformedDocumentError{Kind: KindUnknownBinary, Detail: "empty response"}
	}

	if v.maxSize > 0 && int64(len(buf)) > v.maxSize {
		return fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(buf), v.maxSize)
	}

	if !HasSignature(buf) {
		return &MalformedDocumentError{Kind: classifyHeader(buf)}
	}

	// The signature is the trust boundary. A structural open is advisory
	// only: a signature-valid buffer with a broken body still proceeds, so
	// it stays printable and downloadable; any decode problem surfaces as a
	// contained render error instead.
	if _, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf))); err != nil {
		log.Printf("document failed structural check, continuing: %v", err)
	}

	return nil
}

// IsValid performs a quick check on a buffer
func (v *Validator) IsValid(buf []byte) bool {
	return v.Validate(buf) == nil
}

// classifyHeader decides whether a non-PDF buffer looks like an HTML error
// page or unknown binary data, based on its leading bytes.
func classifyHeader(buf []byte) MalformedKind {
	head := buf
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := strings.TrimSpace(string(head))
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(trimmed, "<") || strings.Contains(lower, "html") {
		return KindSourceErrorPage
	}
	return KindUnknownBinary
}
