package document

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Stamper draws a provenance footer on every page of a validated PDF.
//
// Stamping is a best-effort enhancement, never a blocking dependency: any
// internal failure, and any post-stamp output that fails the signature
// check, falls back to the original buffer unchanged. Print and download
// therefore always succeed if the fetch did.
type Stamper struct {
	attribution string
	now         func() time.Time
}

// NewStamper creates a stamper. The attribution string is appended to the
// timestamp in the footer line.
func NewStamper(attribution string) *Stamper {
	return &Stamper{
		attribution: attribution,
		now:         time.Now,
	}
}

// Stamp returns buf with a footer line on every page, or buf itself when
// stamping fails for any reason. Failures are logged, never surfaced.
func (s *Stamper) Stamp(buf []byte) []byte {
	stamped, err := s.stamp(buf)
	if err != nil {
		log.Printf("footer stamping failed, serving original document: %v", err)
		return buf
	}

	// A stamped buffer that no longer carries the signature would be worse
	// than no stamp at all.
	if !HasSignature(stamped) {
		log.Printf("stamped output failed signature check, serving original document")
		return buf
	}

	return stamped
}

// FooterText returns the footer line the stamper draws, e.g.
// "Printed on: 8-Sep-2025 3:04 PM | (C) Copyright to Sheikh Hamza".
func (s *Stamper) FooterText() string {
	return fmt.Sprintf("Printed on: %s | %s", s.now().Format("2-Jan-2006 3:04 PM"), s.attribution)
}

func (s *Stamper) stamp(buf []byte) ([]byte, error) {
	// Helvetica 9pt black at the lower-left corner of each page, matching
	// the position the court's printed copies carry their annotations at.
	desc := "fontname:Helvetica, points:9, scalefactor:1 abs, position:bl, " +
		"offset:20 10, fillcolor:#000000, rotation:0, opacity:1"

	wm, err := api.TextWatermark(s.FooterText(), desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build footer watermark: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(buf), &out, nil, wm, nil); err != nil {
		return nil, fmt.Errorf("failed to apply footer watermark: %w", err)
	}

	return out.Bytes(), nil
}
