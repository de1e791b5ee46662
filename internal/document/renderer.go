package document

import (
	"bytes"
	"context"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// RenderedPage is one rasterized page, PNG-encoded, with its zero-based
// sequence index.
type RenderedPage struct {
	Index  int
	Width  int
	Height int
	PNG    []byte
}

// Renderer decodes a PDF buffer and rasterizes its pages at a fixed zoom
// scale.
type Renderer struct {
	scale float64
}

// NewRenderer creates a renderer. scale is the zoom factor relative to the
// page's intrinsic size at 72 DPI.
func NewRenderer(scale float64) *Renderer {
	return &Renderer{scale: scale}
}

// PageCount returns the number of pages in the buffer.
func (r *Renderer) PageCount(buf []byte) (int, error) {
	doc, err := fitz.NewFromMemory(buf)
	if err != nil {
		return 0, &RenderError{Page: -1, Err: err}
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// RenderPage rasterizes the page at the given zero-based index.
func (r *Renderer) RenderPage(buf []byte, index int) (*RenderedPage, error) {
	doc, err := fitz.NewFromMemory(buf)
	if err != nil {
		return nil, &RenderError{Page: -1, Err: err}
	}
	defer doc.Close()

	return r.renderPage(doc, index)
}

// RenderAll rasterizes every page in increasing index order, invoking emit
// as each page completes so callers can reveal pages progressively. Pages
// render strictly one at a time to bound peak raster memory. The context is
// checked between pages; a cancelled context stops remaining work. Any
// failure aborts the sequence, and the caller must discard pages already
// emitted: a partial page set is never presented.
func (r *Renderer) RenderAll(ctx context.Context, buf []byte, emit func(*RenderedPage) error) error {
	doc, err := fitz.NewFromMemory(buf)
	if err != nil {
		return &RenderError{Page: -1, Err: err}
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := r.renderPage(doc, i)
		if err != nil {
			return err
		}
		if err := emit(page); err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) renderPage(doc *fitz.Document, index int) (*RenderedPage, error) {
	img, err := doc.ImageDPI(index, 72*r.scale)
	if err != nil {
		return nil, &RenderError{Page: index, Err: err}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, &RenderError{Page: index, Err: err}
	}

	bounds := img.Bounds()
	return &RenderedPage{
		Index:  index,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		PNG:    out.Bytes(),
	}, nil
}
