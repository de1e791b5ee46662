package document

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Fetcher retrieves the raw bytes behind an absolute document URL. The relay
// client satisfies this.
type Fetcher interface {
	FetchDocument(ctx context.Context, docURL string) ([]byte, error)
}

// Session is the handle for one opened document. The stamped buffer is
// computed exactly once at open and is the single shared input for viewing,
// printing and download, so what is printed never diverges from what is on
// screen. A new open produces a whole new session; sessions are never
// partially updated.
type Session struct {
	Title     string
	SourceURL string
	Buffer    []byte // stamped, or the original when stamping fell back
	PageCount int    // zero when the decode for counting failed; render reports the real error
	OpenedAt  time.Time
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DownloadFilename derives a safe attachment filename from the session
// title, e.g. "Digital_BLD_Judgment_CivilAppealNo123of20_1757300000000.pdf".
func (s *Session) DownloadFilename() string {
	name := "Digital_BLD_Judgment"

	clean := unsafeFilenameChars.ReplaceAllString(s.Title, "")
	if len(clean) > 20 {
		clean = clean[:20]
	}
	if clean != "" {
		name += "_" + clean
	}

	return fmt.Sprintf("%s_%d.pdf", name, s.OpenedAt.UnixMilli())
}

// Service drives the fetch → validate → stamp → render pipeline for chosen
// documents.
type Service struct {
	fetcher   Fetcher
	validator *Validator
	stamper   *Stamper
	renderer  *Renderer
}

// NewService creates a document service with all pipeline components
func NewService(fetcher Fetcher, maxSize int64, attribution string, renderScale float64) *Service {
	return &Service{
		fetcher:   fetcher,
		validator: NewValidator(maxSize),
		stamper:   NewStamper(attribution),
		renderer:  NewRenderer(renderScale),
	}
}

// OpenDocument fetches, validates and stamps the document behind an absolute
// URL and returns the session handle. Fetch and validation failures are
// terminal for the action and leave no half-open session; stamping failures
// are absorbed by the stamper.
func (s *Service) OpenDocument(ctx context.Context, title, docURL string) (*Session, error) {
	raw, err := s.fetcher.FetchDocument(ctx, docURL)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(raw); err != nil {
		return nil, err
	}

	buf := s.stamper.Stamp(raw)

	sess := &Session{
		Title:     title,
		SourceURL: docURL,
		Buffer:    buf,
		OpenedAt:  time.Now(),
	}

	// Page count is advisory at open time; a failure here surfaces later as
	// a contained render error rather than blocking the open.
	if n, err := s.renderer.PageCount(buf); err == nil {
		sess.PageCount = n
	}

	return sess, nil
}

// RenderPages rasterizes the session's buffer page by page, emitting each
// page as it completes. A render failure does not invalidate the session;
// rendering may be retried without re-fetching.
func (s *Service) RenderPages(ctx context.Context, sess *Session, emit func(*RenderedPage) error) error {
	return s.renderer.RenderAll(ctx, sess.Buffer, emit)
}

// RenderPage rasterizes a single page of the session's buffer.
func (s *Service) RenderPage(sess *Session, index int) (*RenderedPage, error) {
	return s.renderer.RenderPage(sess.Buffer, index)
}
