package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Engine recovers CaseRecords from the semi-structured search result markup.
//
// The upstream site renders results as table rows with a verified layout:
// cell 0 holds a serial number, cell 1 the case number (title link,
// translation link, upload date and originating court), cell 2 the parties,
// cell 3 a short description. None of this is guaranteed by a schema, so the
// engine works from heuristics: anchors referencing ".pdf", bound to their
// nearest ancestor row, filtered for secondary translation links.
type Engine struct {
	siteRoot string
	fields   *FieldParser
}

// NewEngine creates an extraction engine. siteRoot is the absolute root URL
// of the judicial records site, used to resolve relative document links.
func NewEngine(siteRoot string) *Engine {
	return &Engine{
		siteRoot: strings.TrimRight(siteRoot, "/"),
		fields:   NewFieldParser(),
	}
}

// Extract parses the raw search-response markup and returns the case records
// in source row order. Each source row yields at most one record; duplicates
// across rows are not collapsed. A markup with no candidate links at all is
// OutcomeNoResults; candidates that all fail structural or locale filtering
// are OutcomeNoValidRecords. Neither is an error.
func (e *Engine) Extract(markup string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	// Candidate filter works on the raw href attribute, not the resolved
	// URL: tree normalization would rewrite relative links against the
	// wrong base and hide the ".pdf" suffix match.
	candidates := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		return ok && strings.Contains(strings.ToLower(href), ".pdf")
	})

	result := &Result{Records: []CaseRecord{}}
	if candidates.Length() == 0 {
		result.Outcome = OutcomeNoResults
		return result, nil
	}

	candidates.Each(func(_ int, link *goquery.Selection) {
		if record, ok := e.recordFromCandidate(link); ok {
			result.Records = append(result.Records, record)
		}
	})

	if len(result.Records) == 0 {
		result.Outcome = OutcomeNoValidRecords
		return result, nil
	}

	result.Outcome = OutcomeRecords
	return result, nil
}

// recordFromCandidate applies the row-context and locale filters to one
// candidate link and builds its record. ok is false when the candidate is
// discarded.
func (e *Engine) recordFromCandidate(link *goquery.Selection) (CaseRecord, bool) {
	rawTitle := strings.TrimSpace(link.Text())

	// Secondary machine-translation links point at the same judgment and
	// are never authoritative; drop them regardless of row shape.
	if isTranslationLink(rawTitle) {
		return CaseRecord{}, false
	}

	title := e.fields.Normalize(rawTitle)
	if title == "" {
		return CaseRecord{}, false
	}

	// Bind the candidate to its closest ancestor table row. Rows with fewer
	// than three cells do not carry the verified layout and are treated as
	// broken structure.
	row := link.Closest("tr")
	if row.Length() == 0 {
		return CaseRecord{}, false
	}
	cells := row.ChildrenFiltered("td, th")
	if cells.Length() < 3 {
		return CaseRecord{}, false
	}

	parties := e.fields.Normalize(cells.Eq(2).Text())

	// The composite cell is flattened to single spaces before label search:
	// a lone newline or tab between a label and its value would otherwise
	// leak into field values and hide the separator punctuation.
	composite := strings.TrimSpace(whitespaceAll.ReplaceAllString(cells.Eq(1).Text(), " "))
	uploadedOn, fromCourt := e.fields.SplitComposite(composite)

	href, _ := link.Attr("href")

	return CaseRecord{
		Title:       title,
		Parties:     parties,
		UploadedOn:  uploadedOn,
		FromCourt:   fromCourt,
		DocumentURL: e.ResolveURL(href),
	}, true
}

// isTranslationLink reports whether anchor text marks a secondary
// machine-translation link in either observed language.
func isTranslationLink(text string) bool {
	if strings.Contains(text, "অনুবাদ") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "translation") && strings.Contains(lower, "google")
}

// ResolveURL turns a document href into an absolute URL. Parent-relative
// hrefs map to the site root with the marker stripped; all other relative
// hrefs live under the site's /web/ base path.
func (e *Engine) ResolveURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "../") {
		return e.siteRoot + "/" + strings.TrimPrefix(href, "../")
	}
	return e.siteRoot + "/web/" + href
}
