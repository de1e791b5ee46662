package extract

import (
	"regexp"
	"strings"
)

// Noise tokens injected by the upstream site next to judgment titles and
// metadata. Both the Bangla and English variants appear, sometimes quoted.
var noiseTokens = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']?অনুবাদ\s*\(Google\)["']?`),
	regexp.MustCompile(`(?i)["']?Translation\s*\(Google\)["']?`),
}

var (
	whitespaceRuns = regexp.MustCompile(`\s{2,}`)
	whitespaceAll  = regexp.MustCompile(`\s+`)
)

// FieldParser splits a composite metadata blob into labeled fields using an
// ordered list of literal labels. The observed upstream layout is
// "Uploaded on : <date> From : <court>"; a segment runs from the end of its
// label to the start of the next label found in order, or to the end of the
// text. A missing label yields an empty field. Matching is literal and
// order-sensitive: if the upstream layout renames or reorders labels,
// extraction degrades to empty fields rather than failing.
type FieldParser struct {
	labels []string
}

// DefaultLabels are the field labels observed in the upstream result markup.
var DefaultLabels = []string{"Uploaded on", "From"}

// NewFieldParser creates a field parser for the given ordered labels.
// With no labels it uses DefaultLabels.
func NewFieldParser(labels ...string) *FieldParser {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	return &FieldParser{labels: labels}
}

// Normalize strips known noise tokens, collapses whitespace runs to a single
// space, and trims the ends. Empty input yields an empty string.
func (p *FieldParser) Normalize(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range noiseTokens {
		text = re.ReplaceAllString(text, "")
	}
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split locates each configured label in order and returns one segment per
// label. Segment i is the text strictly between label i and the next label
// that was found; labels not present produce empty segments.
func (p *FieldParser) Split(text string) []string {
	segments := make([]string, len(p.labels))

	// Locate every label first, each search starting where the previous
	// match ended so out-of-order layouts degrade instead of cross-matching.
	starts := make([]int, len(p.labels)) // index just past the label, -1 if absent
	pos := 0
	for i, label := range p.labels {
		idx := strings.Index(text[pos:], label)
		if idx < 0 {
			starts[i] = -1
			continue
		}
		starts[i] = pos + idx + len(label)
		pos = starts[i]
	}

	for i := range p.labels {
		if starts[i] < 0 {
			continue
		}
		end := len(text)
		for j := i + 1; j < len(p.labels); j++ {
			if starts[j] >= 0 {
				end = starts[j] - len(p.labels[j])
				break
			}
		}
		segments[i] = p.Normalize(trimLabelSeparator(text[starts[i]:end]))
	}

	return segments
}

// SplitComposite splits the observed "uploaded-on / from-court" blob into its
// two fields. Either field is empty when its label is absent.
func (p *FieldParser) SplitComposite(text string) (uploadedOn, fromCourt string) {
	segments := p.Split(text)
	if len(segments) > 0 {
		uploadedOn = segments[0]
	}
	if len(segments) > 1 {
		fromCourt = segments[1]
	}
	return uploadedOn, fromCourt
}

// trimLabelSeparator strips the punctuation that follows a label, e.g. the
// " : " in "Uploaded on : 08-SEP-25".
func trimLabelSeparator(s string) string {
	s = strings.TrimLeft(s, " \t")
	if len(s) > 0 && (s[0] == ':' || s[0] == '-') {
		s = s[1:]
	}
	return s
}
