package extract

// CaseRecord is a single judgment recovered from the search results markup.
type CaseRecord struct {
	Title       string `json:"title"`
	Parties     string `json:"parties"`
	UploadedOn  string `json:"uploaded_on"`
	FromCourt   string `json:"from_court"`
	DocumentURL string `json:"document_url"`
}

// Outcome classifies an extraction result for the presentation layer.
type Outcome int

const (
	// OutcomeRecords means at least one record was extracted.
	OutcomeRecords Outcome = iota
	// OutcomeNoResults means the markup contained no candidate document links at all.
	OutcomeNoResults
	// OutcomeNoValidRecords means candidates existed but none survived
	// structural and locale filtering.
	OutcomeNoValidRecords
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeRecords:
		return "records"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeNoValidRecords:
		return "no_valid_records"
	default:
		return "unknown"
	}
}

// Result represents the result of an extraction operation
type Result struct {
	Records []CaseRecord `json:"records"`
	Outcome Outcome      `json:"outcome"`
}
