package relay

import "fmt"

// NetworkError reports a transport failure or a non-2xx upstream response.
// A single failed attempt is terminal for the triggering user action; the
// relay never retries.
type NetworkError struct {
	Op         string // "search" or "fetch"
	URL        string
	StatusCode int // zero when the failure happened before a response
	Err        error
}

// Error returns the string representation of the network error
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: upstream returned status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying transport error, if any
func (e *NetworkError) Unwrap() error {
	return e.Err
}
