package fetch

import "fmt"

// ValidationError reports a fileUrl that was rejected before any network
// call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid file URL: %s", e.Reason)
}

// FetchError reports a transport failure or a non-2xx upstream response.
type FetchError struct {
	Status int
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch failed: HTTP %d %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("fetch failed: %s", e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports fetched bytes that are too small or fail the
// document signature check. The document never reaches an extractor.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("not a valid document: %s", e.Reason)
}
