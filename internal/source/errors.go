package source

import "errors"

// Extraction failures. Extractors wrap one of these with %w so callers can
// branch with errors.Is.
var (
	// ErrInvalidLocator indicates a malformed or unsupported source reference.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrFetch indicates a network failure or a non-2xx response.
	ErrFetch = errors.New("fetch failed")

	// ErrNotFound indicates the locator does not resolve to an existing file.
	ErrNotFound = errors.New("not found")

	// ErrExtraction indicates the parser or upstream library failed.
	ErrExtraction = errors.New("extraction failed")

	// ErrNoTranscript indicates the video has transcripts disabled or none
	// in the preferred languages.
	ErrNoTranscript = errors.New("no transcript available")

	// ErrEmptyContent indicates the source was read but held no usable text.
	ErrEmptyContent = errors.New("no usable content")
)

// IsAdvisory reports whether err means the source simply had nothing to
// offer, as opposed to a failure worth surfacing as an error.
func IsAdvisory(err error) bool {
	return errors.Is(err, ErrNoTranscript) || errors.Is(err, ErrEmptyContent)
}
