package extract

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into a simplified Document or
	// ErrNoContent when nothing readable remains.
	Extract(input []byte) (Document, error)
}

// HeuristicExtractor uses Normalize with a fixed character budget.
type HeuristicExtractor struct {
	MaxChars int
}

func (h HeuristicExtractor) Extract(input []byte) (Document, error) {
	return Normalize(input, h.MaxChars)
}
