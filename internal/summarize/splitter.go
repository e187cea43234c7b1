package summarize

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many characters adjacent chunks share.
	DefaultChunkOverlap = 100
)

// DefaultSeparators are tried in order: paragraph, line, sentence, word, and
// finally a hard cut between characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into overlapping chunks at the largest natural boundary
// that keeps each chunk within ChunkSize.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.ChunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between chunks in characters.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.ChunkOverlap = overlap
		}
	}
}

// NewSplitter returns a Splitter with defaults overridden by opts. An overlap
// that does not fit inside the chunk is reduced to a quarter of the chunk.
func NewSplitter(opts ...Option) Splitter {
	s := Splitter{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(&s)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		s.ChunkOverlap = s.ChunkSize / 4
	}
	return s
}

// Split returns the non-blank chunks of text.
func (s Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	size, overlap := s.ChunkSize, s.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	rc := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators(DefaultSeparators),
	)
	parts, err := rc.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks, nil
}
