// Package source turns a user supplied locator into raw document text.
// Each origin (web page, PDF file, video transcript) is an Extractor; the
// Registry dispatches by Kind.
package source

import (
	"context"
	"fmt"
	"strings"
)

// Kind discriminates the origin of a document.
type Kind string

const (
	KindWeb   Kind = "web"
	KindPDF   Kind = "pdf"
	KindVideo Kind = "video"
)

// Locator identifies a document: a URL, file path or video URL plus its Kind.
type Locator struct {
	Kind  Kind
	Value string
}

// Extractor converts a locator string into non-empty text or a typed failure.
type Extractor interface {
	Kind() Kind
	Extract(ctx context.Context, locator string) (string, error)
}

// Registry holds one Extractor per Kind.
type Registry struct {
	extractors map[Kind]Extractor
	order      []Kind
}

// NewRegistry registers the given extractors. A later extractor replaces an
// earlier one of the same Kind.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[Kind]Extractor)}
	for _, ex := range extractors {
		if ex == nil {
			continue
		}
		if _, ok := r.extractors[ex.Kind()]; !ok {
			r.order = append(r.order, ex.Kind())
		}
		r.extractors[ex.Kind()] = ex
	}
	return r
}

// Kinds lists registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Extract runs the extractor registered for loc.Kind. Empty results become
// ErrEmptyContent and panics from third-party parsers become ErrExtraction,
// so callers only ever see an error value.
func (r *Registry) Extract(ctx context.Context, loc Locator) (text string, err error) {
	ex, ok := r.extractors[loc.Kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown source kind %q", ErrInvalidLocator, loc.Kind)
	}
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrExtraction, p)
		}
	}()
	text, err = ex.Extract(ctx, loc.Value)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s source produced no text", ErrEmptyContent, loc.Kind)
	}
	return text, nil
}
