package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/asimo/internal/extract"
	"github.com/hyperifyio/asimo/internal/fetch"
)

// previewChars is how much extracted text is logged at debug level.
const previewChars = 1000

// Getter is the minimal fetch capability the web extractor needs.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Web fetches an http(s) page and normalizes it to plain text.
type Web struct {
	Fetcher    Getter
	Normalizer extract.Extractor
}

// NewWeb wires a fetch client with the default normalizer bounded at maxChars.
func NewWeb(client *fetch.Client, maxChars int) *Web {
	return &Web{Fetcher: client, Normalizer: extract.HeuristicExtractor{MaxChars: maxChars}}
}

func (w *Web) Kind() Kind { return KindWeb }

func (w *Web) Extract(ctx context.Context, locator string) (string, error) {
	url := strings.TrimSpace(locator)
	if !fetch.IsHTTPURL(url) {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidLocator, url)
	}
	body, _, err := w.Fetcher.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	doc, err := w.Normalizer.Extract(body)
	if err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			return "", fmt.Errorf("%w: no textual content found on the page", ErrEmptyContent)
		}
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	log.Debug().Str("url", url).Str("title", doc.Title).
		Int("chars", utf8.RuneCountInString(doc.Full)).Int("kept", utf8.RuneCountInString(doc.Text)).
		Str("preview", extract.Truncate(doc.Full, previewChars)).Msg("extracted web content")
	return doc.Text, nil
}
