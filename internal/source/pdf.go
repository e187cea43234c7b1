package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hyperifyio/asimo/internal/pdftext"
)

// PDF reads a local PDF file.
type PDF struct {
	Reader pdftext.Reader
	// DefaultPath is used when the locator is blank.
	DefaultPath string
}

func (p *PDF) Kind() Kind { return KindPDF }

// Extract concatenates the non-blank pages of the file in page order.
func (p *PDF) Extract(ctx context.Context, locator string) (string, error) {
	path := strings.TrimSpace(locator)
	if path == "" {
		path = strings.TrimSpace(p.DefaultPath)
	}
	if path == "" {
		return "", fmt.Errorf("%w: no PDF path given", ErrInvalidLocator)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: file %q does not exist", ErrNotFound, path)
	}
	pages, err := p.Reader.PageTexts(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, path, err)
	}
	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			kept = append(kept, page)
		}
	}
	text := strings.Join(kept, "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text could be extracted from %q", ErrEmptyContent, path)
	}
	return text, nil
}
