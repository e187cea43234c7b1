package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Plain extracts page text with ledongthuc/pdf. It needs no license and is
// used whenever no UniDoc key is configured.
type Plain struct{}

// PageTexts opens path and returns the plain text of each page. Pages without
// a content dictionary yield an empty string so page numbering is preserved.
func (Plain) PageTexts(ctx context.Context, path string) (pages []string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The parser panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ForLicense picks UniPDF when a UniDoc key is present and Plain otherwise.
func ForLicense(key string) Reader {
	if strings.TrimSpace(key) == "" {
		return Plain{}
	}
	return &UniPDF{LicenseKey: key}
}
