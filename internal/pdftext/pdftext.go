// Package pdftext reads the text of PDF files page by page.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// Reader returns the text of every page of the PDF at path, in page order.
type Reader interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// UniPDF extracts page text with UniDoc's unipdf.
type UniPDF struct {
	// LicenseKey is the metered UniDoc key; applied once per process.
	LicenseKey string
}

var licenseOnce sync.Once

func (u *UniPDF) applyLicense() {
	key := strings.TrimSpace(u.LicenseKey)
	if key == "" {
		return
	}
	licenseOnce.Do(func() {
		if err := license.SetMeteredKey(key); err != nil {
			log.Warn().Err(err).Msg("unidoc license key rejected; PDF extraction may fail")
		}
	})
}

// PageTexts opens path and extracts each page. Encrypted documents are tried
// with an empty user password.
func (u *UniPDF) PageTexts(ctx context.Context, path string) ([]string, error) {
	u.applyLicense()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if encrypted, err := reader.IsEncrypted(); err == nil && encrypted {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return nil, fmt.Errorf("decrypt pdf: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("pdf is password protected")
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
