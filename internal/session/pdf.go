package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFMeta is printed in the header of a PDF transcript.
type PDFMeta struct {
	SessionID string
	Model     string
	Created   time.Time
}

// WritePDF renders the exchanges as a simple question and answer document.
// Core fonts cover Latin-1, so text is translated from UTF-8 to cp1252.
func WritePDF(path string, meta PDFMeta, exchanges []Exchange) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Asimo session "+meta.SessionID, true)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.AddPage()
	pdf.CellFormat(0, 8, tr("Asimo session"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	var header []string
	if meta.SessionID != "" {
		header = append(header, "ID "+meta.SessionID)
	}
	if meta.Model != "" {
		header = append(header, "model "+meta.Model)
	}
	if !meta.Created.IsZero() {
		header = append(header, meta.Created.Format("2006-01-02 15:04:05"))
	}
	if len(header) > 0 {
		pdf.CellFormat(0, 5, tr(strings.Join(header, " | ")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for i, e := range exchanges {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, e.User)), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, tr(e.Assistant), "", "L", false)
		pdf.Ln(4)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: pdf: %v", ErrPersist, err)
	}
	return nil
}
