// Package report renders the printable guest list.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/ticketing"
)

// Title heads every page.
const Title = "Lista de Assistidos"

// EmptyName stands in for guests registered without a name.
const EmptyName = "—"

// Layout in points, A4 portrait.
const (
	padding     = 24.0
	titleSize   = 18.0
	titleMargin = 12.0
	rowSize     = 12.0
	rowHeight   = 20.0
	footerSize  = 9.0
)

// FileName is the download name for the list printed on date.
func FileName(date time.Time) string {
	return "lista-de-assistidos-" + date.Format("02-01-2006") + ".pdf"
}

// DisplayName returns the name as listed, substituting EmptyName.
func DisplayName(g ticketing.Guest) string {
	if g.Name == "" {
		return EmptyName
	}
	return g.Name
}

// GuestListPDF writes the list to w, one numbered line per guest in list
// order, starting at 1.
func GuestListPDF(w io.Writer, guests []ticketing.Guest, date time.Time) error {
	pdf := build(guests, date)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering guest list: %w", err)
	}
	log.Info(log.CatReport, "guest list rendered", "guests", len(guests), "pages", pdf.PageNo())
	return nil
}

// WriteFile renders the list into dir under FileName(date) and returns the
// path written.
func WriteFile(dir string, guests []ticketing.Guest, date time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(date))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := GuestListPDF(f, guests, date); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

func build(guests []ticketing.Guest, date time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(padding, padding, padding)
	pdf.SetAutoPageBreak(true, padding+footerSize*2)
	pdf.SetTitle(Title, true)
	pdf.SetCreator("senhas", true)
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)

	// Core fonts are cp1252; names carry accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-(padding + footerSize))
		pdf.SetFont("Helvetica", "", footerSize)
		footer := fmt.Sprintf("%s  ·  página %d", date.Format("02/01/2006"), pdf.PageNo())
		pdf.CellFormat(0, footerSize, tr(footer), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.CellFormat(0, titleSize, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(titleMargin)

	pdf.SetFont("Helvetica", "", rowSize)
	for i, g := range guests {
		line := fmt.Sprintf("%d. %s", i+1, DisplayName(g))
		pdf.CellFormat(0, rowHeight, tr(line), "", 1, "L", false, 0, "")
	}
	return pdf
}
