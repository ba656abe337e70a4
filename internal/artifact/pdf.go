package artifact

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/erazemk/zaloga/internal/apperr"
	"github.com/erazemk/zaloga/internal/model"
)

// maxImageWidth is the widest an embedded item image may render, in mm
// (4 inches).
const maxImageWidth = 101.6

// filenameSanitizer maps characters that would break the PDF filename.
var filenameSanitizer = strings.NewReplacer(" ", "_", "/", "-")

// SummaryFilename returns the PDF filename for an item: the sanitized item
// name plus the first 8 characters of its id.
func SummaryFilename(item model.Item) string {
	short := item.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s.pdf", filenameSanitizer.Replace(item.Name), short)
}

// GenerateSummary renders a one-page PDF describing the item (name, id,
// category, quantity, price) with its image embedded when the file exists
// and decodes. A missing or unreadable image degrades to a placeholder note.
// The file is written under SummaryFilename, overwriting any previous file
// of that exact name, and the filename is returned.
func (m *Manager) GenerateSummary(item model.Item) (string, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, "Inventory Item: "+item.Name, "", "L", false)
	pdf.Ln(3)

	m.embedImage(pdf, item)

	detail := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Write(6, label+": ")
		pdf.SetFont("Helvetica", "", 11)
		pdf.Write(6, value)
		pdf.Ln(6)
	}
	detail("Item ID", item.ID)
	detail("Category", item.Category)
	detail("Quantity", fmt.Sprintf("%d", item.Quantity))
	detail("Price", "$"+item.Price.StringFixed(2))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6,
		"This document provides details for the inventory item, including an embedded image if available.",
		"", "L", false)

	name := SummaryFilename(item)
	if err := pdf.OutputFileAndClose(m.PDFPath(name)); err != nil {
		return "", apperr.Artifact(err, "generating summary %s", name)
	}
	return name, nil
}

// embedImage draws the item image, or an explanatory note when there is no
// usable image. Decoding is checked up front so a corrupt file cannot poison
// the document builder.
func (m *Manager) embedImage(pdf *fpdf.Fpdf, item model.Item) {
	note := func(text string) {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, text, "", "L", false)
		pdf.Ln(3)
	}

	if item.ImageFilename == nil || *item.ImageFilename == "" {
		note("(No image provided for this item)")
		return
	}
	name := *item.ImageFilename
	path := m.ImagePath(name)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		note("(Image file not found: " + name + ")")
		return
	}
	if err == nil {
		_, _, err = image.DecodeConfig(f)
		f.Close()
	}
	if err != nil {
		m.log.Warn().Str("filename", name).Err(err).Msg("could not embed image into summary")
		note("(Image could not be embedded: " + name + ")")
		return
	}

	opts := fpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(path, opts)
	if pdf.Err() || info == nil {
		m.log.Warn().Str("filename", name).Msg("could not embed image into summary")
		note("(Image could not be embedded: " + name + ")")
		return
	}

	w := info.Width()
	if w > maxImageWidth {
		w = maxImageWidth
	}
	pdf.ImageOptions(path, pdf.GetX(), pdf.GetY(), w, 0, true, opts, 0, "")
	pdf.Ln(3)
}
