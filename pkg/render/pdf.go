package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 10.0
	rowHeight  = 7.0
	fontFamily = "Helvetica"
)

func writePDF(w io.Writer, t *Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generated := t.GeneratedAt.Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Generated %s  |  Page %d/{nb}", generated, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	widths := columnWidths(pdf, t, tr)
	header := func() {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetFillColor(230, 236, 245)
		for i, col := range t.Columns {
			pdf.CellFormat(widths[i], rowHeight, tr(col), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", 8)
	}

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	if t.Subtitle != "" {
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(0, 6, tr(t.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header()
	if len(t.Rows) == 0 {
		pdf.SetFont(fontFamily, "I", 9)
		pdf.CellFormat(0, rowHeight, "No patients match the selected criteria.", "", 1, "L", false, 0, "")
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+rowHeight > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], rowHeight, truncate(pdf, tr, cell, widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// columnWidths sizes each column to its widest cell, then scales the set to
// fill the printable width.
func columnWidths(pdf *fpdf.Fpdf, t *Table, tr func(string) string) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pageMargin

	pdf.SetFont(fontFamily, "", 8)
	widths := make([]float64, len(t.Columns))
	var total float64
	for i, col := range t.Columns {
		w := pdf.GetStringWidth(tr(col)) + 4
		for _, row := range t.Rows {
			if cw := pdf.GetStringWidth(tr(row[i])) + 4; cw > w {
				w = cw
			}
		}
		if w > usable/3 {
			w = usable / 3
		}
		widths[i] = w
		total += w
	}
	if total == 0 {
		return widths
	}
	scale := usable / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// truncate returns s translated for the core font, shortened with an
// ellipsis to fit width.
func truncate(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
