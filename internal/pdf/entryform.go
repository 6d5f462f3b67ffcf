// Package pdf renders inscription entry forms as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/skicrew/inscriptions/internal/domain"
)

// Landscape A4 with 10mm margins leaves 277mm of usable width.
var tableWidths = []float64{10, 50, 45, 15, 18, 22, 55, 37, 25}

var tableHeaders = []string{"No.", "Last name", "First name", "Gender", "Year", "Category", "Club", "License", "Points"}

// RenderEntryForm produces the entry form for one inscription sheet:
// an event header, the competitor table and a signature block. Competitors
// are printed in the order given.
func RenderEntryForm(ev domain.Event, ins domain.Inscription, competitors []domain.Competitor) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Entry form - "+ev.Title), false)
	pdf.SetAutoPageBreak(false, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeHeader(pdf, tr, ev, ins)
	writeTableHeader(pdf, tr)

	rowH := 7.0
	for n, c := range competitors {
		// 180mm keeps the last row clear of the footer.
		if pdf.GetY()+rowH > 180 {
			pdf.AddPage()
			writeTableHeader(pdf, tr)
		}
		writeCompetitorRow(pdf, tr, n+1, c)
	}

	writeSummary(pdf, tr, competitors)
	writeSignatureBlock(pdf, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering entry form: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string, ev domain.Event, ins domain.Inscription) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(200, 9, tr(ev.Title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 9, "ENTRY FORM", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	place := ev.Place
	if ev.Country != "" {
		place += " (" + ev.Country + ")"
	}
	if ev.Venue != "" {
		place += ", " + ev.Venue
	}
	pdf.CellFormat(0, 6, tr(place), "", 1, "L", false, 0, "")

	dates := formatDate(ev.StartDate)
	if ev.MultiDay() {
		dates += " - " + formatDate(ev.EndDate)
	}
	line := dates
	if ev.Discipline != "" {
		line += "   " + ev.Discipline
	}
	pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")

	if ev.Organizer != "" {
		org := "Organizer: " + ev.Organizer
		if ev.ContactEmail != "" {
			org += " (" + ev.ContactEmail + ")"
		}
		pdf.CellFormat(0, 6, tr(org), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 6, tr(ins.Label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	contact := ins.ContactName
	if ins.ContactEmail != "" {
		contact += " - " + ins.ContactEmail
	}
	pdf.CellFormat(0, 6, tr("Contact: "+contact), "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func writeTableHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range tableHeaders {
		pdf.CellFormat(tableWidths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeCompetitorRow(pdf *fpdf.Fpdf, tr func(string) string, n int, c domain.Competitor) {
	pdf.SetFont("Helvetica", "", 9)

	year := ""
	if c.BirthYear > 0 {
		year = fmt.Sprintf("%d", c.BirthYear)
	}
	points := ""
	if c.Points > 0 {
		points = fmt.Sprintf("%.2f", c.Points)
	}

	cells := []struct {
		text  string
		align string
	}{
		{fmt.Sprintf("%d", n), "C"},
		{c.LastName, "L"},
		{c.FirstName, "L"},
		{string(c.Gender), "C"},
		{year, "C"},
		{c.Category, "C"},
		{c.Club, "L"},
		{c.License, "C"},
		{points, "R"},
	}
	for i, cell := range cells {
		pdf.CellFormat(tableWidths[i], 7, tr(cell.text), "1", 0, cell.align, false, 0, "")
	}
	pdf.Ln(-1)
}

func writeSummary(pdf *fpdf.Fpdf, tr func(string) string, competitors []domain.Competitor) {
	women, men := 0, 0
	for _, c := range competitors {
		switch c.Gender {
		case domain.GenderFemale:
			women++
		case domain.GenderMale:
			men++
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6,
		tr(fmt.Sprintf("%d competitors (%d women, %d men)", len(competitors), women, men)),
		"", 1, "L", false, 0, "")
}

func writeSignatureBlock(pdf *fpdf.Fpdf, tr func(string) string) {
	if pdf.GetY() > 165 {
		pdf.AddPage()
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(120, 6, tr("Place and date: ________________________"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Signature and stamp: ________________________"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, tr("Generated "+formatDate(time.Now())), "", 1, "L", false, 0, "")
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
