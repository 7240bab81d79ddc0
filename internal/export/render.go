package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

const (
	headerLayout = "02 Jan 2006 15:04"
	sheetName    = "report"
)

// Document is a fully collected report ready to be rendered.
type Document struct {
	Config      models.ReportConfig
	Window      models.TimeWindow
	Selection   models.StationSelection
	Rows        []models.Row
	GeneratedAt time.Time
}

func (d Document) stationsLine() string {
	if d.Selection.IsAll() {
		return fmt.Sprintf("%s: all", d.Config.StationLabel)
	}
	return fmt.Sprintf("%s: %s", d.Config.StationLabel, strings.Join(d.Selection, ", "))
}

func (d Document) windowLine() string {
	return fmt.Sprintf("Period: %s to %s",
		d.Window.Start.Format(headerLayout), d.Window.End.Format(headerLayout))
}

// Render encodes the document in the requested format.
func Render(doc Document, format models.ExportFormat) ([]byte, error) {
	switch format {
	case models.FormatPDF:
		return RenderPDF(doc)
	case models.FormatSpreadsheet:
		return RenderXLSX(doc)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// RenderPDF lays the rows out as a bordered table, one header row per page.
func RenderPDF(doc Document) ([]byte, error) {
	orientation := "P"
	if len(doc.Config.Columns) > 6 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := columnWidths(doc.Config.Columns, pageW-left-right)

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 236, 245)
		for i, col := range doc.Config.Columns {
			pdf.CellFormat(widths[i], 7, tr(col.Label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(doc.Config.Title))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(doc.windowLine()))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(doc.stationsLine()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d   Generated: %s", len(doc.Rows), doc.GeneratedAt.Format(headerLayout)))
	pdf.Ln(8)

	header()
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range doc.Rows {
		if pdf.GetY()+6 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for i, col := range doc.Config.Columns {
			pdf.CellFormat(widths[i], 6, tr(row[col.Key]), "1", 0, pdfAlign(col.Align), false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderXLSX writes the rows to a single sheet. Numeric readings are stored
// as numbers so they can be charted in a spreadsheet.
func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(sheetName, "A1", doc.Config.Title)
	_ = f.SetCellValue(sheetName, "A2", doc.windowLine())
	_ = f.SetCellValue(sheetName, "A3", doc.stationsLine())

	const headerRow = 5
	for i, col := range doc.Config.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheetName, cell, col.Label)
	}

	for r, row := range doc.Rows {
		for i, col := range doc.Config.Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, headerRow+1+r)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheetName, cell, cellValue(col, row[col.Key]))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(col models.Column, raw string) any {
	if col.Key == "sno" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	if col.Align == models.AlignRight {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return raw
}

// columnWidths gives the timestamp column a wider share and splits the rest.
func columnWidths(cols []models.Column, total float64) []float64 {
	widths := make([]float64, len(cols))
	if len(cols) == 0 {
		return widths
	}
	units := 0.0
	for _, c := range cols {
		units += columnUnits(c)
	}
	for i, c := range cols {
		widths[i] = total * columnUnits(c) / units
	}
	return widths
}

func columnUnits(c models.Column) float64 {
	switch c.Key {
	case "sno":
		return 0.6
	case "timestamp":
		return 1.8
	case "river", "station":
		return 1.4
	}
	return 1
}

func pdfAlign(a models.Alignment) string {
	switch a {
	case models.AlignCenter:
		return "C"
	case models.AlignRight:
		return "R"
	}
	return "L"
}
