package models

import (
	"time"
)

// ExportFormat is the file format of an export.
type ExportFormat string

// Export formats.
const (
	FormatPDF         ExportFormat = "pdf"
	FormatSpreadsheet ExportFormat = "excel"
)

// Extension returns the file extension without the dot.
func (f ExportFormat) Extension() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "xlsx"
}

// Label returns the operator-facing name of the format.
func (f ExportFormat) Label() string {
	if f == FormatPDF {
		return "PDF"
	}
	return "Excel"
}

// ParseExportFormat accepts "pdf", "excel" or "xlsx".
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch s {
	case "pdf":
		return FormatPDF, true
	case "excel", "xlsx", "spreadsheet":
		return FormatSpreadsheet, true
	}
	return "", false
}

// ExportRequest is the input of one export job.
type ExportRequest struct {
	Kind      ReportKind
	Format    ExportFormat
	Selection StationSelection
	Window    TimeWindow
}

// ExportRecord is a completed export, persisted for the history view.
type ExportRecord struct {
	ID         string
	Kind       ReportKind
	Format     ExportFormat
	Path       string
	Stations   int
	Start      time.Time
	End        time.Time
	Bytes      int64
	Error      string
	DurationMs int64
	CreatedAt  time.Time
}

// Succeeded reports whether the export produced a file.
func (r ExportRecord) Succeeded() bool {
	return r.Error == ""
}
