package report

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

type fakeExporter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeExporter) Export(_ context.Context, req models.ExportRequest) (models.ExportRecord, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.ExportRecord{}, f.err
	}
	return models.ExportRecord{Kind: req.Kind, Format: req.Format, Path: "/tmp/out." + req.Format.Extension()}, nil
}

// newTestCoordinator captures scheduled messages instead of starting timers.
func newTestCoordinator(exp Exporter) (*Coordinator, *[]tea.Msg) {
	c := NewCoordinator(exp)
	var scheduled []tea.Msg
	c.schedule = func(d time.Duration, msg tea.Msg) tea.Cmd {
		if d != ToastDuration {
			panic("unexpected toast duration")
		}
		scheduled = append(scheduled, msg)
		return func() tea.Msg { return msg }
	}
	return c, &scheduled
}

func TestCoordinator_Exclusive(t *testing.T) {
	exp := &fakeExporter{}
	c, _ := newTestCoordinator(exp)
	req := models.ExportRequest{Kind: models.ReportDischarge, Format: models.FormatPDF}

	first := c.Start(req)
	second := c.Start(req)
	if first == nil {
		t.Fatal("first export did not start")
	}
	if second != nil {
		t.Fatal("second export started while first in flight")
	}

	// Another report kind is also blocked.
	if c.Start(models.ExportRequest{Kind: models.ReportAWS, Format: models.FormatSpreadsheet}) != nil {
		t.Fatal("export of another kind started while one in flight")
	}

	c.HandleDone(first().(ExportDoneMsg))
	if exp.calls.Load() != 1 {
		t.Errorf("exporter calls = %d, want 1", exp.calls.Load())
	}
	if c.InFlight() {
		t.Error("still in flight after completion")
	}
	if c.Start(req) == nil {
		t.Error("export after completion should start")
	}
}

func TestCoordinator_ToastText(t *testing.T) {
	tests := []struct {
		name    string
		format  models.ExportFormat
		err     error
		want    string
		success bool
	}{
		{"PDFOK", models.FormatPDF, nil, "PDF downloaded successfully!", true},
		{"ExcelOK", models.FormatSpreadsheet, nil, "Excel downloaded successfully!", true},
		{"PDFFail", models.FormatPDF, errors.New("500"), "Failed to download PDF", false},
		{"ExcelFail", models.FormatSpreadsheet, errors.New("500"), "Failed to download Excel", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(&fakeExporter{err: tt.err})
			cmd := c.Start(models.ExportRequest{Kind: models.ReportRainGauge, Format: tt.format})
			c.HandleDone(cmd().(ExportDoneMsg))

			toast, ok := c.Toast()
			if !ok {
				t.Fatal("no toast")
			}
			if toast.Text != tt.want || toast.Success != tt.success {
				t.Errorf("toast = %+v, want %q success=%v", toast, tt.want, tt.success)
			}
		})
	}
}

func TestCoordinator_ToastExpiry(t *testing.T) {
	c, scheduled := newTestCoordinator(&fakeExporter{})
	req := models.ExportRequest{Kind: models.ReportDischarge, Format: models.FormatPDF}

	c.HandleDone(c.Start(req)().(ExportDoneMsg))
	c.HandleDone(c.Start(req)().(ExportDoneMsg))
	if len(*scheduled) != 2 {
		t.Fatalf("scheduled = %d, want 2", len(*scheduled))
	}

	// The first toast's timer must not clear the second toast.
	c.HandleToastExpired((*scheduled)[0].(ToastExpiredMsg))
	if _, ok := c.Toast(); !ok {
		t.Fatal("newer toast cleared by older timer")
	}

	c.HandleToastExpired((*scheduled)[1].(ToastExpiredMsg))
	if _, ok := c.Toast(); ok {
		t.Error("toast not cleared by its own timer")
	}
}

func TestCoordinator_UsesGivenSelection(t *testing.T) {
	c, _ := newTestCoordinator(&fakeExporter{})
	sel := models.StationSelection{"Yamuna"}
	cmd := c.Start(models.ExportRequest{Kind: models.ReportDischarge, Format: models.FormatPDF, Selection: sel})
	sel[0] = "mutated"

	done := cmd().(ExportDoneMsg)
	if done.Request.Selection[0] != "Yamuna" {
		t.Errorf("request selection = %v, want copy taken at start", done.Request.Selection)
	}
}
