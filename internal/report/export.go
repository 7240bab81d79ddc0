package report

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// ToastDuration is how long an export outcome stays visible.
const ToastDuration = 4 * time.Second

// DefaultExportTimeout bounds one export job.
const DefaultExportTimeout = 2 * time.Minute

// Exporter produces an export file.
type Exporter interface {
	Export(ctx context.Context, req models.ExportRequest) (models.ExportRecord, error)
}

// ExportDoneMsg reports a finished export job.
type ExportDoneMsg struct {
	Request models.ExportRequest
	Record  models.ExportRecord
	Err     error
}

// ToastExpiredMsg clears the toast with the given sequence number.
type ToastExpiredMsg struct {
	Seq uint64
}

// Toast is the transient outcome line of the last export.
type Toast struct {
	Text    string
	Success bool
	Path    string
}

// Coordinator serializes exports across every report view: at most one
// export runs at a time.
type Coordinator struct {
	exporter Exporter
	timeout  time.Duration

	inFlight bool
	current  models.ExportRequest

	toast    *Toast
	toastSeq uint64

	// schedule delivers msg after d. Tests replace it to run timers inline.
	schedule func(d time.Duration, msg tea.Msg) tea.Cmd
}

// NewCoordinator creates a coordinator around an exporter.
func NewCoordinator(exporter Exporter) *Coordinator {
	return &Coordinator{
		exporter: exporter,
		timeout:  DefaultExportTimeout,
		schedule: func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		},
	}
}

// Start begins an export unless one is already running.
func (c *Coordinator) Start(req models.ExportRequest) tea.Cmd {
	if c.inFlight {
		logger.Debug("export ignored, another export in flight", "kind", req.Kind, "format", req.Format)
		return nil
	}
	c.inFlight = true
	req.Selection = req.Selection.Clone()
	c.current = req

	exporter := c.exporter
	timeout := c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		rec, err := exporter.Export(ctx, req)
		return ExportDoneMsg{Request: req, Record: rec, Err: err}
	}
}

// HandleDone clears the in-flight flag and shows the outcome toast.
func (c *Coordinator) HandleDone(msg ExportDoneMsg) tea.Cmd {
	c.inFlight = false

	label := msg.Request.Format.Label()
	if msg.Err != nil {
		logger.Error("export failed", "kind", msg.Request.Kind, "format", msg.Request.Format, "error", msg.Err)
		c.toast = &Toast{Text: "Failed to download " + label}
	} else {
		logger.Info("export finished", "kind", msg.Request.Kind, "path", msg.Record.Path)
		c.toast = &Toast{Text: label + " downloaded successfully!", Success: true, Path: msg.Record.Path}
	}

	c.toastSeq++
	return c.schedule(ToastDuration, ToastExpiredMsg{Seq: c.toastSeq})
}

// HandleToastExpired clears the toast if no newer toast replaced it.
func (c *Coordinator) HandleToastExpired(msg ToastExpiredMsg) {
	if msg.Seq == c.toastSeq {
		c.toast = nil
	}
}

// InFlight reports whether an export is running.
func (c *Coordinator) InFlight() bool { return c.inFlight }

// Current returns the running export request.
func (c *Coordinator) Current() (models.ExportRequest, bool) {
	return c.current, c.inFlight
}

// Toast returns the visible toast, if any.
func (c *Coordinator) Toast() (Toast, bool) {
	if c.toast == nil {
		return Toast{}, false
	}
	return *c.toast, true
}
