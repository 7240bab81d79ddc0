package report

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/metrics"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// FetchErrorText is shown when a page could not be loaded.
const FetchErrorText = "Failed to load data. Please try again."

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher loads one page of a report.
type Fetcher interface {
	FetchReport(ctx context.Context, q models.ReportQuery) (models.ReportResult, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q models.ReportQuery) (models.ReportResult, error)

// FetchReport calls f.
func (f FetcherFunc) FetchReport(ctx context.Context, q models.ReportQuery) (models.ReportResult, error) {
	return f(ctx, q)
}

// Sources routes a query to the backend or to locally recorded readings,
// depending on whether the report kind has a backend endpoint.
type Sources struct {
	Remote Fetcher
	Local  Fetcher
}

// FetchReport implements Fetcher.
func (s Sources) FetchReport(ctx context.Context, q models.ReportQuery) (models.ReportResult, error) {
	cfg, ok := models.ConfigFor(q.Kind)
	if !ok {
		return models.ReportResult{}, fmt.Errorf("unknown report kind %q", q.Kind)
	}
	if cfg.IsRemote() {
		if s.Remote == nil {
			return models.ReportResult{}, fmt.Errorf("no remote source for %s", q.Kind)
		}
		return s.Remote.FetchReport(ctx, q)
	}
	if s.Local == nil {
		return models.ReportResult{}, fmt.Errorf("no local source for %s", q.Kind)
	}
	return s.Local.FetchReport(ctx, q)
}

// ResultMsg carries the outcome of a page fetch back to the engine.
type ResultMsg struct {
	Kind   models.ReportKind
	Token  uint64
	Query  models.ReportQuery
	Result models.ReportResult
	Err    error
}

// Engine holds the query state of one report view. It is not safe for
// concurrent use; it lives inside a Bubble Tea model and only the returned
// commands run off the update loop.
type Engine struct {
	kind    models.ReportKind
	fetcher Fetcher
	timeout time.Duration
	now     func() time.Time

	initialized bool

	// window is the operator's live window; windowErr its validation result.
	window    models.TimeWindow
	windowErr error

	// query is pinned to the displayed (or in-flight) page.
	query   models.ReportQuery
	result  models.ReportResult
	loading bool
	err     error
	token   uint64

	cursor      int
	lastUpdated time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the default window and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an engine for a report kind.
func NewEngine(kind models.ReportKind, fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		kind:    kind,
		fetcher: fetcher,
		timeout: DefaultFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.window = DefaultWindow(e.now())
	e.query = models.ReportQuery{Kind: kind, Page: 1, PageSize: models.DefaultPageSize}
	return e
}

// Initialize issues the first fetch for all stations. Only the first call
// per engine has an effect.
func (e *Engine) Initialize() tea.Cmd {
	if e.initialized {
		return nil
	}
	e.initialized = true
	return e.Generate(nil)
}

// Initialized reports whether Initialize has run.
func (e *Engine) Initialized() bool {
	return e.initialized
}

// Generate starts a fresh query on page 1 using the current window. An
// invalid window clears the table and issues no fetch.
func (e *Engine) Generate(selection models.StationSelection) tea.Cmd {
	e.initialized = true
	e.windowErr = Validate(e.window)
	if e.windowErr != nil {
		// Invalidate anything still in flight.
		e.token++
		e.loading = false
		e.result = models.ReportResult{}
		e.query.Page = 1
		e.cursor = 0
		return nil
	}

	e.query = models.ReportQuery{
		Kind:      e.kind,
		Selection: selection.Clone(),
		Window:    e.window,
		Page:      1,
		PageSize:  models.DefaultPageSize,
	}
	return e.fetch()
}

// ChangePage moves delta pages from the displayed page, keeping the
// selection and window that produced it. Nothing is fetched while the live
// window is invalid.
func (e *Engine) ChangePage(delta int) tea.Cmd {
	if !e.initialized || e.loading || delta == 0 || e.windowErr != nil {
		return nil
	}
	target := e.query.Page + delta
	target = max(1, min(target, e.PageCount()))
	if target == e.query.Page {
		return nil
	}
	e.query.Page = target
	return e.fetch()
}

// Refetch repeats the current query after a failed fetch.
func (e *Engine) Refetch() tea.Cmd {
	if !e.initialized || e.loading || e.windowErr != nil {
		return nil
	}
	return e.fetch()
}

func (e *Engine) fetch() tea.Cmd {
	e.token++
	e.loading = true

	token := e.token
	q := e.query
	q.Selection = q.Selection.Clone()
	fetcher := e.fetcher
	timeout := e.timeout
	kind := e.kind

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		res, err := fetcher.FetchReport(ctx, q)
		metrics.ObserveReportFetch(string(kind), err, time.Since(start))

		return ResultMsg{Kind: kind, Token: token, Query: q, Result: res, Err: err}
	}
}

// HandleResult applies a fetch outcome. It returns false when the message
// belongs to another engine or to a superseded request.
func (e *Engine) HandleResult(msg ResultMsg) bool {
	if msg.Kind != e.kind || msg.Token != e.token {
		return false
	}
	e.loading = false
	e.cursor = 0

	if msg.Err != nil {
		logger.Warn("report fetch failed", "kind", e.kind, "page", msg.Query.Page, "error", msg.Err)
		e.err = msg.Err
		e.result = models.ReportResult{}
		return true
	}

	e.err = nil
	e.result = msg.Result
	e.lastUpdated = e.now()
	return true
}

// SetWindow replaces the live window and revalidates it.
func (e *Engine) SetWindow(w models.TimeWindow) {
	e.window = w
	e.windowErr = Validate(w)
}

// SetWindowStart edits the start of the live window.
func (e *Engine) SetWindowStart(t time.Time) {
	e.SetWindow(models.TimeWindow{Start: t, End: e.window.End})
}

// SetWindowEnd edits the end of the live window.
func (e *Engine) SetWindowEnd(t time.Time) {
	e.SetWindow(models.TimeWindow{Start: e.window.Start, End: t})
}

// Kind returns the report kind.
func (e *Engine) Kind() models.ReportKind { return e.kind }

// Window returns the live window.
func (e *Engine) Window() models.TimeWindow { return e.window }

// WindowErr returns the validation error of the live window, if any.
func (e *Engine) WindowErr() error { return e.windowErr }

// Query returns the pinned query of the displayed page.
func (e *Engine) Query() models.ReportQuery { return e.query }

// Rows returns the displayed rows.
func (e *Engine) Rows() []models.Row { return e.result.Rows }

// Total returns the total matching records.
func (e *Engine) Total() int { return e.result.Total }

// Page returns the displayed page number.
func (e *Engine) Page() int { return e.query.Page }

// PageCount returns the number of pages for the current total.
func (e *Engine) PageCount() int {
	return models.PageCount(e.result.Total, models.DefaultPageSize)
}

// Loading reports whether a fetch is in flight.
func (e *Engine) Loading() bool { return e.loading }

// Err returns the last fetch error.
func (e *Engine) Err() error { return e.err }

// ErrorText returns the operator-facing error line, or "".
func (e *Engine) ErrorText() string {
	if e.windowErr != nil {
		return Message(e.windowErr)
	}
	if e.err != nil {
		return FetchErrorText
	}
	return ""
}

// Cursor returns the selected row index.
func (e *Engine) Cursor() int { return e.cursor }

// SetCursor moves the row cursor, clamped to the displayed rows.
func (e *Engine) SetCursor(i int) {
	e.cursor = max(0, min(i, len(e.result.Rows)-1))
}

// LastUpdated returns when the displayed page was loaded.
func (e *Engine) LastUpdated() time.Time { return e.lastUpdated }

// Footer describes the displayed rows.
func (e *Engine) Footer() string {
	scope := "(all stations)"
	if n := len(e.query.Selection); n > 0 {
		scope = fmt.Sprintf("for %d selected station(s)", n)
	}
	return fmt.Sprintf("Showing %d of %d records %s", len(e.result.Rows), e.result.Total, scope)
}

// PageLabel returns "Page X of Y".
func (e *Engine) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", e.query.Page, e.PageCount())
}
