package reports

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

// recordingFetcher serves total rows in pages and remembers every query.
type recordingFetcher struct {
	mu      sync.Mutex
	total   int
	err     error
	queries []models.ReportQuery
}

func (f *recordingFetcher) FetchReport(_ context.Context, q models.ReportQuery) (models.ReportResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if f.err != nil {
		return models.ReportResult{}, f.err
	}
	start := q.Offset()
	n := max(0, min(q.PageSize, f.total-start))
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{
			"sno":       fmt.Sprint(start + i + 1),
			"timestamp": "2026-03-01T10:00:00",
			"river":     "Yamuna",
			"discharge": "120.50",
		}
	}
	return models.ReportResult{Rows: rows, Total: f.total}, nil
}

func (f *recordingFetcher) last() models.ReportQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fakeExporter struct {
	mu   sync.Mutex
	reqs []models.ExportRequest
}

func (f *fakeExporter) Export(_ context.Context, req models.ExportRequest) (models.ExportRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return models.ExportRecord{Kind: req.Kind, Format: req.Format, Path: "/tmp/report.pdf"}, nil
}

func testState() *app.State {
	state := app.NewState()
	state.SetCatalog(models.Catalog{
		Discharge: []models.DischargeStation{
			{ID: "ds-001", Title: "Yamuna River", RiverName: "Yamuna"},
			{ID: "ds-002", Title: "Tons River", RiverName: "Tons"},
		},
		Dam: models.DamStation{ID: "dam-001", Title: "Vyasi Dam"},
	})
	return state
}

func newTestModel(f *recordingFetcher, exp report.Exporter) *Model {
	var coord *report.Coordinator
	if exp != nil {
		coord = report.NewCoordinator(exp)
	}
	m := New(testState(), f, coord, report.WithClock(func() time.Time { return testNow }))
	m.SetSize(160, 40)
	return m
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

// deliver runs cmd and feeds its message back into the model.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func TestModel_ActivateLoadsOnce(t *testing.T) {
	f := &recordingFetcher{total: 87}
	m := newTestModel(f, nil)

	deliver(t, m, m.Activate())

	view := m.View()
	for _, want := range []string{"Showing 87 of 87 records (all stations)", "Page 1 of 1", "S.No"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if len(m.table.Rows()) != 87 {
		t.Errorf("table rows = %d, want 87", len(m.table.Rows()))
	}
	if m.Activate() != nil {
		t.Error("second activation should not refetch")
	}
}

func TestModel_GenerateWithSelection(t *testing.T) {
	f := &recordingFetcher{total: 12}
	m := newTestModel(f, nil)
	deliver(t, m, m.Activate())

	m.Update(runeKey('s'))
	if m.mode != modeStations {
		t.Fatal("s should open the station picker")
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeTable {
		t.Fatal("enter should close the picker")
	}

	_, cmd := m.Update(runeKey('g'))
	deliver(t, m, cmd)

	q := f.last()
	if len(q.Selection) != 1 || q.Selection[0] != "Yamuna River" {
		t.Errorf("query selection = %v, want [Yamuna River]", q.Selection)
	}
	if !strings.Contains(m.View(), "for 1 selected station(s)") {
		t.Error("footer should describe the selected stations")
	}
}

func TestModel_AllStationsClearsSelection(t *testing.T) {
	m := newTestModel(&recordingFetcher{}, nil)
	m.Update(runeKey('s'))
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(runeKey('a'))
	if !m.Selection().IsAll() {
		t.Errorf("selection = %v, want all stations", m.Selection())
	}
}

func TestModel_SingleSelectReport(t *testing.T) {
	m := newTestModel(&recordingFetcher{}, nil)
	for m.Kind() != models.ReportDam {
		m.Update(runeKey(']'))
	}

	m.toggleStation("dam-a")
	m.toggleStation("dam-b")
	if sel := m.Selection(); len(sel) != 1 || sel[0] != "dam-b" {
		t.Errorf("selection = %v, want only dam-b", sel)
	}
	m.toggleStation("dam-b")
	if !m.Selection().IsAll() {
		t.Error("toggling the selected station should clear it")
	}
}

func TestModel_WindowSpanExceeded(t *testing.T) {
	f := &recordingFetcher{total: 5}
	m := newTestModel(f, nil)
	deliver(t, m, m.Activate())

	m.Update(runeKey('f'))
	if !m.CapturingInput() {
		t.Fatal("editing the start should capture input")
	}
	m.input.SetValue("2026-02-01 00:00")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.CapturingInput() {
		t.Fatal("enter should finish editing")
	}

	if !strings.Contains(m.View(), "Time range exceeds 7 days. Please select a shorter period.") {
		t.Error("view should show the span error")
	}

	before := len(f.queries)
	if _, cmd := m.Update(runeKey('g')); cmd != nil {
		t.Error("generate should not fetch with an invalid window")
	}
	if len(f.queries) != before {
		t.Error("no query should be issued")
	}
}

func TestModel_InvalidDateInput(t *testing.T) {
	m := newTestModel(&recordingFetcher{}, nil)
	start := m.Engine(models.ReportDischarge).Window().Start

	m.Update(runeKey('t'))
	m.input.SetValue("tomorrow")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.CapturingInput() {
		t.Error("a bad date should keep the editor open")
	}
	if !strings.Contains(m.View(), "Invalid date") {
		t.Error("view should show the input error")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.CapturingInput() || m.inputErr != "" {
		t.Error("esc should cancel editing")
	}
	if !m.Engine(models.ReportDischarge).Window().Start.Equal(start) {
		t.Error("cancelled edit should leave the window unchanged")
	}
}

func TestModel_ExportExclusive(t *testing.T) {
	exp := &fakeExporter{}
	m := newTestModel(&recordingFetcher{}, exp)

	m.Update(runeKey('s'))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, first := m.Update(runeKey('e'))
	if first == nil {
		t.Fatal("export should start")
	}
	if _, second := m.Update(runeKey('x')); second != nil {
		t.Error("a second export should be ignored while one is running")
	}
	if !strings.Contains(m.View(), "Exporting") {
		t.Error("view should show the running export")
	}

	done, ok := first().(report.ExportDoneMsg)
	if !ok {
		t.Fatal("export command should report completion")
	}
	if done.Request.Format != models.FormatPDF {
		t.Errorf("format = %v, want pdf", done.Request.Format)
	}
	if len(done.Request.Selection) != 1 || done.Request.Selection[0] != "Tons River" {
		t.Errorf("export selection = %v, want live selection", done.Request.Selection)
	}
	if !done.Request.Window.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)) {
		t.Errorf("export window = %+v", done.Request.Window)
	}
}

func TestModel_ExportBlockedByInvalidWindow(t *testing.T) {
	exp := &fakeExporter{}
	m := newTestModel(&recordingFetcher{}, exp)
	m.Engine(models.ReportDischarge).SetWindowEnd(testNow.Add(-24 * time.Hour))

	_, cmd := m.Update(runeKey('e'))
	if cmd == nil {
		t.Fatal("expected a warning")
	}
	msg, ok := cmd().(app.AddNotificationMsg)
	if !ok || msg.Type != app.NotificationWarning {
		t.Fatalf("msg = %#v, want warning notification", msg)
	}
	if msg.Message != "End time must be after start time." {
		t.Errorf("message = %q", msg.Message)
	}
	if len(exp.reqs) != 0 {
		t.Error("exporter should not run")
	}
}

func TestModel_LateResultAfterKindSwitch(t *testing.T) {
	f := &recordingFetcher{total: 40}
	m := newTestModel(f, nil)

	pending := m.Activate()
	_, cmd := m.Update(runeKey(']'))
	if m.Kind() != models.ReportAWS {
		t.Fatalf("kind = %v, want aws", m.Kind())
	}
	if cmd == nil {
		t.Error("switching to an unseen report should load it")
	}

	m.Update(pending())
	if got := m.Engine(models.ReportDischarge).Total(); got != 40 {
		t.Errorf("discharge total = %d, want 40", got)
	}
	if len(m.table.Rows()) != 0 {
		t.Error("aws table should not show discharge rows")
	}
}

func TestModel_Paging(t *testing.T) {
	f := &recordingFetcher{total: 250}
	m := newTestModel(f, nil)
	deliver(t, m, m.Activate())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyRight}); again != nil {
		t.Error("paging while loading should be ignored")
	}
	deliver(t, m, cmd)

	if !strings.Contains(m.View(), "Page 2 of 3") {
		t.Error("view should show page 2 of 3")
	}
	if q := f.last(); q.Page != 2 {
		t.Errorf("query page = %d, want 2", q.Page)
	}
}

func TestModel_FetchError(t *testing.T) {
	f := &recordingFetcher{err: fmt.Errorf("boom")}
	m := newTestModel(f, nil)
	deliver(t, m, m.Activate())

	if !strings.Contains(m.View(), report.FetchErrorText) {
		t.Error("view should show the fetch error")
	}
}

func TestModel_RetryAfterFetchError(t *testing.T) {
	f := &recordingFetcher{total: 12, err: fmt.Errorf("boom")}
	m := newTestModel(f, nil)
	deliver(t, m, m.Activate())

	f.err = nil
	cmd := m.Retry()
	if cmd == nil {
		t.Fatal("Retry should refetch after a failure")
	}
	if !strings.Contains(m.View(), "Retrying report...") {
		t.Error("view should show the retry in progress")
	}
	m.Update(cmd())

	if m.Engine(m.Kind()).Err() != nil || len(m.Engine(m.Kind()).Rows()) != 12 {
		t.Errorf("retry did not recover: err %v, %d rows", m.Engine(m.Kind()).Err(), len(m.Engine(m.Kind()).Rows()))
	}
	if m.Retry() != nil {
		t.Error("Retry without a failure should do nothing")
	}
}

func TestModel_EmptyResult(t *testing.T) {
	m := newTestModel(&recordingFetcher{}, nil)
	deliver(t, m, m.Activate())

	if !strings.Contains(m.View(), EmptyText) {
		t.Error("view should show the empty state")
	}
}

func TestAlignCell(t *testing.T) {
	tests := []struct {
		align models.Alignment
		want  string
	}{
		{models.AlignLeft, "ab    "},
		{models.AlignRight, "    ab"},
		{models.AlignCenter, "  ab  "},
	}
	for _, tt := range tests {
		if got := alignCell("ab", 6, tt.align); got != tt.want {
			t.Errorf("alignCell(%v) = %q, want %q", tt.align, got, tt.want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := newTestModel(&recordingFetcher{}, nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(m.FullHelp()) != 4 {
		t.Errorf("FullHelp groups = %d, want 4", len(m.FullHelp()))
	}
}
