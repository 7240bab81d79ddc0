package stations

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
)

func dischargeState() *app.State {
	list := []models.DischargeStation{
		{Title: "Yamuna River", RiverName: "Yamuna", ChartKey: "YR", Color: models.ColorBlue, Discharge: 120.5, Velocity: 1.2, WaterLevel: 3.4},
		{Title: "Tons River", RiverName: "Tons", ChartKey: "TR", Color: models.ColorOrange, Discharge: 80, Velocity: 0.9, WaterLevel: 2.1},
	}
	state := app.NewState()
	state.SetSnapshot(overview.Snapshot{Discharge: list, DischargeStats: overview.DischargeStats(list)})
	return state
}

func weatherState() *app.State {
	list := []models.WeatherStation{
		{Title: "Dakpathar", ChartKey: "Dakpathar", Color: models.ColorBlue, Temperature: 21.5},
		{Title: "Kalsi", ChartKey: "Kalsi", Color: models.ColorGreen, Temperature: 19},
	}
	state := app.NewState()
	state.SetSnapshot(overview.Snapshot{Weather: list, WeatherStats: overview.WeatherStats(list)})
	return state
}

func space() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestNew_Titles(t *testing.T) {
	tests := []struct {
		kind models.ReportKind
		want string
	}{
		{models.ReportDischarge, "Discharge Stations"},
		{models.ReportAWS, "Automatic Weather Stations"},
		{models.ReportRainGauge, "Rain Gauge Stations"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m := New(app.NewState(), tt.kind)
			if m.title != tt.want {
				t.Errorf("title = %q, want %q", m.title, tt.want)
			}
			if m.Init() == nil {
				t.Error("Init should start the spinner")
			}
		})
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(app.NewState(), models.ReportDischarge)
	m.SetSize(80, 24)
	if !strings.Contains(m.View(), "Loading stations") {
		t.Error("loading view should show the spinner label")
	}
}

func TestModel_ViewDischarge(t *testing.T) {
	m := New(dischargeState(), models.ReportDischarge)
	m.SetSize(160, 120)

	view := m.View()
	for _, want := range []string{"Yamuna River", "120.50 m³/s", "Water Level", "Velocity", "Tons", "2 stations"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Parameters") {
		t.Error("discharge tab has no parameter toggles")
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(overview.Snapshot{})
	m := New(state, models.ReportRainGauge)
	m.SetSize(100, 40)

	if !strings.Contains(m.View(), "No station data available.") {
		t.Error("empty feed should say so")
	}
}

func TestModel_StationToggle(t *testing.T) {
	m := New(dischargeState(), models.ReportDischarge)

	m.Update(space())
	if !m.selected["Yamuna"] {
		t.Fatal("space should highlight the focused station by its bar name")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(space())
	if len(m.selected) != 2 {
		t.Fatalf("selected = %v, want two stations", m.selected)
	}

	m.Update(space())
	if m.selected["Tons"] {
		t.Error("second toggle should remove the station")
	}

	m.Update(runeKey('c'))
	if len(m.selected) != 0 {
		t.Error("c should clear the selection")
	}
}

func TestModel_CursorWraps(t *testing.T) {
	m := New(dischargeState(), models.ReportDischarge)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want wrap to last station", m.cursor)
	}
}

func TestModel_ParameterToggles(t *testing.T) {
	m := New(weatherState(), models.ReportAWS)
	total := len(m.charts())
	if total != 9 {
		t.Fatalf("weather charts = %d, want 9", total)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(runeKey('p'))

	charts := m.charts()
	if len(charts) != 1 || charts[0].Key != "temperature" {
		t.Fatalf("charts = %+v, want only temperature", charts)
	}

	m.SetSize(160, 200)
	if !strings.Contains(m.View(), "1 parameter(s) selected") {
		t.Error("view should show the parameter selection")
	}
}

func TestModel_ParameterKeysIgnoredWithoutParams(t *testing.T) {
	m := New(dischargeState(), models.ReportDischarge)
	m.Update(runeKey('p'))
	if len(m.params) != 0 {
		t.Error("discharge tab should ignore parameter toggles")
	}
}

func TestModel_ActivateResetsSelection(t *testing.T) {
	m := New(weatherState(), models.ReportAWS)
	m.Update(space())
	m.Update(runeKey('p'))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	m.Activate()
	if len(m.selected) != 0 || len(m.params) != 0 || m.cursor != 0 || m.paramCursor != 0 {
		t.Error("Activate should reset station and parameter selection")
	}
}

func TestModel_SnapshotPrunesSelection(t *testing.T) {
	state := dischargeState()
	m := New(state, models.ReportDischarge)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(space())

	list := []models.DischargeStation{{Title: "Yamuna River", RiverName: "Yamuna"}}
	state.SetSnapshot(overview.Snapshot{Discharge: list, DischargeStats: overview.DischargeStats(list)})
	m.Update(app.SnapshotUpdatedMsg{})

	if m.selected["Tons"] {
		t.Error("stations that left the feed should be deselected")
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamp to 0", m.cursor)
	}
}

func TestModel_Help(t *testing.T) {
	d := New(app.NewState(), models.ReportDischarge)
	w := New(app.NewState(), models.ReportAWS)
	if len(w.ShortHelp()) <= len(d.ShortHelp()) {
		t.Error("weather tab should list its parameter binding")
	}
	if len(w.FullHelp()) != 3 {
		t.Errorf("FullHelp groups = %d, want 3", len(w.FullHelp()))
	}
}
