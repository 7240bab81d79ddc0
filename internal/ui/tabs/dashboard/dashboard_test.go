package dashboard

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
)

func testSnapshot() overview.Snapshot {
	dam := models.DamStation{Title: "Vyasi Dam", HeadLoss: 0.45, IntechLevel: 120.5, LevelPier1: 450.2, LevelPier6: 448.8}
	return overview.Snapshot{
		Summary: &models.SummaryMetrics{DischargeStations: 4, AWS: 3, RainGaugeStations: 4, Dam: 1, VyasiDamLevel: 7},
		Discharge: []models.DischargeStation{
			{Title: "Yamuna River", Discharge: 12},
		},
		Dam:      &dam,
		DamTrend: []models.DamStation{dam, dam},
		Provenance: map[string]overview.Provenance{
			overview.SourceSummary:   overview.ProvenanceLive,
			overview.SourceDischarge: overview.ProvenanceLive,
			overview.SourceWeather:   overview.ProvenanceCached,
		},
		SourceErrors: map[string]error{overview.SourceWeather: errors.New("timeout")},
		LastUpdated:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local),
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState())
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	if view := m.View(); !strings.Contains(view, "Loading stations") {
		t.Errorf("first load should show the spinner, got %q", view)
	}
}

func TestModel_ViewSnapshot(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(testSnapshot())
	m := New(state)
	m.SetSize(160, 80)

	view := m.View()
	for _, want := range []string{
		"Discharge Stations", "04", "07",
		"Last updated: 01 Mar 2026 09:30:00",
		"Vyasi Dam", "Level Pier 1",
		"Live Feeds", "cached", "timeout",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_SummaryErrorState(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(overview.Snapshot{SummaryErr: errors.New("connection refused")})
	m := New(state)
	m.SetSize(160, 60)

	view := m.View()
	if !strings.Contains(view, overview.SummaryErrorText) {
		t.Error("first load failure should show the summary error")
	}
	if strings.Contains(view, "Discharge Stations") {
		t.Error("no cards should be rendered without a summary")
	}
	if !strings.Contains(view, "No dam reading available") {
		t.Error("dam panel should degrade on its own")
	}
}

func TestModel_CachedSummaryNote(t *testing.T) {
	snap := testSnapshot()
	snap.SummaryErr = errors.New("502")
	state := app.NewState()
	state.SetSnapshot(snap)
	m := New(state)
	m.SetSize(160, 80)

	view := m.View()
	if !strings.Contains(view, "Discharge Stations") || !strings.Contains(view, "Showing last known counts") {
		t.Error("cached summary should stay visible with a note")
	}
}

func TestModel_CardNavigation(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(testSnapshot())
	m := New(state)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.selectedCard != 1 {
		t.Fatalf("selectedCard = %d, want 1", m.selectedCard)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on a clickable card should switch tabs")
	}
	if msg, ok := cmd().(app.TabSwitchMsg); !ok || msg.Tab != app.TabWeather {
		t.Errorf("got %#v, want switch to Weather", cmd())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.selectedCard != 4 {
		t.Fatalf("selection should wrap, got %d", m.selectedCard)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("the dam level card is not clickable")
	}

	m.Activate()
	if m.selectedCard != 0 {
		t.Error("Activate should reset the selection")
	}
}

func TestModel_DamAnimation(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(testSnapshot())
	m := New(state)

	m.Update(app.SnapshotUpdatedMsg{})
	anim, ok := m.animations["dam:levelPier1"]
	if !ok {
		t.Fatal("snapshot should start a dam animation")
	}
	if anim.TargetValue != 450.2 {
		t.Errorf("target = %v, want 450.2", anim.TargetValue)
	}

	_, cmd := m.Update(animationTickMsg(time.Now().Add(2 * time.Second)))
	if anim.CurrentValue != anim.TargetValue {
		t.Errorf("animation should finish after its duration, at %v", anim.CurrentValue)
	}
	if cmd == nil {
		t.Error("the finishing tick should schedule one more frame")
	}

	if _, cmd := m.Update(animationTickMsg(time.Now().Add(3 * time.Second))); cmd != nil {
		t.Error("ticking should stop once every bar is settled")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
