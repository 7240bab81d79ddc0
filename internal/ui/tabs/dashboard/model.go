// Package dashboard provides the overview tab: summary cards, the dam levels
// and the health of every live feed.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/components"
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

const animationDuration = 1.5 // seconds

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	NextCard key.Binding
	PrevCard key.Binding
	Open     key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextCard: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next card"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev card"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open card"),
		),
	}
}

// cardTabs maps clickable summary cards to the tab they open.
var cardTabs = map[string]app.TabID{
	"discharge":  app.TabDischarge,
	"weather":    app.TabWeather,
	"rain-gauge": app.TabRainGauge,
	"dam":        app.TabReports,
}

// damLevels are the dam readings drawn as level bars, in display order.
var damLevels = []struct {
	key   string
	label string
	value func(models.DamStation) float64
}{
	{"headLoss", "Head Loss", func(d models.DamStation) float64 { return d.HeadLoss }},
	{"intechLevel", "Intech Level", func(d models.DamStation) float64 { return d.IntechLevel }},
	{"levelPier1", "Level Pier 1", func(d models.DamStation) float64 { return d.LevelPier1 }},
	{"levelPier6", "Level Pier 6", func(d models.DamStation) float64 { return d.LevelPier6 }},
}

// AnimationState tracks a bar easing towards a new reading.
type AnimationState struct {
	StartTime    time.Time
	CurrentValue float64
	TargetValue  float64
	StartValue   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state          *app.State
	animations     map[string]*AnimationState
	loader         components.Loader
	keys           keyMap
	viewport       viewport.Model
	levelBar       components.LevelBar
	width          int
	height         int
	selectedCard   int
	animationFrame int
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:      state,
		loader:     components.NewLoader("stations"),
		levelBar:   components.NewLevelBar(),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		animations: make(map[string]*AnimationState),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loader.Init(), animationTickCmd())
}

// Activate resets the card selection.
func (m *Model) Activate() tea.Cmd {
	m.selectedCard = 0
	m.viewport.GotoTop()
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.SnapshotUpdatedMsg:
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	animating := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	if animating || m.state.IsInitialLoading() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	cards := m.cards()

	switch {
	case key.Matches(msg, m.keys.NextCard):
		if len(cards) > 0 {
			m.selectedCard = (m.selectedCard + 1) % len(cards)
		}
	case key.Matches(msg, m.keys.PrevCard):
		if len(cards) > 0 {
			m.selectedCard = (m.selectedCard - 1 + len(cards)) % len(cards)
		}
	case key.Matches(msg, m.keys.Open):
		if m.selectedCard >= len(cards) || !cards[m.selectedCard].Clickable {
			return nil
		}
		tab, ok := cardTabs[cards[m.selectedCard].ID]
		if !ok {
			return nil
		}
		return func() tea.Msg { return app.TabSwitchMsg{Tab: tab} }
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) cards() []models.MetricCard {
	snap, ok := m.state.Snapshot()
	if !ok || snap.Summary == nil {
		return nil
	}
	return snap.Summary.Cards()
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// syncAnimationTargets points every dam bar at the latest reading and
// reports whether any bar still has to move.
func (m *Model) syncAnimationTargets(now time.Time) bool {
	snap, ok := m.state.Snapshot()
	if !ok || snap.Dam == nil {
		return false
	}

	animating := false
	for _, lvl := range damLevels {
		if m.updateAnimationState("dam:"+lvl.key, lvl.value(*snap.Dam), now) {
			animating = true
		}
	}
	return animating
}

func (m *Model) updateAnimationState(animKey string, target float64, now time.Time) bool {
	state, exists := m.animations[animKey]
	if !exists {
		state = &AnimationState{StartTime: now}
		m.animations[animKey] = state
	}

	if target != state.TargetValue {
		state.StartValue = state.CurrentValue
		state.TargetValue = target
		state.StartTime = now
	}

	return state.CurrentValue != state.TargetValue
}

func (m *Model) stepAnimations(now time.Time) {
	for _, state := range m.animations {
		if state.CurrentValue == state.TargetValue {
			continue
		}
		elapsed := now.Sub(state.StartTime).Seconds()
		if elapsed >= animationDuration {
			state.CurrentValue = state.TargetValue
			continue
		}
		progress := elapsed / animationDuration
		ease := 1.0 - (1.0-progress)*(1.0-progress)
		state.CurrentValue = state.StartValue + (state.TargetValue-state.StartValue)*ease
	}
}

// displayValue returns the animated value of a dam bar, or the reading
// itself when no animation exists yet.
func (m *Model) displayValue(levelKey string, reading float64) float64 {
	if anim, ok := m.animations["dam:"+levelKey]; ok {
		return anim.CurrentValue
	}
	return reading
}

// axisMax returns the axis of a dam level from the trend statistics, falling
// back to the single reading.
func axisMax(snap overview.Snapshot, levelKey string, reading float64) float64 {
	if chart, ok := snap.DamStats.Chart(levelKey); ok && chart.MaxValue > 0 {
		return chart.MaxValue
	}
	return overview.AxisMax([]float64{reading})
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextCard,
		m.keys.PrevCard,
		m.keys.Open,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextCard, m.keys.PrevCard},
		{m.keys.Open},
	}
}
