// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/hydro-dashboard-tui/internal/autoloop"
	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabOverview is the summary cards and dam panel.
	TabOverview TabID = iota
	// TabDischarge is the live discharge station panel.
	TabDischarge
	// TabWeather is the live automatic weather station panel.
	TabWeather
	// TabRainGauge is the live rain gauge panel.
	TabRainGauge
	// TabReports is the paginated report and export view.
	TabReports
	// TabInfo shows configuration, version and export history.
	TabInfo

	tabCount
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabDischarge:
		return "Discharge"
	case TabWeather:
		return "Weather"
	case TabRainGauge:
		return "Rain Gauge"
	case TabReports:
		return "Reports"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// RotationKey returns the auto-loop name of the tab, or "" for tabs that
// never rotate.
func (t TabID) RotationKey() string {
	switch t {
	case TabDischarge:
		return "discharge"
	case TabWeather:
		return "weather"
	case TabRainGauge:
		return "rain-gauge"
	default:
		return ""
	}
}

// TabFromRotationKey maps an auto-loop name back to its tab.
func TabFromRotationKey(name string) (TabID, bool) {
	for id := range tabCount {
		if key := id.RotationKey(); key != "" && key == name {
			return id, true
		}
	}
	return 0, false
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// Activator is implemented by tabs that reset tab-scoped state every time
// they are shown, whether by the operator or by the auto-loop.
type Activator interface {
	Activate() tea.Cmd
}

// InputCapturer is implemented by tabs with text fields. While capturing,
// keys go straight to the tab instead of the global bindings.
type InputCapturer interface {
	CapturingInput() bool
}

// Retrier is implemented by tabs with their own failed request. The global
// refresh key retries it alongside the snapshot.
type Retrier interface {
	Retry() tea.Cmd
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	Tab5    key.Binding
	Tab6    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "discharge"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "weather"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "rain gauge"))
	k.Tab5 = key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "reports"))
	k.Tab6 = key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "retry/refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	return k
}

func (k KeyMap) tabKeys() []key.Binding {
	return []key.Binding{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5, k.Tab6}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.tabKeys(),
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content   lipgloss.Style
	Help      lipgloss.Style
	Toast     lipgloss.Style
	Banner    lipgloss.Style
	Indicator lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#00AFFF"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Toast = styles.ToastStyle
	s.Banner = styles.BannerStyle
	s.Indicator = styles.IndicatorStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab

	// Shared state
	state     *State
	services  *services.Manager
	commands  *Commands
	exports   *report.Coordinator
	scheduler *autoloop.Scheduler
	keymap    KeyMap
	styles    Styles

	// UI components
	spinner spinner.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent

	exporter    report.Exporter
	autoLoopCfg autoloop.Config
	autoLoopOpt []autoloop.Option
}

// Option configures a Model.
type Option func(*Model)

// WithExporter overrides the export backend used by the report tab.
func WithExporter(e report.Exporter) Option {
	return func(m *Model) { m.exporter = e }
}

// WithAutoLoop overrides the auto-loop configuration.
func WithAutoLoop(cfg autoloop.Config, opts ...autoloop.Option) Option {
	return func(m *Model) {
		m.autoLoopCfg = cfg
		m.autoLoopOpt = opts
	}
}

// NewModel initializes a new application model. mgr may be nil in tests.
func NewModel(mgr *services.Manager, opts ...Option) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := &Model{
		activeTab: TabOverview,
		tabs:      make([]Tab, tabCount), // Placeholder - tabs will be set externally
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}

	if mgr != nil {
		m.exporter = mgr.Exporter()
		cfg := mgr.Config().AutoLoop
		m.autoLoopCfg = autoloop.Config{
			Enabled:    cfg.Enabled,
			Inactivity: cfg.Inactivity,
			Dwell:      cfg.Dwell,
			MinWidth:   cfg.MinWidth,
		}
		m.state.SetCatalog(mgr.Catalog().Catalog())
		if snap, ok := mgr.LastSnapshot(); ok {
			m.state.SetSnapshot(snap)
		}
	}

	for _, opt := range opts {
		opt(m)
	}

	m.exports = report.NewCoordinator(m.exporter)
	m.scheduler = autoloop.New(m.autoLoopCfg, m, m.autoLoopOpt...)
	m.state.SetAutoLoop(m.scheduler.Status())

	return m
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// Exports returns the export coordinator shared by every report view.
func (m *Model) Exports() *report.Coordinator {
	return m.exports
}

// Scheduler returns the auto-loop scheduler.
func (m *Model) Scheduler() *autoloop.Scheduler {
	return m.scheduler
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Shutdown releases the auto-loop timers. No tab activation happens after it.
func (m *Model) Shutdown() {
	m.scheduler.Stop()
	m.state.SetAutoLoop(m.scheduler.Status())
}

// ActivateTab switches tabs on behalf of the auto-loop. It goes through the
// same path as manual navigation but is not an interaction.
func (m *Model) ActivateTab(name string) tea.Cmd {
	id, ok := TabFromRotationKey(name)
	if !ok {
		logger.Warn("auto-loop requested unknown tab", "tab", name)
		return nil
	}
	return m.activate(id)
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		m.state.SetLoadingNotification("Loading...")
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, loadExportsCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	cmds = append(cmds, m.activate(m.activeTab))

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, tea.MouseMsg, spinner.TickMsg:
		cmds = append(cmds, m.handleTeaMsg(msg)...)

	case autoloop.TimerMsg:
		cmds = append(cmds, m.scheduler.HandleTimer(msg))

	case report.ExportDoneMsg:
		cmds = append(cmds, m.exports.HandleDone(msg))
		if msg.Record.ID != "" {
			m.state.AddExport(msg.Record)
		}
		cmds = append(cmds, m.broadcast(msg))

	case report.ToastExpiredMsg:
		m.exports.HandleToastExpired(msg)

	case report.ResultMsg:
		cmds = append(cmds, m.broadcast(msg))

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	m.state.SetAutoLoop(m.scheduler.Status())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) []tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
		return []tea.Cmd{m.scheduler.Resize(msg.Width), m.updateActiveTab(msg)}
	case tea.KeyMsg:
		return []tea.Cmd{m.scheduler.Interaction(), m.handleKeyMsg(msg)}
	case tea.MouseMsg:
		return []tea.Cmd{m.scheduler.Interaction(), m.updateActiveTab(msg)}
	case spinner.TickMsg:
		return []tea.Cmd{m.handleSpinnerTick(msg), m.updateActiveTab(msg)}
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd(), m.updateActiveTab(msg))
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case ExportsLoadedMsg:
		if msg.Err != nil {
			logger.Warn("failed to load export history", "error", msg.Err)
		} else {
			m.state.SetExports(msg.Records)
		}
		cmds = append(cmds, m.broadcast(msg))
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("%s: %v", msg.Context, msg.Error)))
	case RefreshMsg:
		cmds = append(cmds, m.refresh())
	case TabSwitchMsg:
		cmds = append(cmds, m.scheduler.Interaction(), m.activate(msg.Tab))
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	default:
		cmds = append(cmds, m.updateActiveTab(msg))
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) refresh() tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.state.SetRefreshing(true)
	m.state.SetLoadingNotification("Refreshing...")
	return refreshCmd(m.services)
}

// activate makes id the visible tab. Both operator navigation and the
// auto-loop end up here.
func (m *Model) activate(id TabID) tea.Cmd {
	if id < 0 || id >= tabCount {
		return nil
	}
	m.activeTab = id
	m.scheduler.SetCurrent(id.RotationKey())
	m.updateTabSizes()

	if int(id) < len(m.tabs) {
		if a, ok := m.tabs[id].(Activator); ok {
			return a.Activate()
		}
	}
	return nil
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

// broadcast delivers msg to every tab. Used for results that belong to a tab
// regardless of which one is on screen.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) capturingInput() bool {
	if int(m.activeTab) >= len(m.tabs) {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.Shutdown()
		return tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Escape) {
			m.showHelp = false
		}
		return nil
	}

	if m.capturingInput() {
		return m.updateActiveTab(msg)
	}

	// Global keybindings (work regardless of tab)
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.Shutdown()
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return nil

	case key.Matches(msg, m.keymap.NextTab):
		return m.activate(TabID((int(m.activeTab) + 1) % int(tabCount)))

	case key.Matches(msg, m.keymap.PrevTab):
		return m.activate(TabID((int(m.activeTab) - 1 + int(tabCount)) % int(tabCount)))

	case key.Matches(msg, m.keymap.Refresh):
		cmd := m.refresh()
		if int(m.activeTab) < len(m.tabs) {
			if r, ok := m.tabs[m.activeTab].(Retrier); ok {
				cmd = tea.Batch(cmd, r.Retry())
			}
		}
		return cmd
	}

	for i, binding := range m.keymap.tabKeys() {
		if key.Matches(msg, binding) {
			return m.activate(TabID(i))
		}
	}

	// Let the tab handle other keys
	return m.updateActiveTab(msg)
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.RefreshingEvent:
		m.state.SetRefreshing(true)

	case services.SnapshotEvent:
		m.state.SetSnapshot(e.Snapshot)
		m.state.ClearLoadingNotification()
		return m.broadcast(SnapshotUpdatedMsg{})

	case services.CatalogChangedEvent:
		m.state.SetCatalog(e.Catalog)
		return tea.Batch(notifyInfoCmd("Station catalog reloaded"), m.broadcast(CatalogUpdatedMsg{}))

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if toasts := m.renderNotifications(); len(toasts) > 0 {
		return m.overlayToasts(mainView, toasts)
	}

	return mainView
}

// AutoLoopIndicator returns the auto-cycle status line, or "" when the
// auto-loop is inactive.
func (m *Model) AutoLoopIndicator() string {
	st := m.scheduler.Status()
	switch st.State {
	case autoloop.Rotating:
		if id, ok := TabFromRotationKey(st.CurrentTab); ok {
			return "Auto-cycling: " + id.String()
		}
		return "Auto-cycling"
	case autoloop.IdleCountdown:
		secs := int(math.Ceil(st.UntilNextAction.Seconds()))
		return fmt.Sprintf("Auto-cycle in %ds", secs)
	}
	return ""
}

func (m *Model) renderBanner() string {
	snap, ok := m.state.Snapshot()
	if !ok || snap.Banner() == "" {
		return ""
	}
	text := snap.Banner() + "  [r] Retry"
	if m.state.Refreshing() {
		text = snap.Banner() + "  " + m.spinner.View() + " retrying"
	}
	return m.styles.Banner.Render(text)
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	for len(mainLines) < m.height {
		mainLines = append(mainLines, "")
	}
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for id := range tabCount {
		if id == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", id+1, id)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", id+1, id)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if indicator := m.AutoLoopIndicator(); indicator != "" {
		gap := max(m.width-lipgloss.Width(tabBar)-lipgloss.Width(indicator)-4, 1)
		tabBar += strings.Repeat(" ", gap) + m.styles.Indicator.Render(indicator)
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	var toasts []string

	if t, ok := m.exports.Toast(); ok {
		style := m.styles.NotificationError
		prefix := "[ERR]"
		if t.Success {
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		}
		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+t.Text)))
	}

	for _, n := range m.state.GetNotifications() {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		for lineIdx >= len(mainLines) {
			mainLines = append(mainLines, "")
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-6        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Retry / refresh live data")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.activeTab)))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Any key pauses the auto-cycle"))
	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.activeTab,
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
