// Package autoloop rotates the dashboard through a fixed list of tabs while
// nobody is using it, and only on terminals wide enough for wall display.
package autoloop

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/metrics"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultInactivity = 30 * time.Second
	DefaultDwell      = 30 * time.Second
	DefaultMinWidth   = 200
)

// DefaultTabs is the rotation order.
var DefaultTabs = []string{"discharge", "weather", "rain-gauge"}

// State is the scheduler lifecycle state.
type State int

const (
	// Disabled means the terminal is too narrow or the loop is switched off.
	Disabled State = iota
	// IdleCountdown waits for the inactivity window to elapse.
	IdleCountdown
	// Rotating activates the next tab every dwell period.
	Rotating
	// Stopped is terminal; no further activations happen.
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case IdleCountdown:
		return "idle-countdown"
	case Rotating:
		return "rotating"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// TabActivator switches the visible tab the same way manual navigation does.
type TabActivator interface {
	ActivateTab(tab string) tea.Cmd
}

// Config configures a Scheduler.
type Config struct {
	Enabled    bool
	Inactivity time.Duration
	Dwell      time.Duration
	// MinWidth is the narrowest terminal, in columns, that may rotate.
	MinWidth int
	Tabs     []string
}

// TimerMsg is delivered when the pending countdown or dwell elapses.
type TimerMsg struct {
	Gen uint64
}

// Status is a read-only view of the scheduler.
type Status struct {
	State           State
	Eligible        bool
	Idle            bool
	Rotating        bool
	CurrentTab      string
	CurrentTabIndex int
	UntilNextAction time.Duration
}

// Scheduler is driven from a Bubble Tea update loop and is not safe for
// concurrent use. Timers are tea.Tick commands tagged with a generation;
// any state change bumps the generation so older ticks are ignored.
type Scheduler struct {
	cfg       Config
	activator TabActivator
	now       func() time.Time
	schedule  func(d time.Duration, msg tea.Msg) tea.Cmd

	state    State
	width    int
	current  string
	gen      uint64
	deadline time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the clock used for countdown reporting.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithScheduleFunc overrides how timer messages are delivered.
func WithScheduleFunc(fn func(d time.Duration, msg tea.Msg) tea.Cmd) Option {
	return func(s *Scheduler) { s.schedule = fn }
}

// New creates a scheduler in the Disabled state. It becomes active on the
// first Resize that reports an eligible width.
func New(cfg Config, activator TabActivator, opts ...Option) *Scheduler {
	if cfg.Inactivity <= 0 {
		cfg.Inactivity = DefaultInactivity
	}
	if cfg.Dwell <= 0 {
		cfg.Dwell = DefaultDwell
	}
	if len(cfg.Tabs) == 0 {
		cfg.Tabs = DefaultTabs
	}
	cfg.Tabs = slices.Clone(cfg.Tabs)

	s := &Scheduler{
		cfg:       cfg,
		activator: activator,
		now:       time.Now,
		schedule: func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) eligible(width int) bool {
	return s.cfg.Enabled && width >= s.cfg.MinWidth
}

// Resize updates eligibility. Dropping below the width threshold halts
// everything immediately; growing past it starts the idle countdown.
func (s *Scheduler) Resize(width int) tea.Cmd {
	if s.state == Stopped {
		return nil
	}
	s.width = width

	if !s.eligible(width) {
		if s.state != Disabled {
			logger.Debug("autoloop disabled", "width", width, "min_width", s.cfg.MinWidth)
			s.state = Disabled
			s.gen++
			s.deadline = time.Time{}
		}
		return nil
	}

	if s.state == Disabled {
		return s.startCountdown()
	}
	return nil
}

// Interaction records operator activity. It restarts the countdown and halts
// any rotation in progress.
func (s *Scheduler) Interaction() tea.Cmd {
	switch s.state {
	case IdleCountdown, Rotating:
		if s.state == Rotating {
			logger.Debug("autoloop rotation halted by interaction")
		}
		return s.startCountdown()
	}
	return nil
}

// SetCurrent records the tab now on screen, whoever activated it.
func (s *Scheduler) SetCurrent(tab string) {
	s.current = tab
}

// HandleTimer advances the scheduler when its pending timer fires.
func (s *Scheduler) HandleTimer(msg TimerMsg) tea.Cmd {
	if msg.Gen != s.gen {
		return nil
	}
	switch s.state {
	case IdleCountdown:
		logger.Debug("autoloop rotation started", "from", s.current)
		s.state = Rotating
		return s.rotate()
	case Rotating:
		return s.rotate()
	}
	return nil
}

// Stop halts the scheduler permanently.
func (s *Scheduler) Stop() {
	s.state = Stopped
	s.gen++
	s.deadline = time.Time{}
}

func (s *Scheduler) startCountdown() tea.Cmd {
	s.state = IdleCountdown
	s.gen++
	s.deadline = s.now().Add(s.cfg.Inactivity)
	return s.schedule(s.cfg.Inactivity, TimerMsg{Gen: s.gen})
}

func (s *Scheduler) rotate() tea.Cmd {
	next := s.nextTab()
	s.current = next
	s.gen++
	s.deadline = s.now().Add(s.cfg.Dwell)
	metrics.IncRotation(next)

	var activate tea.Cmd
	if s.activator != nil {
		activate = s.activator.ActivateTab(next)
	}
	return tea.Batch(activate, s.schedule(s.cfg.Dwell, TimerMsg{Gen: s.gen}))
}

func (s *Scheduler) nextTab() string {
	i := slices.Index(s.cfg.Tabs, s.current)
	if i < 0 {
		return s.cfg.Tabs[0]
	}
	return s.cfg.Tabs[(i+1)%len(s.cfg.Tabs)]
}

// State returns the lifecycle state.
func (s *Scheduler) State() State { return s.state }

// IsRotating reports whether tabs are being cycled.
func (s *Scheduler) IsRotating() bool { return s.state == Rotating }

// UntilNextAction returns the time until rotation starts or, while
// rotating, until the next tab. It is zero when inactive.
func (s *Scheduler) UntilNextAction() time.Duration {
	if s.state != IdleCountdown && s.state != Rotating {
		return 0
	}
	return max(0, s.deadline.Sub(s.now()))
}

// Status returns a snapshot of the scheduler.
func (s *Scheduler) Status() Status {
	return Status{
		State:           s.state,
		Eligible:        s.state == IdleCountdown || s.state == Rotating,
		Idle:            s.state == IdleCountdown,
		Rotating:        s.state == Rotating,
		CurrentTab:      s.current,
		CurrentTabIndex: slices.Index(s.cfg.Tabs, s.current),
		UntilNextAction: s.UntilNextAction(),
	}
}

// Tabs returns the rotation order.
func (s *Scheduler) Tabs() []string {
	return slices.Clone(s.cfg.Tabs)
}
