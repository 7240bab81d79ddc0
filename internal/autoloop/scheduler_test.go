package autoloop

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type recordingActivator struct {
	tabs []string
}

func (r *recordingActivator) ActivateTab(tab string) tea.Cmd {
	r.tabs = append(r.tabs, tab)
	return nil
}

type harness struct {
	s       *Scheduler
	act     *recordingActivator
	now     time.Time
	pending []TimerMsg
	delays  []time.Duration
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{act: &recordingActivator{}, now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	h.s = New(cfg, h.act,
		WithClock(func() time.Time { return h.now }),
		WithScheduleFunc(func(d time.Duration, msg tea.Msg) tea.Cmd {
			h.pending = append(h.pending, msg.(TimerMsg))
			h.delays = append(h.delays, d)
			return nil
		}),
	)
	return h
}

// fire delivers the most recently scheduled timer.
func (h *harness) fire() {
	msg := h.pending[len(h.pending)-1]
	h.s.HandleTimer(msg)
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func defaultConfig() Config {
	return Config{Enabled: true, Inactivity: 30 * time.Second, Dwell: 30 * time.Second, MinWidth: 200}
}

func TestScheduler_DisabledBelowThreshold(t *testing.T) {
	h := newHarness(t, defaultConfig())

	if cmd := h.s.Resize(120); cmd != nil {
		t.Error("narrow terminal scheduled a timer")
	}
	if h.s.State() != Disabled {
		t.Errorf("State() = %v, want disabled", h.s.State())
	}
	if h.s.Interaction() != nil || len(h.pending) != 0 {
		t.Error("interaction while disabled scheduled a timer")
	}
}

func TestScheduler_DisabledByConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Enabled = false
	h := newHarness(t, cfg)
	h.s.Resize(400)
	if h.s.State() != Disabled {
		t.Errorf("State() = %v, want disabled", h.s.State())
	}
}

func TestScheduler_IdleStartsRotation(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.s.SetCurrent("overview")
	h.s.Resize(240)

	if h.s.State() != IdleCountdown {
		t.Fatalf("State() = %v, want idle-countdown", h.s.State())
	}
	if h.delays[0] != 30*time.Second {
		t.Errorf("countdown = %v, want 30s", h.delays[0])
	}

	h.advance(30 * time.Second)
	h.fire()

	if !h.s.IsRotating() {
		t.Fatal("not rotating after 30s idle")
	}
	if len(h.act.tabs) != 1 || h.act.tabs[0] != "discharge" {
		t.Errorf("activated %v, want [discharge]", h.act.tabs)
	}
	if got := h.s.UntilNextAction(); got != 30*time.Second {
		t.Errorf("UntilNextAction() = %v, want 30s", got)
	}
}

func TestScheduler_InteractionJustBeforeDeadline(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.s.Resize(240)
	stale := h.pending[0]

	h.advance(29999 * time.Millisecond)
	h.s.Interaction()

	// The original timer fires at 30,000 ms and must be ignored.
	h.advance(time.Millisecond)
	h.s.HandleTimer(stale)

	if h.s.State() != IdleCountdown {
		t.Fatalf("State() = %v, want idle-countdown", h.s.State())
	}
	if len(h.act.tabs) != 0 {
		t.Errorf("activated %v, want none", h.act.tabs)
	}
	// Countdown restarted in full at 29,999 ms.
	if got := h.s.UntilNextAction(); got != 30*time.Second-time.Millisecond {
		t.Errorf("UntilNextAction() = %v", got)
	}
	if h.delays[len(h.delays)-1] != 30*time.Second {
		t.Errorf("restarted countdown = %v, want 30s", h.delays[len(h.delays)-1])
	}
}

func TestScheduler_RotationWrapsFromCurrentTab(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.s.SetCurrent("weather")
	h.s.Resize(240)

	h.fire()
	h.fire()
	h.fire()
	h.fire()

	want := []string{"rain-gauge", "discharge", "weather", "rain-gauge"}
	if len(h.act.tabs) != len(want) {
		t.Fatalf("activated %v, want %v", h.act.tabs, want)
	}
	for i := range want {
		if h.act.tabs[i] != want[i] {
			t.Errorf("activation %d = %q, want %q", i, h.act.tabs[i], want[i])
		}
	}
	if st := h.s.Status(); st.CurrentTabIndex != 2 || st.CurrentTab != "rain-gauge" {
		t.Errorf("Status() = %+v", st)
	}
}

func TestScheduler_InteractionHaltsRotation(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.s.Resize(240)
	h.fire()
	dwell := h.pending[len(h.pending)-1]

	h.s.Interaction()
	if h.s.IsRotating() {
		t.Fatal("still rotating after interaction")
	}
	h.s.HandleTimer(dwell)
	if len(h.act.tabs) != 1 {
		t.Errorf("stale dwell timer activated a tab: %v", h.act.tabs)
	}
	if h.s.State() != IdleCountdown {
		t.Errorf("State() = %v, want idle-countdown", h.s.State())
	}
}

func TestScheduler_ResizeBelowThresholdWhileRotating(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.s.Resize(240)
	h.fire()
	dwell := h.pending[len(h.pending)-1]

	h.s.Resize(150)
	if h.s.State() != Disabled {
		t.Fatalf("State() = %v, want disabled", h.s.State())
	}
	h.s.HandleTimer(dwell)
	if len(h.act.tabs) != 1 {
		t.Errorf("activation after disable: %v", h.act.tabs)
	}
	if h.s.UntilNextAction() != 0 {
		t.Error("UntilNextAction() should be zero when disabled")
	}

	// Growing again restarts from the countdown.
	h.s.Resize(240)
	if h.s.State() != IdleCountdown {
		t.Errorf("State() = %v, want idle-countdown", h.s.State())
	}
}

func TestScheduler_Stop(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.s.Resize(240)
	h.fire()
	dwell := h.pending[len(h.pending)-1]

	h.s.Stop()
	h.s.HandleTimer(dwell)
	h.s.Resize(300)
	h.s.Interaction()

	if len(h.act.tabs) != 1 {
		t.Errorf("activation after Stop: %v", h.act.tabs)
	}
	if h.s.State() != Stopped {
		t.Errorf("State() = %v, want stopped", h.s.State())
	}
}

func TestScheduler_Defaults(t *testing.T) {
	s := New(Config{Enabled: true}, nil)
	if s.cfg.Inactivity != DefaultInactivity || s.cfg.Dwell != DefaultDwell {
		t.Errorf("defaults not applied: %+v", s.cfg)
	}
	if got := s.Tabs(); len(got) != 3 || got[0] != "discharge" {
		t.Errorf("Tabs() = %v", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Disabled:      "disabled",
		IdleCountdown: "idle-countdown",
		Rotating:      "rotating",
		Stopped:       "stopped",
		State(42):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
