package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/config"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tmpDir := t.TempDir()
	return &config.Config{
		API: config.APIConfig{
			// Nothing listens here; every poll fails fast.
			BaseURL:    "http://127.0.0.1:1",
			Timeout:    time.Second,
			MaxRetries: 0,
		},
		DatabasePath: filepath.Join(tmpDir, "test.db"),
		StationsPath: filepath.Join(tmpDir, "stations.json"),
		Export: config.ExportConfig{
			Dir:  filepath.Join(tmpDir, "exports"),
			Mode: config.ExportModeLocal,
		},
		PollInterval:  time.Hour,
		RetentionDays: 30,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewManager(testConfig(t))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t)

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.Catalog() == nil {
		t.Error("Catalog service should be initialized")
	}
	if mgr.Aggregator() == nil {
		t.Error("Aggregator should be initialized")
	}
	if mgr.Exporter() == nil {
		t.Error("Exporter should be initialized")
	}
	if mgr.Reports() == nil {
		t.Error("Reports should be initialized")
	}
	if mgr.Config().RetentionDays != 30 {
		t.Error("Config should be kept")
	}
}

func TestNewManager_InvalidBaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.BaseURL = "not a url"

	if _, err := NewManager(cfg); err == nil {
		t.Error("NewManager should fail on an invalid base url")
	}
}

func TestManager_SnapshotWithBackendDown(t *testing.T) {
	mgr := newTestManager(t)

	ch, _ := mgr.Subscribe()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			snap, ok := ev.(SnapshotEvent)
			if !ok {
				continue
			}
			if snap.Snapshot.Banner() != overview.SummaryErrorText {
				t.Errorf("Banner() = %q", snap.Snapshot.Banner())
			}
			if len(snap.Snapshot.Discharge) == 0 {
				t.Error("stations should fall back to the catalog")
			}
			return
		case <-timeout:
			t.Fatal("timeout waiting for snapshot")
		}
	}
}

func TestManager_Broadcast(t *testing.T) {
	mgr := &Manager{eventChan: make(chan ServiceEvent, 1)}

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	event := ErrorEvent{Service: "catalog", Error: errors.New("bad file")}
	mgr.broadcast(event)

	select {
	case e := <-ch:
		if e != ServiceEvent(event) {
			t.Errorf("Got event %v, want %v", e, event)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	mgr := &Manager{eventChan: make(chan ServiceEvent, 1)}

	ch, _ := mgr.Subscribe()
	mgr.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
	if len(mgr.subscribers) != 0 {
		t.Error("subscriber should be removed")
	}
}

func TestManager_CheckNotifications(t *testing.T) {
	down := overview.Snapshot{SummaryErr: errors.New("timeout")}
	up := overview.Snapshot{}

	tests := []struct {
		name   string
		snaps  []overview.Snapshot
		titles []string
	}{
		{"healthy start is silent", []overview.Snapshot{up, up}, nil},
		{"down on first poll", []overview.Snapshot{down}, []string{"Hydro API unreachable"}},
		{"down then recovered", []overview.Snapshot{up, down, down, up}, []string{"Hydro API unreachable", "Hydro API recovered"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titles []string
			mgr := &Manager{notify: func(title, _ string) error {
				titles = append(titles, title)
				return nil
			}}

			for _, s := range tt.snaps {
				mgr.checkNotifications(s)
			}

			if len(titles) != len(tt.titles) {
				t.Fatalf("titles = %v, want %v", titles, tt.titles)
			}
			for i := range titles {
				if titles[i] != tt.titles[i] {
					t.Errorf("titles[%d] = %q, want %q", i, titles[i], tt.titles[i])
				}
			}
		})
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- RefreshingEvent{}

	cmd := WaitForEvent(ch)
	if msg := cmd(); msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}

	close(ch)
	if msg := cmd(); msg != nil {
		t.Errorf("closed channel should yield nil, got %v", msg)
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = SnapshotEvent{}
	var _ ServiceEvent = RefreshingEvent{}
	var _ ServiceEvent = CatalogChangedEvent{}
	var _ ServiceEvent = ErrorEvent{}

	SnapshotEvent{}.isServiceEvent()
	RefreshingEvent{}.isServiceEvent()
	CatalogChangedEvent{}.isServiceEvent()
	ErrorEvent{}.isServiceEvent()
}

func TestManager_RecentExports(t *testing.T) {
	mgr := newTestManager(t)

	recs, err := mgr.RecentExports(10)
	if err != nil {
		t.Fatalf("RecentExports() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty history, got %d", len(recs))
	}

	if _, err := (&Manager{}).RecentExports(1); err == nil {
		t.Error("expected error without database")
	}
}
