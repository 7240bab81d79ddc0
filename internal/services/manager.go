// Package services provides service orchestration for the TUI.
package services

import (
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/hydro-dashboard-tui/internal/api"
	"github.com/j-veylop/hydro-dashboard-tui/internal/config"
	"github.com/j-veylop/hydro-dashboard-tui/internal/db"
	"github.com/j-veylop/hydro-dashboard-tui/internal/export"
	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services/catalog"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services/poller"
	"github.com/j-veylop/hydro-dashboard-tui/internal/version"
)

type (
	// SnapshotEvent is emitted when a new dashboard snapshot is available.
	SnapshotEvent struct {
		Snapshot overview.Snapshot
	}

	// RefreshingEvent is emitted when a snapshot refresh starts.
	RefreshingEvent struct{}

	// CatalogChangedEvent is emitted when the station catalog is (re)loaded.
	CatalogChangedEvent struct {
		Catalog models.Catalog
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SnapshotEvent) isServiceEvent()       {}
func (RefreshingEvent) isServiceEvent()     {}
func (CatalogChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()          {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	client      *api.Client
	catalog     *catalog.Service
	aggregator  *overview.Aggregator
	poller      *poller.Service
	exporter    *export.Service
	reports     report.Sources
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	doneChan    chan struct{}
	subscribers []chan ServiceEvent

	summaryDown bool
	seenSummary bool
	notify      func(title, body string) error
}

// NewManager wires every service from configuration and starts polling.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
	if cfg.Notifications.Desktop {
		m.notify = func(title, body string) error { return beeep.Notify(title, body, "") }
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	policy := api.DefaultRetryPolicy()
	policy.MaxRetries = cfg.API.MaxRetries
	m.client, err = api.New(cfg.API.BaseURL, cfg.API.Timeout,
		api.WithRetryPolicy(policy),
		api.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	m.catalog, err = catalog.New(cfg.StationsPath, overview.DefaultCatalog())
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	m.aggregator = overview.New(m.client,
		overview.WithCache(m.database),
		overview.WithDamHistory(m.database),
		overview.WithCatalog(m.catalog),
	)

	m.reports = report.Sources{Remote: m.client, Local: m.database}
	m.exporter = export.NewService(cfg.Export.Dir, m.reports,
		export.WithMode(cfg.Export.Mode),
		export.WithDownloader(m.client),
		export.WithHistory(m.database),
		export.WithDesktopNotifications(cfg.Notifications.Desktop),
	)

	m.poller = poller.New(m.aggregator, m.database, poller.Config{
		PollInterval:  cfg.PollInterval,
		RetentionDays: cfg.RetentionDays,
	})

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer close(m.doneChan)

	for {
		select {
		case event := <-m.poller.Events():
			m.handlePollerEvent(event)

		case event := <-m.catalog.Events():
			m.handleCatalogEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handlePollerEvent(event poller.Event) {
	switch event.Type {
	case poller.EventRefreshing:
		m.broadcast(RefreshingEvent{})

	case poller.EventSnapshot:
		m.checkNotifications(event.Snapshot)
		m.broadcast(SnapshotEvent{Snapshot: event.Snapshot})
	}
}

func (m *Manager) handleCatalogEvent(event catalog.Event) {
	switch event.Type {
	case catalog.EventCatalogLoaded:
		m.broadcast(CatalogChangedEvent{Catalog: m.catalog.Catalog()})

	case catalog.EventCatalogChanged:
		m.broadcast(CatalogChangedEvent{Catalog: m.catalog.Catalog()})
		m.poller.Refresh()

	case catalog.EventError:
		m.broadcast(ErrorEvent{
			Service: "catalog",
			Error:   event.Error,
		})
	}
}

// checkNotifications announces when the summary source goes down or comes
// back. A healthy first snapshot is not announced.
func (m *Manager) checkNotifications(snap overview.Snapshot) {
	down := snap.SummaryErr != nil

	m.mu.Lock()
	wasDown, seen := m.summaryDown, m.seenSummary
	m.summaryDown, m.seenSummary = down, true
	notify := m.notify
	m.mu.Unlock()

	if notify == nil || down == wasDown {
		return
	}
	if !seen && !down {
		return
	}

	title := "Hydro API unreachable"
	body := overview.SummaryErrorText
	if !down {
		title = "Hydro API recovered"
		body = "Live data is being received again."
	}
	if err := notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
// A closed channel yields a nil message.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Refresh requests an immediate snapshot refresh.
func (m *Manager) Refresh() {
	m.poller.Refresh()
}

// LastSnapshot returns the most recent snapshot, if any.
func (m *Manager) LastSnapshot() (overview.Snapshot, bool) {
	return m.aggregator.Last()
}

// Config returns the configuration the manager was built from.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Aggregator returns the dashboard aggregator.
func (m *Manager) Aggregator() *overview.Aggregator {
	return m.aggregator
}

// Reports returns the row source for every report kind.
func (m *Manager) Reports() report.Fetcher {
	return m.reports
}

// Exporter returns the export service.
func (m *Manager) Exporter() *export.Service {
	return m.exporter
}

// Catalog returns the station catalog service.
func (m *Manager) Catalog() *catalog.Service {
	return m.catalog
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// RecentExports returns the latest export records.
func (m *Manager) RecentExports(limit int) ([]models.ExportRecord, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.RecentExports(limit)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	if err := m.poller.Close(); err != nil {
		errs = append(errs, err)
	}

	close(m.stopChan)
	<-m.doneChan

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if err := m.catalog.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
