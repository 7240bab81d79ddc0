// Package poller refreshes the dashboard snapshot in the background.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
)

// Snapshotter produces one dashboard snapshot.
type Snapshotter interface {
	FetchSnapshot(ctx context.Context) overview.Snapshot
}

// Pruner drops locally recorded readings older than a number of days.
type Pruner interface {
	CleanupOldDamReadings(olderThanDays int) (int64, error)
}

// Event represents a poller event.
type Event struct {
	Snapshot overview.Snapshot
	Type     EventType
}

// EventType defines the type of poller event.
type EventType int

const (
	// EventRefreshing indicates that a refresh is in progress.
	EventRefreshing EventType = iota
	// EventSnapshot carries a fresh snapshot.
	EventSnapshot
)

// Config holds configuration for the poller.
type Config struct {
	PollInterval time.Duration
	// RetentionDays bounds how long dam readings are kept. Zero keeps them forever.
	RetentionDays int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  5 * time.Minute,
		RetentionDays: 30,
	}
}

const pruneInterval = 24 * time.Hour

// Service polls the snapshotter on a fixed interval.
type Service struct {
	source    Snapshotter
	pruner    Pruner
	config    Config
	eventChan chan Event
	stopChan  chan struct{}
	refreshCh chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu        sync.RWMutex
	lastPrune time.Time
}

// New creates a poller and starts its goroutine. The first refresh runs
// immediately.
func New(source Snapshotter, pruner Pruner, config Config) *Service {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		source:    source,
		pruner:    pruner,
		config:    config,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
		refreshCh: make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
	}

	s.wg.Add(1)
	go s.poll()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Refresh requests an out-of-band refresh. Requests made while one is
// pending are coalesced.
func (s *Service) Refresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

func (s *Service) poll() {
	defer s.wg.Done()

	s.refresh()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case <-s.refreshCh:
			s.refresh()
			ticker.Reset(s.config.PollInterval)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) refresh() {
	s.sendEvent(Event{Type: EventRefreshing})

	snap := s.source.FetchSnapshot(s.ctx)
	if s.ctx.Err() != nil {
		return
	}
	if !snap.Healthy() {
		logger.Debug("snapshot with failed sources", "failed", len(snap.SourceErrors))
	}
	s.sendEvent(Event{Type: EventSnapshot, Snapshot: snap})

	s.prune(snap.FetchedAt)
}

func (s *Service) prune(now time.Time) {
	if s.pruner == nil || s.config.RetentionDays <= 0 {
		return
	}

	s.mu.Lock()
	due := s.lastPrune.IsZero() || now.Sub(s.lastPrune) >= pruneInterval
	if due {
		s.lastPrune = now
	}
	s.mu.Unlock()
	if !due {
		return
	}

	n, err := s.pruner.CleanupOldDamReadings(s.config.RetentionDays)
	if err != nil {
		logger.Warn("failed to prune dam readings", "error", err)
		return
	}
	if n > 0 {
		logger.Info("pruned dam readings", "removed", n, "retention_days", s.config.RetentionDays)
	}
}

// sendEvent sends an event non-blocking, dropping the oldest when full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops polling and waits for an in-flight refresh to end.
func (s *Service) Close() error {
	close(s.stopChan)
	s.cancel()
	s.wg.Wait()
	return nil
}
