// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/autoloop"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
	maxExportHistory = 20
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is shared between the root model and the tabs. The root model writes
// it from the update loop; tabs read it while rendering.
type State struct {
	mu sync.RWMutex

	snapshot    overview.Snapshot
	hasSnapshot bool
	refreshing  bool

	catalog models.Catalog

	exports  []models.ExportRecord
	autoLoop autoloop.Status

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state waiting for the first snapshot.
func NewState() *State {
	return &State{
		refreshing:    true,
		notifications: make([]Notification, 0),
	}
}

// SetSnapshot replaces the dashboard snapshot and ends the refresh.
func (s *State) SetSnapshot(snap overview.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	s.hasSnapshot = true
	s.refreshing = false
}

// Snapshot returns the latest snapshot and whether one has arrived yet.
func (s *State) Snapshot() (overview.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.hasSnapshot
}

// SetRefreshing marks a snapshot refresh as running.
func (s *State) SetRefreshing(refreshing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = refreshing
}

// Refreshing reports whether a snapshot refresh is running.
func (s *State) Refreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// IsInitialLoading returns true until the first snapshot arrives.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.hasSnapshot
}

// SetCatalog stores the static station catalog.
func (s *State) SetCatalog(c models.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

// StationRefs returns selector entries for a report kind. Live snapshot data
// wins; the catalog fills in when the snapshot has no stations of that kind.
func (s *State) StationRefs(kind models.ReportKind) []models.StationRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.hasSnapshot {
		if refs := s.snapshot.StationRefs(kind); len(refs) > 0 {
			return refs
		}
	}
	return s.catalog.StationRefs(kind)
}

// SetExports replaces the export history.
func (s *State) SetExports(records []models.ExportRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append([]models.ExportRecord(nil), records...)
}

// AddExport puts a finished export at the top of the history.
func (s *State) AddExport(rec models.ExportRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exports = append([]models.ExportRecord{rec}, s.exports...)
	if len(s.exports) > maxExportHistory {
		s.exports = s.exports[:maxExportHistory]
	}
}

// Exports returns a copy of the export history, newest first.
func (s *State) Exports() []models.ExportRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ExportRecord(nil), s.exports...)
}

// SetAutoLoop records the latest scheduler status.
func (s *State) SetAutoLoop(st autoloop.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoLoop = st
}

// AutoLoop returns the latest scheduler status.
func (s *State) AutoLoop() autoloop.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoLoop
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "n-" + strconv.Itoa(s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// LastUpdated returns when the summary last arrived from the backend.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.LastUpdated
}
