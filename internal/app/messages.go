package app

import (
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to expire notifications and redraw countdowns.
type TickMsg struct {
	Time time.Time
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// SnapshotUpdatedMsg tells tabs that a new snapshot is in State.
type SnapshotUpdatedMsg struct{}

// CatalogUpdatedMsg tells tabs that the station catalog changed.
type CatalogUpdatedMsg struct{}

// RefreshMsg requests an immediate snapshot refresh.
type RefreshMsg struct{}

// ExportsLoadedMsg carries the export history read from the database.
type ExportsLoadedMsg struct {
	Records []models.ExportRecord
	Err     error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab. It counts as operator
// navigation.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
