// Package report implements the paged report query engine, its time window
// validation and the export coordinator shared by every report view.
package report

import (
	"errors"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// MaxSpan is the longest window a report may cover.
const MaxSpan = 7 * 24 * time.Hour

// Validation errors.
var (
	ErrSpanExceeded = errors.New("time range exceeds 7 days")
	ErrInverted     = errors.New("end time before start time")
)

// Message returns the operator-facing text for a validation error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSpanExceeded):
		return "Time range exceeds 7 days. Please select a shorter period."
	case errors.Is(err, ErrInverted):
		return "End time must be after start time."
	}
	return err.Error()
}

// Validate checks a report window. The span limit is checked first, so a
// window that is both too long and inverted reports ErrSpanExceeded.
func Validate(w models.TimeWindow) error {
	span := w.Span()
	if span > MaxSpan {
		return ErrSpanExceeded
	}
	if span < 0 {
		return ErrInverted
	}
	return nil
}

// DefaultWindow returns the window from the start of the local day until now.
func DefaultWindow(now time.Time) models.TimeWindow {
	y, m, d := now.Date()
	return models.TimeWindow{
		Start: time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		End:   now,
	}
}

// ParseTimestamp parses a local backend timestamp ("2006-01-02T15:04:05").
// A bare date or "2006-01-02 15:04" are accepted for keyboard entry.
func ParseTimestamp(s string) (time.Time, error) {
	layouts := []string{models.TimestampLayout, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
