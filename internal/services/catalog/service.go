// Package catalog keeps the station catalog file loaded and reloads it when
// it changes on disk.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// File is the on-disk catalog layout.
type File struct {
	Version int `json:"version"`
	models.Catalog
}

// Event represents a catalog service event.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of catalog event.
type EventType int

const (
	EventCatalogLoaded EventType = iota
	EventCatalogChanged
	EventError
)

const debounceInterval = 100 * time.Millisecond

// Service serves the station catalog with file watching.
type Service struct {
	mu            sync.RWMutex
	catalog       models.Catalog
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New loads the catalog at filePath, writing fallback there first when the
// file does not exist, and starts watching it.
func New(filePath string, fallback models.Catalog) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("catalog path is empty")
	}

	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		s.catalog = normalize(fallback)
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create catalog file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventCatalogLoaded})
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the catalog file path.
func (s *Service) Path() string {
	return s.filePath
}

// Catalog returns a copy of the current catalog.
func (s *Service) Catalog() models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Catalog{
		Discharge:  append([]models.DischargeStation(nil), s.catalog.Discharge...),
		Weather:    append([]models.WeatherStation(nil), s.catalog.Weather...),
		RainGauges: append([]models.RainGaugeStation(nil), s.catalog.RainGauges...),
		Dam:        s.catalog.Dam,
	}
}

// Count returns the number of stations in the catalog.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.catalog.Discharge) + len(s.catalog.Weather) + len(s.catalog.RainGauges)
	if s.catalog.Dam.Title != "" {
		n++
	}
	return n
}

// parse decodes a catalog file and fills in derived fields.
func parse(data []byte) (models.Catalog, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return models.Catalog{}, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for _, s := range f.Discharge {
		if s.Title == "" {
			return models.Catalog{}, errors.New("discharge station without title")
		}
	}
	for _, s := range f.Weather {
		if s.Title == "" {
			return models.Catalog{}, errors.New("weather station without title")
		}
	}
	for _, s := range f.RainGauges {
		if s.Title == "" {
			return models.Catalog{}, errors.New("rain gauge without title")
		}
	}
	return normalize(f.Catalog), nil
}

// normalize derives ids, chart keys and colors the file may omit.
func normalize(c models.Catalog) models.Catalog {
	for i := range c.Discharge {
		s := &c.Discharge[i]
		if s.ID == "" {
			s.ID = models.StationID("ds", i)
		}
		if s.RiverName == "" {
			s.RiverName = models.RiverName(s.Title)
		}
		if s.ChartKey == "" {
			s.ChartKey = models.WordInitials(s.Title)
		}
		if s.Color == "" {
			s.Color = models.DischargeColor(i)
		}
	}
	for i := range c.Weather {
		s := &c.Weather[i]
		if s.ID == "" {
			s.ID = models.StationID("ws", i)
		}
		if s.ChartKey == "" {
			s.ChartKey = s.Title
		}
		if s.Color == "" {
			s.Color = models.WeatherColor(i)
		}
	}
	for i := range c.RainGauges {
		s := &c.RainGauges[i]
		if s.ID == "" {
			s.ID = models.StationID("rg", i)
		}
		if s.ChartKey == "" {
			s.ChartKey = models.CamelInitials(s.Title)
		}
		if s.Color == "" {
			s.Color = models.RainGaugeColor(i)
		}
	}
	if c.Dam.Title != "" && c.Dam.ID == "" {
		c.Dam.ID = "dam-1"
	}
	return c
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	c, err := parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()
	return nil
}

// save writes the catalog through a temp file.
func (s *Service) save() error {
	s.mu.RLock()
	f := File{Version: 1, Catalog: s.catalog}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the catalog. A broken file keeps the previous
// catalog in place.
func (s *Service) handleFileChange() {
	if err := s.load(); err != nil {
		logger.Warn("catalog reload failed", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	logger.Info("catalog reloaded", "path", s.filePath, "stations", s.Count())
	s.sendEvent(Event{Type: EventCatalogChanged})
}

// sendEvent sends an event without blocking, dropping the oldest one when full.
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

// Close stops the file watcher.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
