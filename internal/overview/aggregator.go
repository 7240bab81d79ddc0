// Package overview merges the independent live feeds of the monitoring
// network into one dashboard snapshot and derives its chart statistics.
package overview

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/metrics"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// SummaryErrorText is the banner shown while the summary feed is down.
const SummaryErrorText = "Data not received – API failed"

// DefaultFetchTimeout bounds one whole aggregation.
const DefaultFetchTimeout = 30 * time.Second

// Source names, used for cache keys, metrics and per-source errors.
const (
	SourceSummary   = "summary"
	SourceDischarge = "discharge"
	SourceWeather   = "aws"
	SourceRain      = "rain_gauges"
	SourceDam       = "dam"
)

// Provenance says where a snapshot section came from.
type Provenance string

// Provenance values.
const (
	ProvenanceLive    Provenance = "live"
	ProvenanceLast    Provenance = "last-known"
	ProvenanceCached  Provenance = "cached"
	ProvenanceCatalog Provenance = "catalog"
	ProvenanceNone    Provenance = "none"
)

// ErrNoData means a source failed and had nothing to fall back to.
var ErrNoData = errors.New("no data available")

// Source is the live backend.
type Source interface {
	Summary(ctx context.Context) (models.SummaryMetrics, error)
	DischargeStations(ctx context.Context) ([]models.DischargeStation, error)
	WeatherStations(ctx context.Context) ([]models.WeatherStation, error)
	RainGauges(ctx context.Context) ([]models.RainGaugeStation, error)
	Dam(ctx context.Context) (models.DamStation, error)
}

// Cache persists the last good payload of every source.
type Cache interface {
	SaveSource(source string, payload any) error
	LoadSource(source string, v any) (time.Time, bool, error)
}

// DamHistory records dam readings and serves the recent trend.
type DamHistory interface {
	InsertDamReading(d models.DamStation) error
	RecentDamReadings(limit int) ([]models.DamStation, error)
}

// CatalogProvider returns the static station catalog.
type CatalogProvider interface {
	Catalog() models.Catalog
}

// Snapshot is one immutable view of the dashboard.
type Snapshot struct {
	Summary    *models.SummaryMetrics
	SummaryErr error

	Discharge  []models.DischargeStation
	Weather    []models.WeatherStation
	RainGauges []models.RainGaugeStation
	Dam        *models.DamStation
	DamTrend   []models.DamStation

	DischargeStats models.StatsBundle
	WeatherStats   models.StatsBundle
	RainStats      models.StatsBundle
	DamStats       models.StatsBundle

	// SourceErrors holds the error of every source that failed this round.
	SourceErrors map[string]error
	Provenance   map[string]Provenance

	FetchedAt time.Time
	// LastUpdated is when the summary last arrived from the backend.
	LastUpdated time.Time
}

// Banner returns the top-level error text, or "".
func (s Snapshot) Banner() string {
	if s.SummaryErr != nil {
		return SummaryErrorText
	}
	return ""
}

// Healthy reports whether every source answered.
func (s Snapshot) Healthy() bool {
	return len(s.SourceErrors) == 0
}

// StationRefs returns selector entries for a report kind from live data.
func (s Snapshot) StationRefs(kind models.ReportKind) []models.StationRef {
	c := models.Catalog{Discharge: s.Discharge, Weather: s.Weather, RainGauges: s.RainGauges}
	if s.Dam != nil {
		c.Dam = *s.Dam
	}
	return c.StationRefs(kind)
}

// Aggregator fetches every source concurrently and falls back per source.
type Aggregator struct {
	source     Source
	cache      Cache
	damHistory DamHistory
	catalog    CatalogProvider
	timeout    time.Duration
	trendSize  int
	now        func() time.Time

	runMu sync.Mutex

	mu          sync.RWMutex
	last        Snapshot
	hasLast     bool
	lastSummary *models.SummaryMetrics
	lastUpdated time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCache enables the persistent last-known cache.
func WithCache(c Cache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithDamHistory records dam readings and loads the dam trend.
func WithDamHistory(h DamHistory) Option {
	return func(a *Aggregator) { a.damHistory = h }
}

// WithCatalog sets the static fallback catalog.
func WithCatalog(c CatalogProvider) Option {
	return func(a *Aggregator) { a.catalog = c }
}

// WithTimeout bounds one aggregation.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an Aggregator.
func New(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:    source,
		timeout:   DefaultFetchTimeout,
		trendSize: 48,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Last returns the most recent snapshot.
func (a *Aggregator) Last() (Snapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.hasLast
}

type result[T any] struct {
	value T
	err   error
}

// FetchSnapshot queries every source concurrently and waits for all of
// them. A failing source never fails the snapshot; it falls back to its
// last-known value, then the persistent cache, then the static catalog.
func (a *Aggregator) FetchSnapshot(ctx context.Context) Snapshot {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		summary   result[models.SummaryMetrics]
		discharge result[[]models.DischargeStation]
		weather   result[[]models.WeatherStation]
		rain      result[[]models.RainGaugeStation]
		dam       result[models.DamStation]
	)

	var g errgroup.Group
	g.Go(func() error {
		summary.value, summary.err = a.source.Summary(ctx)
		return nil
	})
	g.Go(func() error {
		discharge.value, discharge.err = a.source.DischargeStations(ctx)
		return nil
	})
	g.Go(func() error {
		weather.value, weather.err = a.source.WeatherStations(ctx)
		return nil
	})
	g.Go(func() error {
		rain.value, rain.err = a.source.RainGauges(ctx)
		return nil
	})
	g.Go(func() error {
		dam.value, dam.err = a.source.Dam(ctx)
		return nil
	})
	_ = g.Wait()

	a.mu.RLock()
	prev, hasPrev := a.last, a.hasLast
	a.mu.RUnlock()

	var catalog models.Catalog
	if a.catalog != nil {
		catalog = a.catalog.Catalog()
	} else {
		catalog = DefaultCatalog()
	}

	snap := Snapshot{
		SourceErrors: make(map[string]error),
		Provenance:   make(map[string]Provenance),
		FetchedAt:    a.now(),
	}

	// Summary never falls back to the catalog: counts are not invented.
	a.resolveSummary(&snap, summary)

	snap.Discharge = resolve(a, &snap, SourceDischarge, discharge, hasPrev, prev.Discharge, catalog.Discharge)
	snap.Weather = resolve(a, &snap, SourceWeather, weather, hasPrev, prev.Weather, catalog.Weather)
	snap.RainGauges = resolve(a, &snap, SourceRain, rain, hasPrev, prev.RainGauges, catalog.RainGauges)

	var prevDam models.DamStation
	if prev.Dam != nil {
		prevDam = *prev.Dam
	}
	d := resolve(a, &snap, SourceDam, dam, hasPrev && prev.Dam != nil, prevDam, catalog.Dam)
	snap.Dam = &d
	if dam.err == nil && a.damHistory != nil {
		if err := a.damHistory.InsertDamReading(d); err != nil {
			logger.Warn("failed to record dam reading", "error", err)
		}
	}
	if a.damHistory != nil {
		trend, err := a.damHistory.RecentDamReadings(a.trendSize)
		if err != nil {
			logger.Warn("failed to load dam trend", "error", err)
		}
		snap.DamTrend = trend
	}

	snap.DischargeStats = DischargeStats(snap.Discharge)
	snap.WeatherStats = WeatherStats(snap.Weather)
	snap.RainStats = RainGaugeStats(snap.RainGauges)
	snap.DamStats = DamStats(snap.DamTrend)

	metrics.ObserveSnapshot(summary.err, time.Since(start))

	a.mu.Lock()
	a.last = snap
	a.hasLast = true
	a.mu.Unlock()

	return snap
}

func (a *Aggregator) resolveSummary(snap *Snapshot, r result[models.SummaryMetrics]) {
	metrics.SetSourceUp(SourceSummary, r.err == nil)

	a.mu.Lock()
	defer a.mu.Unlock()

	if r.err == nil {
		s := r.value
		a.lastSummary = &s
		a.lastUpdated = a.now()
		a.save(SourceSummary, s)
		snap.Summary = &s
		snap.LastUpdated = a.lastUpdated
		snap.Provenance[SourceSummary] = ProvenanceLive
		return
	}

	logger.Warn("summary fetch failed", "error", r.err)
	snap.SummaryErr = r.err
	snap.SourceErrors[SourceSummary] = r.err
	snap.LastUpdated = a.lastUpdated

	if a.lastSummary != nil {
		s := *a.lastSummary
		snap.Summary = &s
		snap.Provenance[SourceSummary] = ProvenanceLast
		return
	}

	var cached models.SummaryMetrics
	if updated, ok := a.load(SourceSummary, &cached); ok {
		snap.Summary = &cached
		snap.LastUpdated = updated
		snap.Provenance[SourceSummary] = ProvenanceCached
		return
	}
	snap.Provenance[SourceSummary] = ProvenanceNone
}

// resolve picks the live value, or the first available fallback.
func resolve[T any](a *Aggregator, snap *Snapshot, source string, r result[T], hasPrev bool, prev, catalog T) T {
	metrics.SetSourceUp(source, r.err == nil)

	if r.err == nil {
		a.save(source, r.value)
		snap.Provenance[source] = ProvenanceLive
		return r.value
	}

	logger.Warn("source fetch failed, using fallback", "source", source, "error", r.err)
	snap.SourceErrors[source] = r.err

	if hasPrev {
		snap.Provenance[source] = ProvenanceLast
		return prev
	}
	var cached T
	if _, ok := a.load(source, &cached); ok {
		snap.Provenance[source] = ProvenanceCached
		return cached
	}
	snap.Provenance[source] = ProvenanceCatalog
	return catalog
}

func (a *Aggregator) save(source string, payload any) {
	if a.cache == nil {
		return
	}
	if err := a.cache.SaveSource(source, payload); err != nil {
		logger.Warn("failed to cache source", "source", source, "error", err)
	}
}

func (a *Aggregator) load(source string, v any) (time.Time, bool) {
	if a.cache == nil {
		return time.Time{}, false
	}
	updated, ok, err := a.cache.LoadSource(source, v)
	if err != nil {
		logger.Warn("failed to load cached source", "source", source, "error", err)
		return time.Time{}, false
	}
	return updated, ok
}

// Errors returns a copy of the per-source errors of the last snapshot.
func (a *Aggregator) Errors() map[string]error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.last.SourceErrors)
}
