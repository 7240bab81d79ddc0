// Package export produces report files, either by downloading them from the
// backend or by collecting every page locally and rendering PDF or XLSX.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/hydro-dashboard-tui/internal/config"
	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/metrics"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
)

const (
	fileTimeLayout = "20060102-150405"
	// maxPageFetches caps concurrent page requests while collecting rows.
	maxPageFetches = 4
)

// Downloader streams a backend-rendered export file.
type Downloader interface {
	DownloadExport(ctx context.Context, req models.ExportRequest, w io.Writer) (int64, error)
}

// History persists finished exports.
type History interface {
	InsertExportRecord(rec models.ExportRecord) error
}

// Service writes export files into a directory.
type Service struct {
	dir        string
	mode       string
	downloader Downloader
	fetcher    report.Fetcher
	history    History
	notify     func(title, body string) error
	now        func() time.Time
	pageSize   int
}

// Option configures a Service.
type Option func(*Service)

// WithDownloader sets the backend file source used in remote mode.
func WithDownloader(d Downloader) Option {
	return func(s *Service) { s.downloader = d }
}

// WithHistory records every export attempt.
func WithHistory(h History) Option {
	return func(s *Service) { s.history = h }
}

// WithDesktopNotifications announces finished exports on the desktop.
func WithDesktopNotifications(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.notify = func(title, body string) error { return beeep.Notify(title, body, "") }
		} else {
			s.notify = nil
		}
	}
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(fn func(title, body string) error) Option {
	return func(s *Service) { s.notify = fn }
}

// WithClock sets the clock used for file names and records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMode selects remote or local rendering. Unknown values mean remote.
func WithMode(mode string) Option {
	return func(s *Service) { s.mode = mode }
}

// NewService creates an export service writing to dir. The fetcher is used
// for local rendering and must serve every report kind.
func NewService(dir string, fetcher report.Fetcher, opts ...Option) *Service {
	s := &Service{
		dir:      dir,
		mode:     config.ExportModeRemote,
		fetcher:  fetcher,
		now:      time.Now,
		pageSize: models.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the output directory.
func (s *Service) Dir() string {
	return s.dir
}

// Export produces one file and returns its record. Failed attempts are
// recorded too.
func (s *Service) Export(ctx context.Context, req models.ExportRequest) (models.ExportRecord, error) {
	start := s.now()
	rec := models.ExportRecord{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Format:    req.Format,
		Stations:  len(req.Selection),
		Start:     req.Window.Start,
		End:       req.Window.End,
		CreatedAt: start,
	}

	cfg, ok := models.ConfigFor(req.Kind)
	var err error
	if !ok {
		err = fmt.Errorf("unknown report kind %q", req.Kind)
	} else if err = report.Validate(req.Window); err == nil {
		rec.Path = filepath.Join(s.dir, fmt.Sprintf("%s-%s.%s", cfg.FileBase, start.Format(fileTimeLayout), req.Format.Extension()))
		rec.Bytes, err = s.write(ctx, cfg, req, rec.Path, start)
	}

	rec.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		rec.Error = err.Error()
		rec.Path = ""
		logger.Warn("export failed", "kind", req.Kind, "format", req.Format, "error", err)
	} else {
		logger.Info("export written", "kind", req.Kind, "format", req.Format, "path", rec.Path, "bytes", rec.Bytes)
	}

	metrics.ObserveExport(string(req.Kind), string(req.Format), err, time.Since(start), rec.Bytes)
	s.record(rec)
	s.announce(cfg, req, rec, err)

	return rec, err
}

func (s *Service) useRemote(cfg models.ReportConfig) bool {
	return s.mode != config.ExportModeLocal && s.downloader != nil && cfg.ExportEndpoint != ""
}

func (s *Service) write(ctx context.Context, cfg models.ReportConfig, req models.ExportRequest, path string, now time.Time) (int64, error) {
	if s.useRemote(cfg) {
		return writeAtomic(path, func(w io.Writer) (int64, error) {
			return s.downloader.DownloadExport(ctx, req, w)
		})
	}

	if s.fetcher == nil {
		return 0, fmt.Errorf("no local data source for %s export", cfg.Title)
	}
	rows, err := s.collect(ctx, req)
	if err != nil {
		return 0, err
	}
	data, err := Render(Document{
		Config:      cfg,
		Window:      req.Window,
		Selection:   req.Selection,
		Rows:        rows,
		GeneratedAt: now,
	}, req.Format)
	if err != nil {
		return 0, fmt.Errorf("failed to render %s: %w", req.Format.Label(), err)
	}
	return writeAtomic(path, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
}

// collect reads every page of the report for the request.
func (s *Service) collect(ctx context.Context, req models.ExportRequest) ([]models.Row, error) {
	query := func(page int) models.ReportQuery {
		return models.ReportQuery{
			Kind:      req.Kind,
			Selection: req.Selection,
			Window:    req.Window,
			Page:      page,
			PageSize:  s.pageSize,
		}
	}

	first, err := s.fetcher.FetchReport(ctx, query(1))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page 1: %w", err)
	}
	pages := models.PageCount(first.Total, s.pageSize)
	if pages == 1 {
		return first.Rows, nil
	}

	results := make([][]models.Row, pages)
	results[0] = first.Rows

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPageFetches)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			res, err := s.fetcher.FetchReport(gctx, query(page))
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}
			results[page-1] = res.Rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.Row, 0, first.Total)
	for _, r := range results {
		rows = append(rows, r...)
	}
	return rows, nil
}

func (s *Service) record(rec models.ExportRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.InsertExportRecord(rec); err != nil {
		logger.Error("failed to record export", "id", rec.ID, "error", err)
	}
}

func (s *Service) announce(cfg models.ReportConfig, req models.ExportRequest, rec models.ExportRecord, err error) {
	if s.notify == nil {
		return
	}
	title := cfg.Title
	if title == "" {
		title = string(req.Kind)
	}
	body := fmt.Sprintf("%s saved to %s", req.Format.Label(), rec.Path)
	if err != nil {
		body = fmt.Sprintf("%s export failed: %v", req.Format.Label(), err)
	}
	if nerr := s.notify(title, body); nerr != nil {
		logger.Debug("desktop notification failed", "error", nerr)
	}
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place, so a failed export never leaves a partial file.
func writeAtomic(path string, fill func(w io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	n, err := fill(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return n, fmt.Errorf("failed to move export into place: %w", err)
	}
	return n, nil
}
