package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services"
)

var exportFlags struct {
	kind     string
	format   string
	from     string
	to       string
	stations []string
	timeout  time.Duration
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a report to PDF or Excel without starting the dashboard",
	Example: `  hydro-tui export --kind discharge --format pdf --from "2026-03-01 00:00" --to "2026-03-02 00:00"
  hydro-tui export --kind aws --format excel --station Dakpathar --station Kalsi`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildExportRequest(time.Now())
		if err != nil {
			return err
		}

		mgr, err := services.NewManager(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer func() { _ = mgr.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), exportFlags.timeout)
		defer cancel()

		rec, err := mgr.Exporter().Export(ctx, req)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", rec.Path, rec.Bytes)
		return err
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.kind, "kind", string(models.ReportDischarge), "report kind: "+kindNames())
	f.StringVar(&exportFlags.format, "format", string(models.FormatPDF), "file format: pdf or excel")
	f.StringVar(&exportFlags.from, "from", "", "window start, YYYY-MM-DD HH:MM (default: start of today)")
	f.StringVar(&exportFlags.to, "to", "", "window end, YYYY-MM-DD HH:MM (default: now)")
	f.StringArrayVar(&exportFlags.stations, "station", nil, "station name, repeatable (default: all stations)")
	f.DurationVar(&exportFlags.timeout, "timeout", report.DefaultExportTimeout, "export timeout")
}

// buildExportRequest turns the export flags into a validated request.
func buildExportRequest(now time.Time) (models.ExportRequest, error) {
	kind, ok := parseKind(exportFlags.kind)
	if !ok {
		return models.ExportRequest{}, fmt.Errorf("unknown report kind %q (want %s)", exportFlags.kind, kindNames())
	}
	format, ok := models.ParseExportFormat(strings.ToLower(exportFlags.format))
	if !ok {
		return models.ExportRequest{}, fmt.Errorf("unknown format %q (want pdf or excel)", exportFlags.format)
	}

	window := report.DefaultWindow(now)
	if exportFlags.from != "" {
		t, err := report.ParseTimestamp(exportFlags.from)
		if err != nil {
			return models.ExportRequest{}, fmt.Errorf("invalid --from: %w", err)
		}
		window.Start = t
	}
	if exportFlags.to != "" {
		t, err := report.ParseTimestamp(exportFlags.to)
		if err != nil {
			return models.ExportRequest{}, fmt.Errorf("invalid --to: %w", err)
		}
		window.End = t
	}
	if err := report.Validate(window); err != nil {
		return models.ExportRequest{}, fmt.Errorf("%s", report.Message(err))
	}

	var selection models.StationSelection
	if len(exportFlags.stations) > 0 {
		c, _ := models.ConfigFor(kind)
		if !c.MultiSelect && len(exportFlags.stations) > 1 {
			return models.ExportRequest{}, fmt.Errorf("%s reports take a single station", kind)
		}
		selection = models.StationSelection(exportFlags.stations).Clone()
	}

	return models.ExportRequest{Kind: kind, Format: format, Selection: selection, Window: window}, nil
}

func parseKind(s string) (models.ReportKind, bool) {
	for _, k := range models.ReportKinds() {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

func kindNames() string {
	kinds := models.ReportKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
