package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services"
)

var (
	snapshotJSON    bool
	snapshotTimeout time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch every live feed once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := services.NewManager(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer func() { _ = mgr.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
		defer cancel()

		snap := mgr.Aggregator().FetchSnapshot(ctx)
		if snapshotJSON {
			return writeSnapshotJSON(cmd.OutOrStdout(), snap)
		}
		return writeSnapshotText(cmd.OutOrStdout(), snap)
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "print JSON instead of text")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", time.Minute, "overall fetch timeout")
}

// snapshotReport is the JSON shape of a snapshot. Errors become strings.
type snapshotReport struct {
	FetchedAt   time.Time                 `json:"fetched_at"`
	LastUpdated time.Time                 `json:"last_updated,omitzero"`
	Summary     *models.SummaryMetrics    `json:"summary"`
	Banner      string                    `json:"banner,omitempty"`
	Discharge   []models.DischargeStation `json:"discharge"`
	Weather     []models.WeatherStation   `json:"weather"`
	RainGauges  []models.RainGaugeStation `json:"rain_gauges"`
	Dam         *models.DamStation        `json:"dam"`
	Sources     map[string]sourceReport   `json:"sources"`
}

type sourceReport struct {
	Provenance overview.Provenance `json:"provenance"`
	Error      string              `json:"error,omitempty"`
}

func newSnapshotReport(snap overview.Snapshot) snapshotReport {
	r := snapshotReport{
		FetchedAt:   snap.FetchedAt,
		LastUpdated: snap.LastUpdated,
		Summary:     snap.Summary,
		Banner:      snap.Banner(),
		Discharge:   snap.Discharge,
		Weather:     snap.Weather,
		RainGauges:  snap.RainGauges,
		Dam:         snap.Dam,
		Sources:     make(map[string]sourceReport),
	}
	for _, src := range sourceNames(snap) {
		s := sourceReport{Provenance: snap.Provenance[src]}
		if err := snap.SourceErrors[src]; err != nil {
			s.Error = err.Error()
		}
		r.Sources[src] = s
	}
	return r
}

func writeSnapshotJSON(w io.Writer, snap overview.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newSnapshotReport(snap))
}

func writeSnapshotText(w io.Writer, snap overview.Snapshot) error {
	pr := &printer{w: w}

	pr.printf("Fetched: %s\n", snap.FetchedAt.Format("02 Jan 2006 15:04:05"))
	if banner := snap.Banner(); banner != "" {
		pr.printf("!! %s\n", banner)
	}

	if snap.Summary != nil {
		pr.printf("\nSummary\n")
		for _, c := range snap.Summary.Cards() {
			pr.printf("  %-28s %s\n", c.Title, c.Value)
		}
	}

	pr.printf("\nDischarge (%d)\n", len(snap.Discharge))
	for _, s := range snap.Discharge {
		pr.printf("  %-24s %10s m³/s %8s m/s %8s m\n", s.Title,
			models.FormatValue(s.Discharge), models.FormatValue(s.Velocity), models.FormatValue(s.WaterLevel))
	}

	pr.printf("\nWeather (%d)\n", len(snap.Weather))
	for _, s := range snap.Weather {
		pr.printf("  %-24s %8s °C %8s %% %8s mm/day\n", s.Title,
			models.FormatValue(s.Temperature), models.FormatValue(s.RelativeHumidity), models.FormatValue(s.RainfallDay))
	}

	pr.printf("\nRain Gauges (%d)\n", len(snap.RainGauges))
	for _, s := range snap.RainGauges {
		pr.printf("  %-24s %8s mm/hr %8s mm\n", s.Title,
			models.FormatValue(s.RainfallHR), models.FormatValue(s.RainfallTotal))
	}

	if snap.Dam != nil {
		d := snap.Dam
		pr.printf("\n%s\n", d.Title)
		pr.printf("  Head Loss %s m · Intech %s m · Pier 1 %s m · Pier 6 %s m\n",
			models.FormatValue(d.HeadLoss), models.FormatValue(d.IntechLevel),
			models.FormatValue(d.LevelPier1), models.FormatValue(d.LevelPier6))
	}

	pr.printf("\nSources\n")
	for _, src := range sourceNames(snap) {
		line := fmt.Sprintf("  %-12s %s", src, snap.Provenance[src])
		if err := snap.SourceErrors[src]; err != nil {
			line += "  " + err.Error()
		}
		pr.printf("%s\n", line)
	}

	return pr.err
}

func sourceNames(snap overview.Snapshot) []string {
	names := make([]string, 0, len(snap.Provenance))
	for src := range snap.Provenance {
		names = append(names, src)
	}
	for src := range snap.SourceErrors {
		if _, ok := snap.Provenance[src]; !ok {
			names = append(names, src)
		}
	}
	slices.Sort(names)
	return names
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
