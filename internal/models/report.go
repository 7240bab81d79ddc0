package models

import (
	"slices"
	"strconv"
	"time"
)

// DefaultPageSize is the fixed number of rows per report page.
const DefaultPageSize = 100

// TimestampLayout is the local, zone-less layout the backend expects.
const TimestampLayout = "2006-01-02T15:04:05"

// ReportKind identifies one report view.
type ReportKind string

// Report kinds.
const (
	ReportDischarge ReportKind = "discharge"
	ReportAWS       ReportKind = "aws"
	ReportRainGauge ReportKind = "rain-gauge"
	ReportDam       ReportKind = "vyasi-dam"
)

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Column describes a report table column.
type Column struct {
	Key   string
	Label string
	Align Alignment
}

// Row is one report row keyed by column key.
type Row map[string]string

// ReportConfig drives a report view and its exports.
type ReportConfig struct {
	Kind         ReportKind
	Title        string
	Badge        string
	StationLabel string
	MultiSelect  bool
	Columns      []Column
	// Endpoint is the backend path for paged rows. Empty means rows are served locally.
	Endpoint string
	// ExportEndpoint is the backend path prefix for file exports, without the format.
	ExportEndpoint string
	FileBase       string
}

var reportConfigs = map[ReportKind]ReportConfig{
	ReportDischarge: {
		Kind:         ReportDischarge,
		Title:        "Discharge Station Reports",
		Badge:        "MULTI RIVER • TIME SERIES • EXPORT READY",
		StationLabel: "Rivers",
		MultiSelect:  true,
		Columns: []Column{
			{Key: "sno", Label: "S.No", Align: AlignCenter},
			{Key: "timestamp", Label: "TimeStamp", Align: AlignLeft},
			{Key: "river", Label: "River", Align: AlignLeft},
			{Key: "discharge", Label: "Discharge (m3/s)", Align: AlignRight},
			{Key: "velocity", Label: "Velocity (m/s)", Align: AlignRight},
			{Key: "waterLevel", Label: "Water Level (m)", Align: AlignRight},
		},
		Endpoint:       "/api/external/discharge-stations",
		ExportEndpoint: "/api/external/discharge-stations/export",
		FileBase:       "discharge-station-report",
	},
	ReportAWS: {
		Kind:         ReportAWS,
		Title:        "Automatic Weather Station Reports",
		Badge:        "MULTI STATION • WEATHER PARAMETERS • EXPORT READY",
		StationLabel: "Stations",
		MultiSelect:  true,
		Columns: []Column{
			{Key: "sno", Label: "S.No", Align: AlignCenter},
			{Key: "timestamp", Label: "TimeStamp", Align: AlignLeft},
			{Key: "station", Label: "Station", Align: AlignLeft},
			{Key: "temperature", Label: "Temp (°C)", Align: AlignRight},
			{Key: "humidity", Label: "Humidity (%)", Align: AlignRight},
			{Key: "pressure", Label: "Pressure (hPa)", Align: AlignRight},
			{Key: "windSpeed", Label: "Wind Speed (m/s)", Align: AlignRight},
			{Key: "windDirection", Label: "Wind Dir (°)", Align: AlignRight},
			{Key: "rainfallHour", Label: "Rainfall HR (mm)", Align: AlignRight},
			{Key: "rainfallDay", Label: "Rainfall Day (mm)", Align: AlignRight},
			{Key: "rainfallTotal", Label: "Rainfall Total (mm)", Align: AlignRight},
		},
		Endpoint:       "/api/external/aws-stations",
		ExportEndpoint: "/api/external/aws-stations/export",
		FileBase:       "aws-station-report",
	},
	ReportRainGauge: {
		Kind:         ReportRainGauge,
		Title:        "Rain Gauge Station Reports",
		Badge:        "MULTI STATION • RAINFALL ANALYSIS • EXPORT READY",
		StationLabel: "Stations",
		MultiSelect:  true,
		Columns: []Column{
			{Key: "sno", Label: "S.No", Align: AlignCenter},
			{Key: "timestamp", Label: "TimeStamp", Align: AlignLeft},
			{Key: "station", Label: "Station", Align: AlignLeft},
			{Key: "rainfallHour", Label: "Rainfall HR (mm)", Align: AlignRight},
			{Key: "rainfallTotal", Label: "Rainfall Total (mm)", Align: AlignRight},
		},
		Endpoint:       "/api/external/rain-gauge-stations/list",
		ExportEndpoint: "/api/external/rain-gauge-stations/export",
		FileBase:       "rain-gauge-report",
	},
	ReportDam: {
		Kind:         ReportDam,
		Title:        "Vyasi Dam Reports",
		Badge:        "DAM MONITORING • LEVEL DATA • EXPORT READY",
		StationLabel: "Dam",
		MultiSelect:  false,
		Columns: []Column{
			{Key: "sno", Label: "S.No", Align: AlignCenter},
			{Key: "timestamp", Label: "TimeStamp", Align: AlignLeft},
			{Key: "headLoss", Label: "Head Loss (m)", Align: AlignRight},
			{Key: "intechLevel", Label: "Intech Level (m)", Align: AlignRight},
			{Key: "levelPier1", Label: "Level Pier 1 (m)", Align: AlignRight},
			{Key: "levelPier6", Label: "Level Pier 6 (m)", Align: AlignRight},
		},
		FileBase: "vyasi-dam-report",
	},
}

// ReportKinds lists report kinds in navigation order.
func ReportKinds() []ReportKind {
	return []ReportKind{ReportDischarge, ReportAWS, ReportRainGauge, ReportDam}
}

// ConfigFor returns the report configuration for a kind.
func ConfigFor(kind ReportKind) (ReportConfig, bool) {
	cfg, ok := reportConfigs[kind]
	return cfg, ok
}

// IsRemote reports whether rows for this report come from the backend.
func (c ReportConfig) IsRemote() bool {
	return c.Endpoint != ""
}

// TimeWindow is a closed time range for report queries.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Span returns End - Start.
func (w TimeWindow) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// StationSelection is a set of station identifiers. Empty means all stations.
type StationSelection []string

// IsAll reports whether the selection covers every station.
func (s StationSelection) IsAll() bool {
	return len(s) == 0
}

// Clone returns an independent copy.
func (s StationSelection) Clone() StationSelection {
	if s == nil {
		return StationSelection{}
	}
	return slices.Clone(s)
}

// Contains reports whether id is selected.
func (s StationSelection) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Toggle adds id when absent and removes it when present.
func (s StationSelection) Toggle(id string) StationSelection {
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(s.Clone(), i, i+1)
	}
	return append(s.Clone(), id)
}

// ReportQuery is one paged report request.
type ReportQuery struct {
	Kind      ReportKind
	Selection StationSelection
	Window    TimeWindow
	Page      int
	PageSize  int
}

// Offset returns the zero-based index of the first row of the page.
func (q ReportQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// ReportResult is one page of report rows.
type ReportResult struct {
	Rows  []Row
	Total int
}

// PageCount returns max(1, ceil(total/pageSize)).
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// FormatValue renders a reading with two decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
