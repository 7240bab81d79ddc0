// Package models defines the data structures shared across the dashboard.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// StationColor is the accent color assigned to a station card.
type StationColor string

// Station colors, cycled in list order.
const (
	ColorBlue   StationColor = "blue"
	ColorOrange StationColor = "orange"
	ColorGreen  StationColor = "green"
	ColorYellow StationColor = "yellow"
)

var (
	dischargeColors = []StationColor{ColorBlue, ColorOrange, ColorGreen, ColorYellow}
	weatherColors   = []StationColor{ColorBlue, ColorGreen, ColorOrange}
	rainColors      = []StationColor{ColorBlue, ColorGreen, ColorOrange, ColorYellow}
)

// DischargeStation is a river discharge gauge reading.
type DischargeStation struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	RiverName  string       `json:"river_name"`
	ChartKey   string       `json:"chart_key"`
	Color      StationColor `json:"color"`
	Discharge  float64      `json:"discharge"`
	Velocity   float64      `json:"velocity"`
	WaterLevel float64      `json:"water_level"`
}

// WeatherStation is an automatic weather station (AWS) reading.
type WeatherStation struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	ChartKey         string       `json:"chart_key"`
	Color            StationColor `json:"color"`
	WindSpeed        float64      `json:"wind_speed"`
	WindDirection    float64      `json:"wind_direction"`
	Temperature      float64      `json:"temperature"`
	RelativeHumidity float64      `json:"relative_humidity"`
	AirPressure      float64      `json:"air_pressure"`
	SolarRadiation   float64      `json:"solar_radiation"`
	RainfallHR       float64      `json:"rainfall_hr"`
	RainfallDay      float64      `json:"rainfall_day"`
	RainfallTotal    float64      `json:"rainfall_total"`
}

// RainGaugeStation is a rain gauge reading.
type RainGaugeStation struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	ChartKey      string       `json:"chart_key"`
	Color         StationColor `json:"color"`
	RainfallHR    float64      `json:"rainfall_hr"`
	RainfallTotal float64      `json:"rainfall_total"`
}

// DamStation is the latest reading of the monitored dam.
type DamStation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	HeadLoss    float64   `json:"head_loss"`
	IntechLevel float64   `json:"intech_level"`
	LevelPier1  float64   `json:"level_pier_1"`
	LevelPier6  float64   `json:"level_pier_6"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// SummaryMetrics holds the station counts shown on the overview cards.
type SummaryMetrics struct {
	DischargeStations int `json:"discharge_stations"`
	AWS               int `json:"aws"`
	RainGaugeStations int `json:"rain_gauge_stations"`
	Dam               int `json:"dam"`
	VyasiDamLevel     int `json:"vyasi_dam_level"`
}

// MetricCard is one rendered summary card.
type MetricCard struct {
	ID        string
	Title     string
	Value     string
	Clickable bool
}

// Cards returns the summary as display cards with two-digit padding.
func (s SummaryMetrics) Cards() []MetricCard {
	pad := func(n int) string { return fmt.Sprintf("%02d", n) }
	return []MetricCard{
		{ID: "discharge", Title: "Discharge Stations", Value: pad(s.DischargeStations), Clickable: true},
		{ID: "weather", Title: "Automatic Weather Stations", Value: pad(s.AWS), Clickable: true},
		{ID: "rain-gauge", Title: "Rain Gauge Stations", Value: pad(s.RainGaugeStations), Clickable: true},
		{ID: "dam", Title: "Dam", Value: pad(s.Dam), Clickable: true},
		{ID: "vyasi-dam-level", Title: "Vyasi Dam Level", Value: pad(s.VyasiDamLevel)},
	}
}

// StationRef identifies a station for selection pickers.
type StationRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ChartKey string `json:"chart_key"`
}

// StationID builds a sequential station identifier such as "ds-001".
func StationID(prefix string, index int) string {
	return fmt.Sprintf("%s-%03d", prefix, index+1)
}

// DischargeColor returns the cycled color for the i-th discharge station.
func DischargeColor(i int) StationColor { return dischargeColors[i%len(dischargeColors)] }

// WeatherColor returns the cycled color for the i-th weather station.
func WeatherColor(i int) StationColor { return weatherColors[i%len(weatherColors)] }

// RainGaugeColor returns the cycled color for the i-th rain gauge.
func RainGaugeColor(i int) StationColor { return rainColors[i%len(rainColors)] }

// WordInitials returns the upper-cased first letter of every space separated word.
// "Yamuna River" becomes "YR".
func WordInitials(name string) string {
	var b strings.Builder
	for _, w := range strings.Split(name, " ") {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
	}
	return b.String()
}

var upperRun = regexp.MustCompile(`([A-Z])`)

// CamelInitials splits a name on capital letters and whitespace and returns the
// initials. Single-word names fall back to their first two characters.
func CamelInitials(name string) string {
	spaced := strings.TrimSpace(upperRun.ReplaceAllString(name, " $1"))
	words := strings.Fields(spaced)
	if len(words) > 1 {
		var b strings.Builder
		for _, w := range words {
			b.WriteString(strings.ToUpper(w[:1]))
		}
		return b.String()
	}
	if len(name) > 2 {
		return name[:2]
	}
	return name
}

var riverSuffix = regexp.MustCompile(`(?i)\s+river$`)

// RiverName strips a trailing "River" from a discharge station title.
func RiverName(title string) string {
	return strings.TrimSpace(riverSuffix.ReplaceAllString(title, ""))
}
