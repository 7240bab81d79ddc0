package api

import (
	"context"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// Overview endpoint paths.
const (
	PathSummary           = "/api/external/overview/summary"
	PathDischargeStations = "/api/external/overview/discharge_stations"
	PathAWS               = "/api/external/overview/aws"
	PathRainGauges        = "/api/external/overview/rain_gauges"
	PathDam               = "/api/external/overview/dam"
)

type dischargeDTO struct {
	Name       string  `json:"name"`
	Discharge  float64 `json:"discharge"`
	Velocity   float64 `json:"velocity"`
	WaterLevel float64 `json:"water_level"`
}

type awsDTO struct {
	StationName   string  `json:"station_name"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	RainfallDay   float64 `json:"rainfall_day"`
	RainfallHour  float64 `json:"rainfall_hour"`
	RainfallTotal float64 `json:"rainfall_total"`
}

type rainGaugeDTO struct {
	Name  string  `json:"name"`
	Hour  float64 `json:"hour"`
	Total float64 `json:"total"`
}

type damDTO struct {
	Name        string  `json:"name"`
	HeadLoss    float64 `json:"head_loss"`
	IntechLevel float64 `json:"intech_level"`
	LevelPier1  float64 `json:"level_pier_1"`
	LevelPier6  float64 `json:"level_pier_6"`
}

// Summary fetches the station counts for the overview cards.
func (c *Client) Summary(ctx context.Context) (models.SummaryMetrics, error) {
	var s models.SummaryMetrics
	if _, err := c.getEnvelope(ctx, PathSummary, nil, &s); err != nil {
		return models.SummaryMetrics{}, err
	}
	return s, nil
}

// DischargeStations fetches the latest discharge readings.
func (c *Client) DischargeStations(ctx context.Context) ([]models.DischargeStation, error) {
	var dtos []dischargeDTO
	if _, err := c.getEnvelope(ctx, PathDischargeStations, nil, &dtos); err != nil {
		return nil, err
	}

	stations := make([]models.DischargeStation, len(dtos))
	for i, d := range dtos {
		stations[i] = models.DischargeStation{
			ID:         models.StationID("ds", i),
			Title:      d.Name,
			RiverName:  models.RiverName(d.Name),
			ChartKey:   models.WordInitials(d.Name),
			Color:      models.DischargeColor(i),
			Discharge:  d.Discharge,
			Velocity:   d.Velocity,
			WaterLevel: d.WaterLevel,
		}
	}
	return stations, nil
}

// WeatherStations fetches the latest automatic weather station readings.
// The backend does not report solar radiation, so it is always zero.
func (c *Client) WeatherStations(ctx context.Context) ([]models.WeatherStation, error) {
	var dtos []awsDTO
	if _, err := c.getEnvelope(ctx, PathAWS, nil, &dtos); err != nil {
		return nil, err
	}

	stations := make([]models.WeatherStation, len(dtos))
	for i, d := range dtos {
		stations[i] = models.WeatherStation{
			ID:               models.StationID("ws", i),
			Title:            d.StationName,
			ChartKey:         d.StationName,
			Color:            models.WeatherColor(i),
			WindSpeed:        d.WindSpeed,
			WindDirection:    d.WindDirection,
			Temperature:      d.Temperature,
			RelativeHumidity: d.Humidity,
			AirPressure:      d.Pressure,
			RainfallHR:       d.RainfallHour,
			RainfallDay:      d.RainfallDay,
			RainfallTotal:    d.RainfallTotal,
		}
	}
	return stations, nil
}

// RainGauges fetches the latest rain gauge readings.
func (c *Client) RainGauges(ctx context.Context) ([]models.RainGaugeStation, error) {
	var dtos []rainGaugeDTO
	if _, err := c.getEnvelope(ctx, PathRainGauges, nil, &dtos); err != nil {
		return nil, err
	}

	stations := make([]models.RainGaugeStation, len(dtos))
	for i, d := range dtos {
		stations[i] = models.RainGaugeStation{
			ID:            models.StationID("rg", i),
			Title:         d.Name,
			ChartKey:      models.CamelInitials(d.Name),
			Color:         models.RainGaugeColor(i),
			RainfallHR:    d.Hour,
			RainfallTotal: d.Total,
		}
	}
	return stations, nil
}

// Dam fetches the latest dam reading.
func (c *Client) Dam(ctx context.Context) (models.DamStation, error) {
	var d damDTO
	if _, err := c.getEnvelope(ctx, PathDam, nil, &d); err != nil {
		return models.DamStation{}, err
	}
	title := d.Name
	if title == "" {
		title = "Vyasi Dam"
	}
	return models.DamStation{
		ID:          "dam-1",
		Title:       title,
		HeadLoss:    d.HeadLoss,
		IntechLevel: d.IntechLevel,
		LevelPier1:  d.LevelPier1,
		LevelPier6:  d.LevelPier6,
		RecordedAt:  time.Now(),
	}, nil
}
