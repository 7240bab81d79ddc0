package overview

import (
	"math"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// AxisMax returns the chart axis maximum for values: 20% headroom over the
// largest value, rounded up, and never below 1.
func AxisMax(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	if math.IsInf(m, -1) {
		return 1
	}
	return math.Max(1, math.Ceil(m*1.2))
}

type series[T any] struct {
	key   string
	title string
	value func(T) float64
}

func buildBundle[T any](section string, items []T, name func(T) string, defs []series[T]) models.StatsBundle {
	bundle := models.StatsBundle{SectionTitle: section, Charts: make([]models.Chart, 0, len(defs))}
	for _, def := range defs {
		points := make([]models.ChartPoint, len(items))
		values := make([]float64, len(items))
		for i, it := range items {
			values[i] = def.value(it)
			points[i] = models.ChartPoint{Name: name(it), Value: values[i]}
		}
		bundle.Charts = append(bundle.Charts, models.Chart{
			Key:      def.key,
			Title:    def.title,
			Points:   points,
			MaxValue: AxisMax(values),
		})
	}
	return bundle
}

// DischargeStats builds the discharge charts, one bar per river.
func DischargeStats(stations []models.DischargeStation) models.StatsBundle {
	name := func(s models.DischargeStation) string {
		if s.RiverName != "" {
			return s.RiverName
		}
		return models.RiverName(s.Title)
	}
	return buildBundle("Statistics", stations, name, []series[models.DischargeStation]{
		{"discharge", "Discharge", func(s models.DischargeStation) float64 { return s.Discharge }},
		{"velocity", "Velocity", func(s models.DischargeStation) float64 { return s.Velocity }},
		{"waterLevel", "Water Level", func(s models.DischargeStation) float64 { return s.WaterLevel }},
	})
}

// WeatherStats builds the automatic weather station charts.
func WeatherStats(stations []models.WeatherStation) models.StatsBundle {
	name := func(s models.WeatherStation) string { return s.ChartKey }
	return buildBundle("Statistics", stations, name, []series[models.WeatherStation]{
		{"windSpeed", "Wind Speed", func(s models.WeatherStation) float64 { return s.WindSpeed }},
		{"windDirection", "Wind Direction", func(s models.WeatherStation) float64 { return s.WindDirection }},
		{"temperature", "Temperature", func(s models.WeatherStation) float64 { return s.Temperature }},
		{"relativeHumidity", "Humidity", func(s models.WeatherStation) float64 { return s.RelativeHumidity }},
		{"airPressure", "Air Pressure", func(s models.WeatherStation) float64 { return s.AirPressure }},
		{"solarRadiation", "Solar Radiation", func(s models.WeatherStation) float64 { return s.SolarRadiation }},
		{"rainfallHR", "Rainfall HR", func(s models.WeatherStation) float64 { return s.RainfallHR }},
		{"rainfallDay", "Rainfall Day", func(s models.WeatherStation) float64 { return s.RainfallDay }},
		{"rainfallTotal", "Rainfall Total", func(s models.WeatherStation) float64 { return s.RainfallTotal }},
	})
}

// RainGaugeStats builds the rain gauge charts.
func RainGaugeStats(stations []models.RainGaugeStation) models.StatsBundle {
	name := func(s models.RainGaugeStation) string { return s.ChartKey }
	return buildBundle("Statistics", stations, name, []series[models.RainGaugeStation]{
		{"rainfallHR", "Rainfall - HR (mm)", func(s models.RainGaugeStation) float64 { return s.RainfallHR }},
		{"rainfallTotal", "Rainfall - Total (mm)", func(s models.RainGaugeStation) float64 { return s.RainfallTotal }},
	})
}

// DamStats builds time series charts from recorded dam readings, oldest
// first, plus a comparison of the latest reading.
func DamStats(readings []models.DamStation) models.StatsBundle {
	name := func(d models.DamStation) string { return d.RecordedAt.Format("15:04") }
	bundle := buildBundle("Dam Statistics", readings, name, []series[models.DamStation]{
		{"headLoss", "Head Loss (m)", func(d models.DamStation) float64 { return d.HeadLoss }},
		{"intechLevel", "Intech Level (m)", func(d models.DamStation) float64 { return d.IntechLevel }},
		{"levelPier1", "Level Pier 1 (m)", func(d models.DamStation) float64 { return d.LevelPier1 }},
		{"levelPier6", "Level Pier 6 (m)", func(d models.DamStation) float64 { return d.LevelPier6 }},
	})

	if len(readings) > 0 {
		latest := readings[len(readings)-1]
		points := []models.ChartPoint{
			{Name: "Head Loss", Value: latest.HeadLoss},
			{Name: "Intech Level", Value: latest.IntechLevel},
			{Name: "Level Pier 1", Value: latest.LevelPier1},
			{Name: "Level Pier 6", Value: latest.LevelPier6},
		}
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}
		bundle.Charts = append(bundle.Charts, models.Chart{
			Key:      "combined",
			Title:    "Dam Levels Comparison",
			Points:   points,
			MaxValue: AxisMax(values),
		})
	}
	return bundle
}
