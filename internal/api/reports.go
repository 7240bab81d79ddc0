package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

type dischargeRowDTO struct {
	Timestamp  string  `json:"timestamp"`
	Station    string  `json:"station"`
	Discharge  float64 `json:"discharge"`
	Velocity   float64 `json:"velocity"`
	WaterLevel float64 `json:"water_level"`
}

type awsRowDTO struct {
	Timestamp     string  `json:"timestamp"`
	Station       string  `json:"station"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	RainfallDay   float64 `json:"rainfall_day"`
	RainfallHour  float64 `json:"rainfall_hour"`
	RainfallTotal float64 `json:"rainfall_total"`
}

type rainGaugeRowDTO struct {
	Timestamp string  `json:"timestamp"`
	Station   string  `json:"station"`
	Hour      float64 `json:"hour"`
	Total     float64 `json:"total"`
}

func windowParams(sel models.StationSelection, w models.TimeWindow) url.Values {
	q := url.Values{}
	q.Set("start_time", w.Start.Format(models.TimestampLayout))
	q.Set("end_time", w.End.Format(models.TimestampLayout))
	for _, s := range sel {
		q.Add("stations", s)
	}
	return q
}

// FetchReport fetches one page of a backend report.
func (c *Client) FetchReport(ctx context.Context, rq models.ReportQuery) (models.ReportResult, error) {
	cfg, ok := models.ConfigFor(rq.Kind)
	if !ok || !cfg.IsRemote() {
		return models.ReportResult{}, fmt.Errorf("report %q is not served by the backend", rq.Kind)
	}
	pageSize := rq.PageSize
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	page := max(rq.Page, 1)

	q := windowParams(rq.Selection, rq.Window)
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	sno := func(i int) string { return strconv.Itoa((page-1)*pageSize + i + 1) }

	var rows []models.Row
	var total *int
	var err error

	switch rq.Kind {
	case models.ReportDischarge:
		var dtos []dischargeRowDTO
		total, err = c.getEnvelope(ctx, cfg.Endpoint, q, &dtos)
		for i, d := range dtos {
			rows = append(rows, models.Row{
				"sno":        sno(i),
				"timestamp":  d.Timestamp,
				"river":      d.Station,
				"discharge":  models.FormatValue(d.Discharge),
				"velocity":   models.FormatValue(d.Velocity),
				"waterLevel": models.FormatValue(d.WaterLevel),
			})
		}
	case models.ReportAWS:
		var dtos []awsRowDTO
		total, err = c.getEnvelope(ctx, cfg.Endpoint, q, &dtos)
		for i, d := range dtos {
			rows = append(rows, models.Row{
				"sno":           sno(i),
				"timestamp":     d.Timestamp,
				"station":       d.Station,
				"temperature":   models.FormatValue(d.Temperature),
				"humidity":      models.FormatValue(d.Humidity),
				"pressure":      models.FormatValue(d.Pressure),
				"windSpeed":     models.FormatValue(d.WindSpeed),
				"windDirection": models.FormatValue(d.WindDirection),
				"rainfallDay":   models.FormatValue(d.RainfallDay),
				"rainfallHour":  models.FormatValue(d.RainfallHour),
				"rainfallTotal": models.FormatValue(d.RainfallTotal),
			})
		}
	case models.ReportRainGauge:
		var dtos []rainGaugeRowDTO
		total, err = c.getEnvelope(ctx, cfg.Endpoint, q, &dtos)
		for i, d := range dtos {
			rows = append(rows, models.Row{
				"sno":           sno(i),
				"timestamp":     d.Timestamp,
				"station":       d.Station,
				"rainfallHour":  models.FormatValue(d.Hour),
				"rainfallTotal": models.FormatValue(d.Total),
			})
		}
	}
	if err != nil {
		return models.ReportResult{}, fmt.Errorf("fetch %s report page %d: %w", rq.Kind, page, err)
	}

	res := models.ReportResult{Rows: rows, Total: len(rows)}
	if total != nil {
		res.Total = *total
	}
	if len(rows) > pageSize {
		logger.Warn("backend returned an oversized report page",
			"kind", rq.Kind, "page", page, "rows", len(rows), "page_size", pageSize)
		res.Rows = rows[:pageSize]
	}
	return res, nil
}

// DownloadExport streams a backend-rendered export file into w and returns
// the number of bytes written.
func (c *Client) DownloadExport(ctx context.Context, req models.ExportRequest, w io.Writer) (int64, error) {
	cfg, ok := models.ConfigFor(req.Kind)
	if !ok || cfg.ExportEndpoint == "" {
		return 0, fmt.Errorf("report %q has no backend export", req.Kind)
	}

	path := cfg.ExportEndpoint + "/" + string(req.Format)
	resp, err := c.get(ctx, path, windowParams(req.Selection, req.Window))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, decodeError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read export body: %w", err)
	}
	return n, nil
}
