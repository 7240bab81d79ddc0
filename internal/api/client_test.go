package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	mu            sync.Mutex
	requests      []*http.Request
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.RoundTripFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, rt *MockRoundTripper) *Client {
	t.Helper()
	c, err := New("http://backend.test", time.Second,
		WithHTTPClient(&http.Client{Transport: rt}),
		WithSleepFunc(func(context.Context, time.Duration) error { return nil }),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "backend", "://bad"} {
		if _, err := New(raw, time.Second); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestSummary(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != PathSummary {
			return nil, errors.New("unexpected path " + req.URL.Path)
		}
		return jsonResponse(200, `{"status":200,"message":"ok","entity":{"discharge_stations":4,"aws":3,"rain_gauge_stations":12,"dam":1,"vyasi_dam_level":1}}`), nil
	}}
	c := newTestClient(t, rt)

	s, err := c.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if s.DischargeStations != 4 || s.AWS != 3 || s.RainGaugeStations != 12 || s.Dam != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestDischargeStationsMapping(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":200,"entity":[
			{"name":"Yamuna River","discharge":120.456,"velocity":1.2,"water_level":3.45},
			{"name":"Tons River","discharge":80,"velocity":0.9,"water_level":2.1}
		]}`), nil
	}}
	c := newTestClient(t, rt)

	got, err := c.DischargeStations(context.Background())
	if err != nil {
		t.Fatalf("DischargeStations() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d stations", len(got))
	}
	first := got[0]
	if first.ID != "ds-001" || first.RiverName != "Yamuna" || first.ChartKey != "YR" || first.Color != models.ColorBlue {
		t.Errorf("unexpected mapping %+v", first)
	}
	if got[1].ID != "ds-002" || got[1].Color != models.ColorOrange {
		t.Errorf("unexpected second station %+v", got[1])
	}
}

func TestRainGaugesChartKey(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":200,"entity":[{"name":"KalsiGate","hour":1.5,"total":30},{"name":"Chakrata","hour":0,"total":12}]}`), nil
	}}
	c := newTestClient(t, rt)

	got, err := c.RainGauges(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ChartKey != "KG" || got[1].ChartKey != "Ch" {
		t.Errorf("chart keys = %q, %q", got[0].ChartKey, got[1].ChartKey)
	}
}

func TestWeatherStationsSolarRadiationZero(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":200,"entity":[{"station_name":"Dakpathar","temperature":21.5,"humidity":60,"pressure":1002,"wind_speed":3,"wind_direction":180,"rainfall_day":2,"rainfall_hour":0.5,"rainfall_total":40}]}`), nil
	}}
	c := newTestClient(t, rt)

	got, err := c.WeatherStations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ws := got[0]
	if ws.ChartKey != "Dakpathar" || ws.ID != "ws-001" || ws.SolarRadiation != 0 || ws.RelativeHumidity != 60 {
		t.Errorf("unexpected mapping %+v", ws)
	}
}

func TestRetryOn5xx(t *testing.T) {
	calls := 0
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return jsonResponse(503, `{"status":503,"message":"busy"}`), nil
		}
		return jsonResponse(200, `{"status":200,"entity":{"discharge_stations":1}}`), nil
	}}
	c := newTestClient(t, rt)

	if _, err := c.Summary(context.Background()); err != nil {
		t.Fatalf("Summary() failed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(502, `{"status":502,"message":"gateway down"}`), nil
	}}
	c := newTestClient(t, rt)

	_, err := c.Summary(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.StatusCode != 502 || apiErr.Message != "gateway down" {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if len(rt.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(rt.requests))
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, `{"status":404,"message":"not found"}`), nil
	}}
	c := newTestClient(t, rt)

	_, err := c.Dam(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("error = %v, want 404 APIError", err)
	}
	if len(rt.requests) != 1 {
		t.Errorf("requests = %d, want 1", len(rt.requests))
	}
}

func TestRetryBackoffHonoursContext(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(503, `{"status":503,"message":"busy"}`), nil
	}}
	c, err := New("http://backend.test", time.Second,
		WithHTTPClient(&http.Client{Transport: rt}),
		WithRetryPolicy(RetryPolicy{MaxRetries: 3, MinWait: 10 * time.Second, MaxWait: 10 * time.Second}),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.Summary(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Summary() waited %v after cancellation", elapsed)
	}
	if len(rt.requests) != 1 {
		t.Errorf("requests = %d, want 1", len(rt.requests))
	}
}

func TestEnvelopeStatusError(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":500,"message":"db offline","entity":null}`), nil
	}}
	c := newTestClient(t, rt)

	_, err := c.Summary(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "db offline" {
		t.Errorf("error = %v, want envelope APIError", err)
	}
}

func TestFetchReport(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 10, 12, 30, 0, 0, time.Local)

	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":200,"total":250,"entity":[
			{"timestamp":"2026-03-10T00:00:00","station":"Yamuna River","discharge":12.3456,"velocity":1,"water_level":2.5},
			{"timestamp":"2026-03-10T00:15:00","station":"Yamuna River","discharge":12,"velocity":1.1,"water_level":2.55}
		]}`), nil
	}}
	c := newTestClient(t, rt)

	res, err := c.FetchReport(context.Background(), models.ReportQuery{
		Kind:      models.ReportDischarge,
		Selection: models.StationSelection{"Yamuna River", "Tons River"},
		Window:    models.TimeWindow{Start: start, End: end},
		Page:      3,
		PageSize:  100,
	})
	if err != nil {
		t.Fatalf("FetchReport() failed: %v", err)
	}

	req := rt.requests[0]
	if req.URL.Path != "/api/external/discharge-stations" {
		t.Errorf("path = %s", req.URL.Path)
	}
	q := req.URL.Query()
	if q.Get("start_time") != "2026-03-10T00:00:00" || q.Get("end_time") != "2026-03-10T12:30:00" {
		t.Errorf("window params = %s / %s", q.Get("start_time"), q.Get("end_time"))
	}
	if q.Get("page") != "3" || q.Get("page_size") != "100" {
		t.Errorf("paging params = %s / %s", q.Get("page"), q.Get("page_size"))
	}
	if st := q["stations"]; len(st) != 2 || st[0] != "Yamuna River" {
		t.Errorf("stations params = %v", st)
	}

	if res.Total != 250 || len(res.Rows) != 2 {
		t.Fatalf("result total=%d rows=%d", res.Total, len(res.Rows))
	}
	row := res.Rows[0]
	if row["sno"] != "201" || row["river"] != "Yamuna River" || row["discharge"] != "12.35" {
		t.Errorf("unexpected row %v", row)
	}
	if res.Rows[1]["sno"] != "202" {
		t.Errorf("second sno = %s", res.Rows[1]["sno"])
	}
}

func TestFetchReport_AllStationsOmitsParam(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":200,"entity":[{"timestamp":"t","station":"Kalsi","hour":1,"total":2}]}`), nil
	}}
	c := newTestClient(t, rt)

	res, err := c.FetchReport(context.Background(), models.ReportQuery{Kind: models.ReportRainGauge, Page: 1, PageSize: 100})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.requests[0].URL.Query()["stations"]; ok {
		t.Error("stations param sent for all-stations query")
	}
	// Without a total the row count is used.
	if res.Total != 1 || res.Rows[0]["rainfallHour"] != "1.00" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestFetchReport_OversizedPageTruncated(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":200,"total":40,"entity":[
			{"timestamp":"t1","station":"Kalsi","hour":1,"total":2},
			{"timestamp":"t2","station":"Kalsi","hour":1,"total":3},
			{"timestamp":"t3","station":"Kalsi","hour":1,"total":4}
		]}`), nil
	}}
	c := newTestClient(t, rt)

	res, err := c.FetchReport(context.Background(), models.ReportQuery{Kind: models.ReportRainGauge, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 2 || res.Total != 40 {
		t.Errorf("rows = %d total = %d, want 2 rows of 40", len(res.Rows), res.Total)
	}
	if res.Rows[1]["timestamp"] != "t2" {
		t.Errorf("kept rows = %v", res.Rows)
	}
}

func TestFetchReport_LocalKindRejected(t *testing.T) {
	c := newTestClient(t, &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}})
	if _, err := c.FetchReport(context.Background(), models.ReportQuery{Kind: models.ReportDam}); err == nil {
		t.Error("dam report should not be fetched from the backend")
	}
}

func TestDownloadExport(t *testing.T) {
	rt := &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/external/aws-stations/export/excel" {
			return jsonResponse(404, `{}`), nil
		}
		return &http.Response{StatusCode: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader("PK-binary"))}, nil
	}}
	c := newTestClient(t, rt)

	var buf bytes.Buffer
	n, err := c.DownloadExport(context.Background(), models.ExportRequest{Kind: models.ReportAWS, Format: models.FormatSpreadsheet}, &buf)
	if err != nil {
		t.Fatalf("DownloadExport() failed: %v", err)
	}
	if n != 9 || buf.String() != "PK-binary" {
		t.Errorf("n=%d body=%q", n, buf.String())
	}
}
