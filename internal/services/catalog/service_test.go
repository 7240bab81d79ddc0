package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

func testFallback() models.Catalog {
	return models.Catalog{
		Discharge: []models.DischargeStation{{Title: "Yamuna River"}},
		Weather:   []models.WeatherStation{{Title: "Kalsi"}},
		Dam:       models.DamStation{Title: "Vyasi Dam"},
	}
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stations.json")
	svc, err := New(path, testFallback())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc, path
}

func waitFor(t *testing.T, svc *Service, want EventType) {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == want {
				return
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event %d", want)
		}
	}
}

func TestNew_WritesFallback(t *testing.T) {
	svc, path := newTestService(t)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("catalog file was not created: %v", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("catalog file is not valid JSON: %v", err)
	}
	if f.Version != 1 || len(f.Discharge) != 1 {
		t.Errorf("unexpected file contents %+v", f)
	}

	if got := svc.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New("", testFallback()); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	if err := os.WriteFile(path, []byte("{invalid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path, testFallback()); err == nil {
		t.Error("New() should fail on a broken catalog file")
	}
}

func TestNormalize_DerivesFields(t *testing.T) {
	svc, _ := newTestService(t)
	c := svc.Catalog()

	ds := c.Discharge[0]
	if ds.ID != "ds-001" || ds.RiverName != "Yamuna" || ds.ChartKey != "YR" || ds.Color == "" {
		t.Errorf("discharge station not normalized: %+v", ds)
	}
	if c.Weather[0].ChartKey != "Kalsi" {
		t.Errorf("weather chart key = %q, want Kalsi", c.Weather[0].ChartKey)
	}
	if c.Dam.ID != "dam-1" {
		t.Errorf("dam id = %q", c.Dam.ID)
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	svc, _ := newTestService(t)

	c := svc.Catalog()
	c.Discharge[0].Title = "changed"

	if svc.Catalog().Discharge[0].Title != "Yamuna River" {
		t.Error("Catalog() must not expose internal slices")
	}
}

func TestParse_RejectsUntitled(t *testing.T) {
	tests := []string{
		`{"discharge":[{"id":"x"}]}`,
		`{"weather":[{"title":""}]}`,
		`{"rain_gauges":[{}]}`,
	}
	for _, data := range tests {
		if _, err := parse([]byte(data)); err == nil {
			t.Errorf("parse(%s) should fail", data)
		}
	}
}

func TestWatchFileChange(t *testing.T) {
	svc, path := newTestService(t)
	waitFor(t, svc, EventCatalogLoaded)

	content := []byte(`{
		"version": 1,
		"rain_gauges": [{"title": "Chakrata"}, {"title": "KalsiGate"}]
	}`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	waitFor(t, svc, EventCatalogChanged)

	c := svc.Catalog()
	if len(c.RainGauges) != 2 || len(c.Discharge) != 0 {
		t.Fatalf("catalog not reloaded: %+v", c)
	}
	if c.RainGauges[1].ChartKey != "KG" {
		t.Errorf("chart key = %q, want KG", c.RainGauges[1].ChartKey)
	}
}

func TestHandleFileChange_KeepsPreviousOnError(t *testing.T) {
	svc, path := newTestService(t)
	waitFor(t, svc, EventCatalogLoaded)

	if err := os.WriteFile(path, []byte("{invalid"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	waitFor(t, svc, EventError)

	if len(svc.Catalog().Discharge) != 1 {
		t.Error("broken file should keep the previous catalog")
	}
}

func TestSendEvent_Full(t *testing.T) {
	svc, _ := newTestService(t)

	for range 110 {
		svc.sendEvent(Event{Type: EventCatalogChanged})
	}

	if len(svc.Events()) != 100 {
		t.Errorf("expected 100 events, got %d", len(svc.Events()))
	}
}
