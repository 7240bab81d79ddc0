package overview

import (
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// DefaultCatalog is the built-in station list used when no catalog file exists.
func DefaultCatalog() models.Catalog {
	discharge := []string{"Yamuna River", "Tons River", "Giri River", "Aglar River"}
	weather := []string{"Dakpathar", "Kalsi", "Vyasi"}
	rain := []string{"Chakrata", "KalsiGate", "Lakhwar", "Mussoorie"}

	c := models.Catalog{
		Dam: models.DamStation{
			ID:          "dam-1",
			Title:       "Vyasi Dam",
			HeadLoss:    0.45,
			IntechLevel: 120.5,
			LevelPier1:  450.2,
			LevelPier6:  448.8,
		},
	}
	for i, n := range discharge {
		c.Discharge = append(c.Discharge, models.DischargeStation{
			ID: models.StationID("ds", i), Title: n, RiverName: models.RiverName(n),
			ChartKey: models.WordInitials(n), Color: models.DischargeColor(i),
		})
	}
	for i, n := range weather {
		c.Weather = append(c.Weather, models.WeatherStation{
			ID: models.StationID("ws", i), Title: n, ChartKey: n, Color: models.WeatherColor(i),
		})
	}
	for i, n := range rain {
		c.RainGauges = append(c.RainGauges, models.RainGaugeStation{
			ID: models.StationID("rg", i), Title: n, ChartKey: models.CamelInitials(n), Color: models.RainGaugeColor(i),
		})
	}
	return c
}
