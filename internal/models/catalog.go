package models

// Catalog is the static station list used when the backend has never
// answered for a source.
type Catalog struct {
	Discharge  []DischargeStation `json:"discharge"`
	Weather    []WeatherStation   `json:"weather"`
	RainGauges []RainGaugeStation `json:"rain_gauges"`
	Dam        DamStation         `json:"dam"`
}

// StationRefs returns selector entries for a report kind. Report selectors
// use the station name as id since the backend filters by name.
func (c Catalog) StationRefs(kind ReportKind) []StationRef {
	var refs []StationRef
	switch kind {
	case ReportDischarge:
		for _, s := range c.Discharge {
			refs = append(refs, StationRef{ID: s.Title, Title: s.Title, ChartKey: WordInitials(s.Title)})
		}
	case ReportAWS:
		for _, s := range c.Weather {
			refs = append(refs, StationRef{ID: s.Title, Title: s.Title, ChartKey: WordInitials(s.Title)})
		}
	case ReportRainGauge:
		for _, s := range c.RainGauges {
			refs = append(refs, StationRef{ID: s.Title, Title: s.Title, ChartKey: CamelInitials(s.Title)})
		}
	case ReportDam:
		if c.Dam.Title != "" {
			refs = append(refs, StationRef{ID: c.Dam.Title, Title: c.Dam.Title, ChartKey: WordInitials(c.Dam.Title)})
		}
	}
	return refs
}
