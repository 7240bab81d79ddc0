package models

// ChartPoint is one bar of a statistics chart.
type ChartPoint struct {
	Name  string
	Value float64
}

// Chart is a bar chart series with its axis maximum.
type Chart struct {
	Key      string
	Title    string
	Points   []ChartPoint
	MaxValue float64
}

// StatsBundle groups the charts derived for one station class.
type StatsBundle struct {
	SectionTitle string
	Charts       []Chart
}

// Chart returns the chart with the given key.
func (b StatsBundle) Chart(key string) (Chart, bool) {
	for _, c := range b.Charts {
		if c.Key == key {
			return c, true
		}
	}
	return Chart{}, false
}
