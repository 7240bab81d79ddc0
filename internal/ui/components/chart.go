// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Blue),
	)
}

// BarOptions controls how RenderBarChart marks individual bars.
type BarOptions struct {
	// Highlight names bars drawn in their accent color. Empty highlights all.
	Highlight map[string]bool
	// Colors maps a bar name to its accent color.
	Colors map[string]lipgloss.Color
}

// RenderBarChart creates a horizontal bar chart scaled to the chart's axis
// maximum. Bars outside a non-empty highlight set are dimmed.
func RenderBarChart(chart models.Chart, width int, opts BarOptions) string {
	if len(chart.Points) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	maxVal := chart.MaxValue
	if maxVal <= 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, p := range chart.Points {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(p.Name))
	}

	barWidth := width - maxLabelLen - 12 // label, separator and value
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(chart.Points))
	for _, p := range chart.Points {
		paddedLabel := fmt.Sprintf("%*s", maxLabelLen, p.Name)

		barLen := int((p.Value / maxVal) * float64(barWidth))
		barLen = min(max(barLen, 0), barWidth)

		style := lipgloss.NewStyle().Foreground(styles.Primary)
		if c, ok := opts.Colors[p.Name]; ok {
			style = lipgloss.NewStyle().Foreground(c)
		}
		if len(opts.Highlight) > 0 && !opts.Highlight[p.Name] {
			style = styles.DimmedStyle
		}

		bar := style.Render(strings.Repeat("█", barLen))
		valueStr := fmt.Sprintf(" %s", models.FormatValue(p.Value))

		lines = append(lines, paddedLabel+" │"+bar+valueStr)
	}

	axis := fmt.Sprintf("%*s └%s %s", maxLabelLen, "", strings.Repeat("─", barWidth), models.FormatValue(maxVal))
	lines = append(lines, styles.HelpStyle.Render(axis))

	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	span := maxVal - minVal
	if span == 0 {
		span = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int(((val - minVal) / span) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		label := item.Label
		if item.Dimmed {
			colorBox = styles.DimmedStyle.Render("□")
			label = styles.DimmedStyle.Render(label)
		}
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label  string
	Color  lipgloss.Color
	Dimmed bool
}
