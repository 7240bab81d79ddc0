package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// LevelBar renders a reading as a gradient bar against its axis maximum.
type LevelBar struct {
	progress progress.Model
}

// NewLevelBar creates a level bar going from green to red as it fills.
func NewLevelBar() LevelBar {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return LevelBar{progress: p}
}

// Percent returns value as a percentage of axisMax, clamped to [0, 100].
func Percent(value, axisMax float64) float64 {
	if axisMax <= 0 {
		return 0
	}
	return min(max(value/axisMax*100, 0), 100)
}

// View renders the bar with a fixed-width label and the formatted reading.
func (l LevelBar) View(label string, value, axisMax float64, unit string, width int) string {
	barWidth := width - 34 // Reserve space for label and value
	if barWidth < 10 {
		barWidth = 10
	}
	l.progress.Width = barWidth

	percent := Percent(value, axisMax)
	bar := l.progress.ViewAs(percent / 100)

	valueStr := styles.GetLevelStyle(percent).
		Width(14).
		Align(lipgloss.Right).
		Render(strings.TrimSpace(models.FormatValue(value) + " " + unit))

	labelStr := styles.ProgressLabelStyle.Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", valueStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = min(max(filled, 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// SimpleLevelBar renders "label [bar] value" without a progress model.
func SimpleLevelBar(label string, value, axisMax float64, width int) string {
	valueStr := models.FormatValue(value)
	barWidth := width - len(label) - len(valueStr) - 5
	if barWidth < 5 {
		barWidth = 5
	}

	percent := Percent(value, axisMax)
	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(percent, barWidth), styles.GetLevelStyle(percent).Render(valueStr))
}

// LoadingBar renders a shimmering placeholder bar for the given frame.
func LoadingBar(width, frame int) string {
	if width < 10 {
		width = 10
	}

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(width))

	var b strings.Builder
	for i := range width {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
