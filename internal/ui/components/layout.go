package components

import "github.com/charmbracelet/lipgloss"

// WrapHorizontal lays blocks out left to right, starting a new row when the
// next block would overflow width.
func WrapHorizontal(blocks []string, width int) string {
	var rows, current []string
	used := 0
	for _, b := range blocks {
		w := lipgloss.Width(b)
		if used > 0 && used+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current, used = nil, 0
		}
		current = append(current, b)
		used += w
	}
	if len(current) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
