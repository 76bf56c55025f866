package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// Bar is a horizontal text bar chart row: a fixed-width label, a bar
// proportional to Value/Max and a trailing caption.
type Bar struct {
	Label      string
	LabelWidth int
	Value      int
	Max        int
	Caption    string
	Color      color.Color
	Width      int
}

// Fraction returns Value/Max clamped to [0, 1].
func (b Bar) Fraction() float64 {
	if b.Max <= 0 || b.Value <= 0 {
		return 0
	}
	return min(float64(b.Value)/float64(b.Max), 1)
}

// View renders the bar.
func (b Bar) View() string {
	label := b.Label
	if b.LabelWidth > 0 {
		label = fmt.Sprintf("%-*s", b.LabelWidth, truncateRunes(label, b.LabelWidth))
	}
	result := lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "

	caption := b.Caption
	if caption == "" {
		caption = fmt.Sprintf("%d", b.Value)
	}
	caption = "  " + caption

	barWidth := max(b.Width-lipgloss.Width(result)-lipgloss.Width(caption), 4)

	filled := int(float64(barWidth) * b.Fraction())
	empty := barWidth - filled

	fill := b.Color
	if fill == nil {
		fill = theme.Secondary
	}

	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(caption)
	return result
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
