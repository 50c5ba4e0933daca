package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles derived from a Theme.
type Styles struct {
	Canvas        lipgloss.Style
	Stats         lipgloss.Style
	Header        lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Graph         lipgloss.Style
	Help          lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	Error         lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Canvas: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Padding(1, 2),
		Stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(45),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			MarginBottom(1),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted).
			Width(12),
		Value: lipgloss.NewStyle().
			Foreground(t.Text),
		Graph: lipgloss.NewStyle().
			Foreground(t.Accent).
			Padding(1, 0),
		Help: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
		StatusRunning: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),
		StatusPaused: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Warning),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error),
		SparkHigh: lipgloss.NewStyle().Foreground(t.Success),
		SparkMid:  lipgloss.NewStyle().Foreground(t.Warning),
		SparkLow:  lipgloss.NewStyle().Foreground(t.Error),
	}
}

// ProgressBar renders a bar filled to percent of width.
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.8 {
		return s.SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return s.SparkMid.Render(bar)
	}
	return s.SparkLow.Render(bar)
}

// Sparkline renders the last width values, scaled between their min and max.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(s.SparkMid.Render(c))
		default:
			result.WriteString(s.SparkLow.Render(c))
		}
	}
	return result.String()
}
