package tui

import (
	"github.com/calumari/jform/internal/highlight"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	muted       = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	accent      = lipgloss.AdaptiveColor{Light: "#0078D4", Dark: "#64B5F6"}
	destructive = lipgloss.Color("#E57373")
	success     = lipgloss.Color("#81C784")
)

type styles struct {
	header     lipgloss.Style
	info       lipgloss.Style
	dirty      lipgloss.Style
	status     lipgloss.Style
	err        lipgloss.Style
	label      lipgloss.Style
	focused    lipgloss.Style
	empty      lipgloss.Style
	pane       lipgloss.Style
	activePane lipgloss.Style
	invalid    lipgloss.Style
	valid      lipgloss.Style
	colHeader  lipgloss.Style
	cell       lipgloss.Style
	selected   lipgloss.Style
	dialog     lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		info:   lipgloss.NewStyle().Foreground(muted),
		dirty:  lipgloss.NewStyle().Foreground(destructive).Bold(true),
		status: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		err:    lipgloss.NewStyle().Foreground(destructive).Padding(0, 1),
		label:  lipgloss.NewStyle().Bold(true),
		focused: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(accent),
		empty: lipgloss.NewStyle().Foreground(muted).Italic(true),
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted),
		activePane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		invalid:   lipgloss.NewStyle().Foreground(destructive).Bold(true),
		valid:     lipgloss.NewStyle().Foreground(success),
		colHeader: lipgloss.NewStyle().Bold(true).Foreground(accent),
		cell:      lipgloss.NewStyle(),
		selected:  lipgloss.NewStyle().Foreground(success).Bold(true),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}

// section renders a nested object header in the colour of its depth.
func (s styles) section(depth int) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(highlight.DepthColor(depth))
}

// truncate shortens s to width display cells, ending in an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width < 2 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}

// pad right-pads s with spaces to width display cells.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}
