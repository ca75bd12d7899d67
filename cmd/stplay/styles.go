package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	err     lipgloss.Style
}

// ANSI colours: 1 red, 2 green, 3 yellow, 6 cyan, 7 white, 8 grey
func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{heading: plain, label: plain, value: plain, dim: plain, err: plain}
	}
	return styles{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(2)),
		label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		value:   lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(3)),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}
