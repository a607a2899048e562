package main

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#FF8C00")
	faint  = lipgloss.Color("#808080")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Width(24)

	pathStyle = lipgloss.NewStyle().
			Foreground(faint)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00C000"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)
