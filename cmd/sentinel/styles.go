package main

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#5FAFD7")
	colorOK      = lipgloss.Color("#5FD787")
	colorWarning = lipgloss.Color("#F4D03F")
	colorDanger  = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

var styles = struct {
	title   lipgloss.Style
	header  lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	muted   lipgloss.Style
	errText lipgloss.Style
	panel   lipgloss.Style
	flagged lipgloss.Style
}{
	title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	header:  lipgloss.NewStyle().Bold(true).Underline(true),
	ok:      lipgloss.NewStyle().Foreground(colorOK),
	warn:    lipgloss.NewStyle().Foreground(colorWarning),
	danger:  lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
	muted:   lipgloss.NewStyle().Foreground(colorMuted),
	errText: lipgloss.NewStyle().Foreground(colorDanger),
	panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
	flagged: lipgloss.NewStyle().Foreground(colorDanger),
}

// priorityStyle maps a priority label to its display style.
func priorityStyle(priority string) lipgloss.Style {
	switch priority {
	case "CRITICAL":
		return styles.danger
	case "HIGH":
		return styles.warn
	default:
		return styles.ok
	}
}
