package render

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the result renderer.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Metric  lipgloss.Style
	Label   lipgloss.Style
	Warn    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).MarginTop(1),
		Metric:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
	}
}
