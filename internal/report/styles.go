// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#2563EB")
	subtleColor  = lipgloss.Color("#6B7280")
	warningColor = lipgloss.Color("#D97706")
	successColor = lipgloss.Color("#059669")
	errorColor   = lipgloss.Color("#DC2626")
)

// Styles holds the lipgloss styles used by the terminal renderer.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Absent lipgloss.Style
	Subtle lipgloss.Style
	Warn   lipgloss.Style
	Border lipgloss.Style
	Tiers  map[string]lipgloss.Style
}

// NewStyles returns the default styles.
func NewStyles() *Styles {
	return &Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(primaryColor),
		Header: lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Absent: lipgloss.NewStyle().Padding(0, 1).Foreground(subtleColor),
		Subtle: lipgloss.NewStyle().Foreground(subtleColor),
		Warn:   lipgloss.NewStyle().Foreground(warningColor),
		Border: lipgloss.NewStyle().Foreground(subtleColor),
		Tiers: map[string]lipgloss.Style{
			"EnInicio":  lipgloss.NewStyle().Padding(0, 1).Foreground(errorColor),
			"EnProceso": lipgloss.NewStyle().Padding(0, 1).Foreground(warningColor),
			"Previsto":  lipgloss.NewStyle().Padding(0, 1).Foreground(primaryColor),
			"Destacado": lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(successColor),
		},
	}
}
