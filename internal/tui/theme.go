package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the notes client, in ANSI 256-color codes.
type Theme struct {
	NormalText         lipgloss.Color
	FaintText          lipgloss.Color
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
	HeaderForeground   lipgloss.Color
	BorderColor        lipgloss.Color
	ErrorForeground    lipgloss.Color
	SavedForeground    lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	SelectedBackground: lipgloss.Color("24"),
	SelectedForeground: lipgloss.Color("255"),
	HeaderForeground:   lipgloss.Color("75"),
	BorderColor:        lipgloss.Color("238"),
	ErrorForeground:    lipgloss.Color("203"),
	SavedForeground:    lipgloss.Color("114"),
}

type styles struct {
	header   lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	faint    lipgloss.Style
	pane     lipgloss.Style
	errLine  lipgloss.Style
	saved    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground),
		item:     lipgloss.NewStyle().Foreground(theme.NormalText),
		selected: lipgloss.NewStyle().Foreground(theme.SelectedForeground).Background(theme.SelectedBackground),
		faint:    lipgloss.NewStyle().Foreground(theme.FaintText),
		pane:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.BorderColor).Padding(0, 1),
		errLine:  lipgloss.NewStyle().Bold(true).Foreground(theme.ErrorForeground),
		saved:    lipgloss.NewStyle().Foreground(theme.SavedForeground),
		help:     lipgloss.NewStyle().Foreground(theme.FaintText),
	}
}
