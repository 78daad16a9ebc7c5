package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNormal   = lipgloss.NewStyle().Foreground(colorWhite)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
	styleStatus   = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning  = lipgloss.NewStyle().Foreground(colorYellow)

	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleHeaderFocus = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1)
	styleCell        = lipgloss.NewStyle().Padding(0, 1)
	styleCursorRow   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1)
	styleBorder      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconBranch = "▸"
	iconCrumb  = " › "
	iconAsc    = " ▲"
	iconDesc   = " ▼"
)
