package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Help          lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	Pane          lipgloss.Style
	PaneFocused   lipgloss.Style
	PaneTitle     lipgloss.Style
	Cursor        lipgloss.Style
	Selected      lipgloss.Style
	Marker        lipgloss.Style
	Chip          lipgloss.Style
	ChipLabel     lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	QuoteContent  lipgloss.Style
	QuoteAuthor   lipgloss.Style
	SwatchInvalid lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Dim:         lipgloss.NewStyle().Faint(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Pane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("241")),
		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("99")),
		PaneTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Cursor:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")), // green
		Marker:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		Chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("214")).
			Padding(0, 1),
		ChipLabel:     lipgloss.NewStyle().Faint(true),
		Label:         lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Value:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		QuoteContent:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252")),
		QuoteAuthor:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		SwatchInvalid: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
