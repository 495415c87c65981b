// Package output renders human-facing command output with lipgloss.
package output

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the CLI.
type Theme struct {
	Heading string
	Label   string
	Value   string
	Muted   string
	Success string
	Warning string
	Danger  string

	// TipPalette is cycled by Tip.
	TipPalette []string
}

// DefaultTheme is the wow color theme.
var DefaultTheme = Theme{
	Heading: "#87D787",
	Label:   "#D7D75F",
	Value:   "#5FD7FF",
	Muted:   "#808080",
	Success: "#5FD75F",
	Warning: "#FFAF5F",
	Danger:  "#FF5F5F",
	TipPalette: []string{
		"#F67280",
		"#355C7D",
		"#6C5B7B",
		"#F08A5D",
		"#FCBAD3",
		"#E0F9B5",
	},
}

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	Heading lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
}

// Styles returns styles bound to renderer r.
func (t Theme) Styles(r *lipgloss.Renderer) Styles {
	return Styles{
		Heading: r.NewStyle().Foreground(lipgloss.Color(t.Heading)).Bold(true),
		Label:   r.NewStyle().Foreground(lipgloss.Color(t.Label)),
		Value:   r.NewStyle().Foreground(lipgloss.Color(t.Value)),
		Muted:   r.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Success: r.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Danger:  r.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
	}
}
