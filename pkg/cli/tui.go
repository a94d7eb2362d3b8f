package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Good    lipgloss.Color // Success color
	Bad     lipgloss.Color // Error color
	Warn    lipgloss.Color // Warning color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#7f5af0"),
	Good:    lipgloss.Color("#2cb67d"),
	Bad:     lipgloss.Color("#ef4565"),
	Warn:    lipgloss.Color("#ffb703"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Success: lipgloss.NewStyle().Foreground(t.Good),
		Error:   lipgloss.NewStyle().Foreground(t.Bad),
		Warning: lipgloss.NewStyle().Foreground(t.Warn),
		Info:    lipgloss.NewStyle().Foreground(t.Primary),
		Dim:     lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// DefaultStyles is the style set used by the package-level print helpers.
var DefaultStyles = NewStyles(DefaultTheme)

// StatusLine renders a single-line status display for live progress, with a
// bold label and dimmed detail fields. Meant to be printed with a leading
// carriage return so successive calls overwrite each other.
func StatusLine(label string, fields ...string) string {
	var b strings.Builder
	b.WriteString(DefaultStyles.Label.Render(label))
	for _, f := range fields {
		b.WriteString("  ")
		b.WriteString(DefaultStyles.Dim.Render(f))
	}
	return b.String()
}

// Banner renders a titled banner for command headers.
func Banner(title, subtitle string) string {
	line := DefaultStyles.Title.Render(title)
	if subtitle != "" {
		line += "  " + DefaultStyles.Dim.Render(subtitle)
	}
	rule := DefaultStyles.Dim.Render(strings.Repeat("─", max(lipgloss.Width(line), 20)))
	return fmt.Sprintf("%s\n%s", line, rule)
}
