// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Defines colors, borders, text styles and the huh form theme

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Accent = lipgloss.Color("#8B5CF6")
	Info   = lipgloss.Color("#3B82F6")
	Pink   = lipgloss.Color("#EC4899")

	// Confetti is cycled through by the like celebration
	Confetti = []lipgloss.Color{Primary, Secondary, Warning, Danger, Info, Pink}

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Session badge states
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// ErrorBanner frames a dismissible error message
	ErrorBanner = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Danger).
			Foreground(Danger).
			Padding(0, 1)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Selected marks the row under the cursor
	Selected = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// KeyStyle highlights shortcut keys in the footer and help lines
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)
