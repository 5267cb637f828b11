// Package style holds the lipgloss styles used for CLI output.
package style

import "github.com/charmbracelet/lipgloss"

var (
	// Colors meet WCAG AA contrast on dark backgrounds.
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	CyanColor      = lipgloss.Color("#22D3EE")

	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Field     = lipgloss.NewStyle().Foreground(CyanColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)
)

// Status symbols used by doctor and other checklists.
const (
	CheckMark = "✓"
	CrossMark = "✗"
	WarnMark  = "!"
)

// Ok renders a passed check line.
func Ok(msg string) string {
	return Secondary.Render(CheckMark) + " " + msg
}

// Fail renders a failed check line.
func Fail(msg string) string {
	return Error.Render(CrossMark) + " " + msg
}

// Warn renders a warning line.
func Warn(msg string) string {
	return Warning.Render(WarnMark) + " " + msg
}

// Level returns the style for a log level name.
func Level(level string) lipgloss.Style {
	switch level {
	case "DEBUG":
		return Muted
	case "INFO":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	case "WARN":
		return Warning
	case "ERROR":
		return Error
	default:
		return lipgloss.NewStyle()
	}
}
