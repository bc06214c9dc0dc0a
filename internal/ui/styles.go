// Package ui provides consistent styling for the kbmode CLI
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ferasOS/calabash-ios/internal/keyboard"
)

// Color palette - consistent across the application
var (
	ColorPrimary = lipgloss.Color("39")  // Bright blue
	ColorSuccess = lipgloss.Color("82")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorInfo    = lipgloss.Color("86")  // Cyan
	ColorText    = lipgloss.Color("252") // Light gray
	ColorSubtle  = lipgloss.Color("241") // Medium gray

	// Keyboard mode colors
	ColorDocked   = ColorSuccess
	ColorUndocked = ColorInfo
	ColorSplit    = ColorWarning
	ColorUnknown  = ColorSubtle
)

var (
	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Width(14)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)
)

// Status icons
var (
	IconSuccess = "✓"
	IconError   = "✗"
	IconMode    = "⌨"
)

// ModeStyle returns the style used to render a keyboard mode
func ModeStyle(m keyboard.Mode) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch m {
	case keyboard.ModeDocked:
		return base.Foreground(ColorDocked)
	case keyboard.ModeUndocked:
		return base.Foreground(ColorUndocked)
	case keyboard.ModeSplit:
		return base.Foreground(ColorSplit)
	case keyboard.ModeUnknown:
		return base.Foreground(ColorUnknown)
	default:
		return base.Foreground(ColorUnknown)
	}
}

// FormatMode renders a keyboard mode with its icon
func FormatMode(m keyboard.Mode) string {
	return IconMode + " " + ModeStyle(m).Render(m.String())
}

// FormatField renders an aligned key/value line
func FormatField(key string, value interface{}) string {
	return "  " + KeyStyle.Render(key) + " " + fmt.Sprint(value)
}

// FormatResult renders a success or failure line
func FormatResult(success bool, message string) string {
	if success {
		return SuccessStyle.Render(IconSuccess) + " " + message
	}
	return ErrorStyle.Render(IconError) + " " + message
}

// FormatHeader renders a section title followed by a separator
func FormatHeader(title string) string {
	return HeaderStyle.Render(title) + "\n" + CreateSeparator(40, "─")
}

// CreateSeparator creates a horizontal line separator
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 40
	}
	if char == "" {
		char = "─"
	}
	return SubtleStyle.Render(strings.Repeat(char, width))
}
