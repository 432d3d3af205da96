// Package tui provides the interactive chat interface.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"llamachat/internal/render"
)

// styles holds every lipgloss style the chat model renders with. All
// styles derive from one TUI theme resolved at startup.
type styles struct {
	theme render.TUITheme

	// Header
	header   lipgloss.Style
	title    lipgloss.Style
	subtitle lipgloss.Style
	hint     lipgloss.Style

	// Transcript
	messagesArea   lipgloss.Style
	userBubble     lipgloss.Style
	userLabel      lipgloss.Style
	assistantLabel lipgloss.Style

	// Input
	inputPanel lipgloss.Style
	inputLabel lipgloss.Style
	loading    lipgloss.Style

	// Status bar
	statusBar  lipgloss.Style
	statusKey  lipgloss.Style
	statusDesc lipgloss.Style
	statsLine  lipgloss.Style
	usageLine  lipgloss.Style
	notice     lipgloss.Style

	// Alert panel
	alertPanel lipgloss.Style
	alertText  lipgloss.Style
	alertHint  lipgloss.Style

	// Welcome screen
	welcomeIcon  lipgloss.Style
	welcomeTitle lipgloss.Style
	welcomeText  lipgloss.Style
}

// newStyles builds the style set for a theme.
func newStyles(theme render.TUITheme) styles {
	return styles{
		theme: theme,

		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2).
			MarginBottom(1),

		title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		subtitle: lipgloss.NewStyle().
			Foreground(theme.TextDim),

		hint: lipgloss.NewStyle().
			Foreground(theme.TextMute).
			Italic(true),

		messagesArea: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1),

		userBubble: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Secondary).
			Padding(0, 1).
			MarginLeft(4),

		userLabel: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			MarginLeft(4),

		assistantLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1).
			MarginTop(1),

		inputLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginRight(1),

		loading: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		statusBar: lipgloss.NewStyle().
			Foreground(theme.TextMute).
			MarginTop(1),

		statusKey: lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Bold(true),

		statusDesc: lipgloss.NewStyle().
			Foreground(theme.TextMute),

		statsLine: lipgloss.NewStyle().
			Foreground(theme.Warning),

		usageLine: lipgloss.NewStyle().
			Foreground(theme.TextDim),

		notice: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Italic(true),

		alertPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1).
			MarginTop(1),

		alertText: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		alertHint: lipgloss.NewStyle().
			Foreground(theme.TextDim),

		welcomeIcon: lipgloss.NewStyle().
			Foreground(theme.Accent).
			MarginBottom(1),

		welcomeTitle: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		welcomeText: lipgloss.NewStyle().
			Foreground(theme.TextDim),
	}
}
