package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent    = lipgloss.AdaptiveColor{Light: "#2e5cb8", Dark: "#7aa2f7"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#c0c0c0", Dark: "#3b4261"}
	colorText      = lipgloss.AdaptiveColor{Light: "#1a1b26", Dark: "#c0caf5"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#8890a8", Dark: "#565f89"}
	colorRunning   = lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#7dcfff"}
	colorSuccess   = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#9ece6a"}
	colorError     = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f7768e"}
	colorKey       = lipgloss.AdaptiveColor{Light: "#8a6200", Dark: "#e0af68"}
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle        = lipgloss.NewStyle().Foreground(colorSecondary).Width(16)
	focusedLabelStyle = labelStyle.Foreground(colorAccent).Bold(true)
	logBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Foreground(colorText)
	statusStyle       = lipgloss.NewStyle().Foreground(colorSecondary)
	runningStyle      = lipgloss.NewStyle().Foreground(colorRunning)
	successStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle        = lipgloss.NewStyle().Foreground(colorError)
	keyStyle          = lipgloss.NewStyle().Foreground(colorKey)
)
