package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	navStyle       = lipgloss.NewStyle().Padding(0, 2)
	navActiveStyle = navStyle.Bold(true).Foreground(lipgloss.Color("117")).Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// memberColors maps a member's color tag to a terminal color.
var memberColors = map[string]lipgloss.Color{
	"rose":   lipgloss.Color("211"),
	"blue":   lipgloss.Color("111"),
	"green":  lipgloss.Color("114"),
	"yellow": lipgloss.Color("221"),
	"purple": lipgloss.Color("183"),
}

func memberStyle(color string) lipgloss.Style {
	c, ok := memberColors[color]
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}
