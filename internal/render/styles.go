package render

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle heads the frame.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// LegendStyle dims the symbol key under the board.
	LegendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	FoundStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	NotFoundStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	CancelledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// StatusBarStyle frames the step counter in the interactive viewer.
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)
