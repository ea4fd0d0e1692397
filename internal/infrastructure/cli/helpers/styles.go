package helpers

import "github.com/charmbracelet/lipgloss"

// Terminal styles shared by the REPL and the subcommands.
var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	UserStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	AssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	FilteredStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("9"))
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	WarnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)
