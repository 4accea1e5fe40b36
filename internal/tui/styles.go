package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	codeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11"))
	urlStyle     = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).Padding(1, 2).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("14"))
)

const bannerArt = `
 ███████╗ ██████╗██╗     ██╗██████╗ ███████╗███████╗
 ██╔════╝██╔════╝██║     ██║██╔══██╗██╔════╝██╔════╝
 █████╗  ██║     ██║     ██║██████╔╝███████╗█████╗
 ██╔══╝  ██║     ██║     ██║██╔═══╝ ╚════██║██╔══╝
 ███████╗╚██████╗███████╗██║██║     ███████║███████╗
 ╚══════╝ ╚═════╝╚══════╝╚═╝╚═╝     ╚══════╝╚══════╝`

// Banner returns the boxed program banner.
func Banner() string {
	return bannerStyle.Render(bannerArt[1:] + "\n\n A CLI based AI tool")
}

// Title renders a heading.
func Title(s string) string { return titleStyle.Render(s) }

// Success renders a confirmation line.
func Success(s string) string { return successStyle.Render(s) }

// Error renders an error line.
func Error(s string) string { return errorStyle.Render(s) }

// Warn renders a warning line.
func Warn(s string) string { return warnStyle.Render(s) }

// Muted renders secondary text.
func Muted(s string) string { return mutedStyle.Render(s) }

// URL renders a link.
func URL(s string) string { return urlStyle.Render(s) }

// Code renders the user code in a box.
func Code(s string) string { return codeStyle.Render(s) }
