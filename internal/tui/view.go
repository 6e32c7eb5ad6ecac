package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	state := activeTabStyle.Render("ready")
	if m.busy {
		state = inactiveTabStyle.Render("running")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("socktest"), " ", state)
	if m.version != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", verboseStyle.Render(m.version))
	}

	body := baseStyle.
		Width(max(m.width-2, 0)).
		Padding(0, 1).
		Render(m.viewport.View())

	status := "enter: run • ctrl+c: interrupt • ctrl+d: quit • pgup/pgdown: scroll"
	if m.statusMsg != "" {
		status = errorStyle.Render(m.statusMsg)
	}
	footer := footerStyle.Width(max(m.width-2, 0)).Render(status)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.input.View(), footer)
}
