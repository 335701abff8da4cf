package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("you") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n")

		case "error":
			sb.WriteString(m.styles.Error.Render("error: " + msg.Content))
			sb.WriteString("\n")

		default: // "assistant"
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, fall back to plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	chatView := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" r9c ")
	session := m.styles.Badge.Render(m.sessionID)

	count := m.runner.store.Count()
	limit := m.runner.store.Limits().MaxMembranes
	status := m.styles.Muted.Render(fmt.Sprintf(" %d/%d membranes", count, limit))

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		session,
		" ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	timestamp := time.Now().Format("15:04")
	help := m.styles.Muted.Render(fmt.Sprintf(
		"%s | Up/Down: history | PgUp/PgDn: scroll | help | quit", timestamp))
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}
