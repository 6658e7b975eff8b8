// This file contains view rendering functions for the TUI.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch {
		case msg.Role == "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		case msg.View == ViewGraph:
			// Graph payloads are visualized in the graph pane, not printed.
			sb.WriteString(m.styles.Muted.Render("  ⬡ graph received · press esc to close the view"))
			sb.WriteString("\n")

		default:
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("graphchat") + "\n")

			// Render markdown with panic recovery
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
			// If glamour panics, return plain text
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

	var content string
	if m.showGraph {
		content = m.styles.Content.Render(m.graphPage.View())
	} else {
		content = m.styles.Content.Render(m.viewport.View())
	}

	if m.err != nil {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderErrorPanel())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		inputArea,
		footer,
	)
}

func (m Model) renderErrorPanel() string {
	if m.err == nil {
		return ""
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.styles.Error.GetForeground()).
		Render("Error") +
		m.styles.Muted.Render("  esc: dismiss")

	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Error.GetForeground()).
		Padding(0, 1).
		Width(m.viewport.Width).
		MaxWidth(m.viewport.Width)

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.err.Error()))
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" graphchat ")
	version := m.styles.Badge.Render("v1.0")

	var status string
	if m.isLoading {
		status = lipgloss.JoinHorizontal(lipgloss.Center,
			m.spinner.View(), " ", m.styles.Badge.Render("Thinking..."))
	} else if m.showGraph {
		status = m.styles.Success.Render("Graph")
	} else {
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	hotkeys := "Enter: send | Tab: focus | Ctrl+C: quit"
	if m.showGraph {
		hotkeys = "Esc: close graph | drag: pan | wheel: zoom | double-click: reset | " + hotkeys
	}
	timestamp := time.Now().Format("15:04")
	help := m.styles.Muted.Render(fmt.Sprintf("%s | %s", timestamp, hotkeys))
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}
