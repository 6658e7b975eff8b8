package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"graphchat/cmd/graphchat/ui"
	"graphchat/internal/client"
)

// Update routes messages between the chat surface and the graph pane.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		// The graph pane owns the mouse while mounted.
		if m.showGraph {
			var cmd tea.Cmd
			m.graphPage, cmd = m.graphPage.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ui.FrameMsg:
		var cmd tea.Cmd
		m.graphPage, cmd = m.graphPage.Update(msg)
		return m, cmd

	case replyMsg:
		return m.handleReply(client.Reply(msg))

	case GraphPayloadMsg:
		turn := Message{
			ID:        uuid.NewString(),
			Role:      "tool",
			View:      ViewGraph,
			Content:   string(msg.Data),
			Timestamp: time.Now(),
		}
		m.history = append(m.history, turn)
		m.persist(turn)
		m.updateViewport()
		return m, m.mountGraph(turn)

	case errorMsg:
		m.isLoading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.viewport.Width = msg.Width - 4
	m.viewport.Height = msg.Height - 10
	if m.viewport.Height < 5 {
		m.viewport.Height = 5
	}
	m.textarea.SetWidth(msg.Width - 6)
	m.graphPage.SetSize(msg.Width, m.graphHeight())

	m.ready = true
	m.updateViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d":
		m.unmountGraph()
		return m, tea.Quit

	case "esc":
		if m.showGraph {
			m.unmountGraph()
			return m, nil
		}
		m.err = nil
		return m, nil

	case "tab":
		if m.textarea.Focused() {
			m.textarea.Blur()
			return m, nil
		}
		return m, m.textarea.Focus()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.textarea.Focused() {
			return m.submit()
		}
	}

	// With the textarea blurred, keys drive whichever pane is on screen.
	if !m.textarea.Focused() {
		var cmd tea.Cmd
		if m.showGraph {
			m.graphPage, cmd = m.graphPage.Update(msg)
		} else {
			m.viewport, cmd = m.viewport.Update(msg)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.textarea.Value())
	if prompt == "" || m.isLoading {
		return m, nil
	}

	userMsg := Message{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   prompt,
		Timestamp: time.Now(),
	}
	m.history = append(m.history, userMsg)
	m.persist(userMsg)

	m.textarea.Reset()
	m.isLoading = true
	m.err = nil
	m.updateViewport()

	return m, tea.Batch(m.sendCmd(prompt), m.spinner.Tick)
}

func (m Model) handleReply(reply client.Reply) (tea.Model, tea.Cmd) {
	m.isLoading = false

	if reply.Text != "" {
		msg := Message{
			ID:        uuid.NewString(),
			Role:      "model",
			Content:   reply.Text,
			Timestamp: time.Now(),
		}
		m.history = append(m.history, msg)
		m.persist(msg)
	}

	var cmd tea.Cmd
	if reply.Graph != "" {
		msg := Message{
			ID:        uuid.NewString(),
			Role:      "tool",
			View:      ViewGraph,
			Content:   reply.Graph,
			Timestamp: time.Now(),
		}
		m.history = append(m.history, msg)
		m.persist(msg)
		cmd = m.mountGraph(msg)
	}

	m.updateViewport()
	return m, cmd
}

func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
