// Package chat provides the interactive TUI chat interface for graphchat.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphchat/cmd/graphchat/ui"
	"graphchat/internal/client"
	"graphchat/internal/store"
)

// ViewGraph marks a turn whose content is a graph payload to visualize
// rather than text to print.
const ViewGraph = "graph"

// Message is a single turn in the chat history.
type Message struct {
	ID        string
	Role      string // "user", "model" or "tool"
	View      string // "" for text, ViewGraph for a graph payload
	Content   string
	Timestamp time.Time
}

// Key is the payload identity used to decide whether a graph turn is the
// one already mounted. Two turns with the same key never remount.
func (m Message) Key() string {
	return fmt.Sprintf("%d:%s:%s:%d", m.Timestamp.UnixNano(), m.Role, m.View, len(m.Content))
}

// Config holds the dependencies for the chat interface.
type Config struct {
	Client    client.Client
	Store     *store.SessionStore // optional; nil disables persistence
	SessionID string
	Styles    ui.Styles
	Logger    *zap.Logger
}

// Model is the main model for the interactive chat interface.
type Model struct {
	// UI Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// Graph pane
	graphPage  ui.GraphPageModel
	showGraph  bool
	mountedKey string

	// State
	history   []Message
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool

	// Backend
	client    client.Client
	store     *store.SessionStore
	sessionID string
	logger    *zap.Logger
}

// Messages for tea updates
type (
	replyMsg client.Reply
	errorMsg struct{ err error }
)

// GraphPayloadMsg delivers a graph payload from outside the conversation,
// such as a watched file or a CLI flag. It mounts like a tool reply.
type GraphPayloadMsg struct {
	Data []byte
}

// New creates the chat model. Persisted history for the session, if any, is
// loaded up front.
func New(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask for a graph, or just chat..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Styles.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	m := Model{
		textarea:  ta,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		styles:    cfg.Styles,
		renderer:  renderer,
		graphPage: ui.NewGraphPageModel(cfg.Styles),
		client:    cfg.Client,
		store:     cfg.Store,
		sessionID: cfg.SessionID,
		logger:    cfg.Logger,
	}

	if cfg.Store != nil {
		turns, err := cfg.Store.History(cfg.SessionID)
		if err != nil {
			m.logger.Warn("loading session history failed", zap.Error(err))
		}
		for _, t := range turns {
			m.history = append(m.history, Message{
				ID:        t.ID,
				Role:      t.Role,
				View:      t.View,
				Content:   t.Content,
				Timestamp: t.CreatedAt,
			})
		}
	}
	return m
}

// Init starts the cursor blink and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// SessionID returns the active session identifier.
func (m Model) SessionID() string { return m.sessionID }

// persist writes a turn to the session store, when one is configured.
func (m *Model) persist(msg Message) {
	if m.store == nil {
		return
	}
	err := m.store.SaveTurn(store.Turn{
		ID:        msg.ID,
		SessionID: m.sessionID,
		Role:      msg.Role,
		View:      msg.View,
		Content:   msg.Content,
		CreatedAt: msg.Timestamp,
	})
	if err != nil {
		m.logger.Warn("persisting turn failed", zap.Error(err))
	}
}

// mountGraph shows a graph turn in the graph pane. A payload with the same
// identity key as the mounted one is left alone; anything else replaces the
// running simulation.
func (m *Model) mountGraph(msg Message) tea.Cmd {
	key := msg.Key()
	if m.showGraph && key == m.mountedKey {
		return nil
	}
	m.mountedKey = key
	m.showGraph = true
	m.graphPage.SetSize(m.width, m.graphHeight())
	return m.graphPage.SetPayload([]byte(msg.Content))
}

// unmountGraph closes the graph pane and stops its simulation.
func (m *Model) unmountGraph() {
	if !m.showGraph {
		return
	}
	m.graphPage.Close()
	m.showGraph = false
	m.mountedKey = ""
}

// sendCmd asks the backend for a reply to the prompt.
func (m Model) sendCmd(prompt string) tea.Cmd {
	history := make([]client.Turn, 0, len(m.history))
	for _, h := range m.history {
		if h.View == ViewGraph {
			continue // graph payloads are not conversational context
		}
		history = append(history, client.Turn{Role: h.Role, Content: h.Content})
	}
	c := m.client
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reply, err := c.Send(ctx, history, prompt)
		if err != nil {
			logger.Warn("backend request failed", zap.Error(err))
			return errorMsg{err: err}
		}
		return replyMsg(reply)
	}
}

func (m Model) graphHeight() int {
	// Graph pane shares the window with header, input and footer.
	h := m.height - 9
	if h < 12 {
		h = 12
	}
	return h
}
