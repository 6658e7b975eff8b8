package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"graphchat/cmd/graphchat/ui"
	"graphchat/internal/client"
	"graphchat/internal/store"
)

const graphJSON = `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"source": "a", "target": "b"}]}`

func testModel(t *testing.T, c client.Client, s *store.SessionStore) Model {
	t.Helper()
	m := New(Config{
		Client:    c,
		Store:     s,
		SessionID: "test-session",
		Styles:    ui.DefaultStyles(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestSendCmdProducesReply(t *testing.T) {
	c := client.NewScriptedClient(client.Scenario{Steps: []client.ScenarioStep{
		{Reply: "hello there"},
	}})
	m := testModel(t, c, nil)

	msg := m.sendCmd("hi")()
	reply, ok := msg.(replyMsg)
	if !ok {
		t.Fatalf("got %T, want replyMsg", msg)
	}
	if reply.Text != "hello there" {
		t.Fatalf("reply text = %q", reply.Text)
	}
}

func TestReplyAppendsHistory(t *testing.T) {
	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), nil)

	m, _ = step(t, m, replyMsg{Text: "plain answer"})
	if len(m.history) != 1 || m.history[0].Role != "model" {
		t.Fatalf("history = %+v", m.history)
	}
	if m.showGraph {
		t.Fatal("a text-only reply must not mount the graph pane")
	}
}

func TestGraphReplyMountsPane(t *testing.T) {
	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), nil)

	m, cmd := step(t, m, replyMsg{Text: "here", Graph: graphJSON})
	if !m.showGraph {
		t.Fatal("a graph reply should mount the graph pane")
	}
	if cmd == nil {
		t.Fatal("mounting should schedule the frame loop")
	}
	if len(m.history) != 2 {
		t.Fatalf("expected model + tool turns, got %+v", m.history)
	}
	if m.history[1].View != ViewGraph {
		t.Fatalf("tool turn view = %q", m.history[1].View)
	}
}

func TestSamePayloadDoesNotRemount(t *testing.T) {
	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), nil)

	turn := Message{
		ID:        "t1",
		Role:      "tool",
		View:      ViewGraph,
		Content:   graphJSON,
		Timestamp: time.Now(),
	}
	if cmd := m.mountGraph(turn); cmd == nil {
		t.Fatal("first mount should start the frame loop")
	}
	if cmd := m.mountGraph(turn); cmd != nil {
		t.Fatal("remounting the identical payload must be a no-op")
	}
}

func TestEscUnmountsGraphPane(t *testing.T) {
	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), nil)
	m, _ = step(t, m, replyMsg{Graph: graphJSON})
	if !m.showGraph {
		t.Fatal("setup: pane should be mounted")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showGraph {
		t.Fatal("esc should close the graph pane")
	}

	// A later identical payload mounts again from scratch.
	m, _ = step(t, m, GraphPayloadMsg{Data: []byte(graphJSON)})
	if !m.showGraph {
		t.Fatal("payloads after unmount should mount again")
	}
}

func TestBackendErrorSurfaceAndDismiss(t *testing.T) {
	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), nil)
	m.isLoading = true

	m, _ = step(t, m, errorMsg{err: context.DeadlineExceeded})
	if m.isLoading {
		t.Fatal("an error ends the loading state")
	}
	if m.err == nil {
		t.Fatal("error should be kept for display")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.err != nil {
		t.Fatal("esc should dismiss the error")
	}
}

func TestTurnsPersistAcrossModels(t *testing.T) {
	s, err := store.NewSessionStore(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), s)
	m.textarea.SetValue("show me a graph")
	next, _ := m.submit()
	m = next.(Model)
	m, _ = step(t, m, replyMsg{Text: "sure", Graph: graphJSON})

	reloaded := testModel(t, client.NewScriptedClient(client.DemoScenario()), s)
	if len(reloaded.history) != 3 {
		t.Fatalf("reloaded history has %d turns, want 3", len(reloaded.history))
	}
	if reloaded.history[2].View != ViewGraph {
		t.Fatalf("graph turn lost: %+v", reloaded.history[2])
	}
}

func TestMessageKeyIdentity(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := Message{Role: "tool", View: ViewGraph, Content: graphJSON, Timestamp: at}
	b := Message{Role: "tool", View: ViewGraph, Content: graphJSON, Timestamp: at}
	if a.Key() != b.Key() {
		t.Fatal("identical turns must share a key")
	}

	c := a
	c.Timestamp = at.Add(time.Second)
	if a.Key() == c.Key() {
		t.Fatal("a different timestamp is a different payload identity")
	}
}

func TestTabRoutesKeysToGraphPane(t *testing.T) {
	m := testModel(t, client.NewScriptedClient(client.DemoScenario()), nil)
	m, _ = step(t, m, replyMsg{Graph: graphJSON})

	m, _ = step(t, m, tea.MouseMsg{X: 10, Y: 5, Button: tea.MouseButtonWheelDown})
	if !strings.Contains(m.graphPage.View(), "zoom 92%") {
		t.Fatalf("wheel should zoom out:\n%s", m.graphPage.View())
	}

	// While the textarea is focused, "r" is input text, not a camera reset.
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if !strings.Contains(m.graphPage.View(), "zoom 92%") {
		t.Fatal("typed text must not reach the graph pane")
	}
	if m.textarea.Value() != "r" {
		t.Fatalf("textarea = %q, want the typed rune", m.textarea.Value())
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if !strings.Contains(m.graphPage.View(), "zoom 100%") {
		t.Fatalf("blurred \"r\" should reset the camera:\n%s", m.graphPage.View())
	}
}
