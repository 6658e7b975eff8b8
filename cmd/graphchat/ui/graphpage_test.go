package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/sim"
)

func testPayload() []byte {
	return []byte(`{
		"nodes": [
			{"id": "api", "kind": "service"},
			{"id": "db", "kind": "store"},
			{"id": "cache", "kind": "store"}
		],
		"edges": [
			{"source": "api", "target": "db", "proto": "tcp"},
			{"source": "api", "target": "cache"}
		]
	}`)
}

func mountedPage(t *testing.T) GraphPageModel {
	t.Helper()
	m := NewGraphPageModel(DefaultStyles())
	m.SetSize(80, 24)
	if cmd := m.SetPayload(testPayload()); cmd == nil {
		t.Fatal("mounting a payload should schedule a frame")
	}
	return m
}

func TestMountReplacesSimulation(t *testing.T) {
	m := NewGraphPageModel(DefaultStyles())
	m.SetSize(80, 24)

	var sims []*sim.Simulation
	for i := 0; i < 5; i++ {
		m.SetPayload(testPayload())
		sims = append(sims, m.sim)
	}

	alive := 0
	for _, s := range sims {
		if s.Alive() {
			alive++
		}
	}
	if alive != 1 {
		t.Fatalf("%d simulations alive after 5 mounts, want exactly 1", alive)
	}
	if !sims[len(sims)-1].Alive() {
		t.Fatal("the surviving simulation must be the most recent one")
	}
}

func TestStaleFrameDiscarded(t *testing.T) {
	m := mountedPage(t)
	staleGen := m.gen
	m.SetPayload(testPayload())

	alphaBefore := m.sim.Alpha()
	before, _ := m.snap.Pos("api")

	m, _ = m.Update(FrameMsg{Gen: staleGen})

	if m.sim.Alpha() != alphaBefore {
		t.Fatal("a stale frame must not step the current simulation")
	}
	if after, _ := m.snap.Pos("api"); after != before {
		t.Fatal("a stale frame must not republish positions")
	}
}

func TestFrameStepsAndReschedules(t *testing.T) {
	m := mountedPage(t)
	before, _ := m.snap.Pos("api")

	m, cmd := m.Update(FrameMsg{Gen: m.gen})
	if cmd == nil {
		t.Fatal("an unconverged simulation should keep ticking")
	}
	if after, _ := m.snap.Pos("api"); after == before {
		t.Fatal("a frame should publish fresh positions")
	}
	if m.overlay == nil {
		t.Fatal("hit regions should follow the published frame")
	}
}

func TestMalformedPayloadErrorAndRecovery(t *testing.T) {
	m := NewGraphPageModel(DefaultStyles())
	m.SetSize(80, 24)

	if cmd := m.SetPayload([]byte(`{"nodes": [{`)); cmd != nil {
		t.Fatal("a malformed payload must not start a frame loop")
	}
	if m.sim != nil {
		t.Fatal("no simulation may exist for a malformed payload")
	}
	if !strings.Contains(m.View(), "could not read graph data") {
		t.Fatalf("error state not rendered:\n%s", m.View())
	}

	m.SetPayload(testPayload())
	if m.parseErr != nil || m.sim == nil || !m.sim.Alive() {
		t.Fatal("a valid payload should recover from the error state")
	}
	if strings.Contains(m.View(), "could not read graph data") {
		t.Fatal("error state should clear on recovery")
	}
}

func mouseAt(m GraphPageModel, id string) (int, int) {
	pos, _ := m.snap.Pos(id)
	sx, sy := m.cam.Apply(pos.X, pos.Y)
	return int(sx) / 2, int(sy) / 4
}

func click(t *testing.T, m GraphPageModel, x, y int) GraphPageModel {
	t.Helper()
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	return m
}

func TestClickSelectsAndTogglesNode(t *testing.T) {
	m := mountedPage(t)
	x, y := mouseAt(m, "api")

	m = click(t, m, x, y)
	if m.inter.SelectedNode != "api" {
		t.Fatalf("selected %q, want api", m.inter.SelectedNode)
	}

	m = click(t, m, x, y)
	if m.inter.SelectedNode != "" {
		t.Fatal("clicking the selected node again should deselect it")
	}
}

func TestClickBackgroundDismisses(t *testing.T) {
	m := mountedPage(t)
	x, y := mouseAt(m, "api")
	m = click(t, m, x, y)
	if m.inter.SelectedNode == "" {
		t.Fatal("setup: node should be selected")
	}

	m = click(t, m, 0, 0)
	if m.inter.HasSelection() {
		t.Fatal("clicking empty space should dismiss the selection")
	}
}

func TestWheelZoomsAndClamps(t *testing.T) {
	m := mountedPage(t)

	m, _ = m.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if m.cam.Scale <= 1 {
		t.Fatalf("wheel up should zoom in, scale = %v", m.cam.Scale)
	}

	for i := 0; i < 50; i++ {
		m, _ = m.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	}
	if m.cam.Scale != 0.5 {
		t.Fatalf("scale = %v after many wheel downs, want clamp at 0.5", m.cam.Scale)
	}
}

func TestDragOnBackgroundPans(t *testing.T) {
	m := mountedPage(t)

	m, _ = m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if m.cam.TranslateX != 20 {
		t.Fatalf("translate = %v, want 20 after dragging 10 cells", m.cam.TranslateX)
	}
	m, _ = m.Update(tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.inter.HasSelection() {
		t.Fatal("a pan must not select anything on release")
	}
}

func TestDragNodePinsIt(t *testing.T) {
	m := mountedPage(t)
	x, y := mouseAt(m, "api")

	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: x + 8, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if !m.sim.Pinned("api") {
		t.Fatal("dragging a node should pin it")
	}
	if m.cam.TranslateX != 0 {
		t.Fatal("a node drag must not pan the camera")
	}

	m, _ = m.Update(tea.MouseMsg{X: x + 8, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.sim.Pinned("api") {
		t.Fatal("releasing the drag should unpin the node")
	}
	if m.inter.SelectedNode != "" {
		t.Fatal("a drag release must not count as a tap")
	}
}

func TestHoverTracksAndClears(t *testing.T) {
	m := mountedPage(t)
	x, y := mouseAt(m, "db")

	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	if m.inter.HoveredNode != "db" {
		t.Fatalf("hovered %q, want db", m.inter.HoveredNode)
	}
	if m.inter.HasSelection() {
		t.Fatal("hover must not select")
	}

	m, _ = m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	if m.inter.HoveredNode != "" {
		t.Fatal("leaving the node should clear hover")
	}
}

func TestCloseStopsSimulation(t *testing.T) {
	m := mountedPage(t)
	m.Close()
	if m.sim.Alive() {
		t.Fatal("Close must stop the live simulation")
	}
}

func TestDroppedEdgesSurfaceInStatus(t *testing.T) {
	m := NewGraphPageModel(DefaultStyles())
	m.SetSize(80, 24)
	m.SetPayload([]byte(`{
		"nodes": [{"id": "a"}],
		"edges": [{"source": "a", "target": "ghost"}]
	}`))
	if !strings.Contains(m.View(), "1 unresolved edges dropped") {
		t.Fatalf("dropped-edge count missing from view:\n%s", m.View())
	}
}

func countColor(c *Canvas, want lipgloss.Color) int {
	n := 0
	for _, cl := range c.cells {
		if cl.color == want {
			n++
		}
	}
	return n
}

func TestEmphasisColorsReachCanvas(t *testing.T) {
	m := mountedPage(t)

	c := NewCanvas(m.width, m.canvasRows())
	m.drawNodes(c)
	if countColor(c, NodeSelected) != 0 {
		t.Fatal("no node should carry the selected color before any click")
	}

	x, y := mouseAt(m, "api")
	m = click(t, m, x, y)

	c.Clear()
	m.drawNodes(c)
	if countColor(c, NodeSelected) == 0 {
		t.Fatal("the selected node should be drawn with the selected color")
	}

	hx, hy := mouseAt(m, "db")
	m, _ = m.Update(tea.MouseMsg{X: hx, Y: hy, Action: tea.MouseActionMotion})
	c.Clear()
	m.drawNodes(c)
	if countColor(c, NodeHovered) == 0 {
		t.Fatal("the hovered node should be drawn with the hovered color")
	}
	if countColor(c, NodeSelected) == 0 {
		t.Fatal("hover must not clear the selected emphasis")
	}
}

func TestEmphasizedEdgeChangesColor(t *testing.T) {
	m := mountedPage(t)

	c := NewCanvas(m.width, m.canvasRows())
	m.drawEdges(c)
	if countColor(c, EdgeEmphasis) != 0 {
		t.Fatal("no edge should be emphasized before any interaction")
	}

	m.inter.SelectEdge("api->db")
	c.Clear()
	m.drawEdges(c)
	if countColor(c, EdgeEmphasis) == 0 {
		t.Fatal("the selected edge should be drawn with the emphasis color")
	}
}
