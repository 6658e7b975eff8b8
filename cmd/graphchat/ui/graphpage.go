package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/camera"
	"graphchat/internal/gesture"
	"graphchat/internal/graph"
	"graphchat/internal/hittest"
	"graphchat/internal/interaction"
	"graphchat/internal/sim"
)

const (
	frameInterval = 33 * time.Millisecond
	wheelStep     = 40 // vertical-delta units per wheel notch

	// Rows below the canvas: one status line plus the detail area.
	statusRows = 1
	detailRows = 7
)

// FrameMsg drives one simulation tick. Gen ties the tick to the simulation
// generation that scheduled it, so ticks queued by a replaced simulation are
// discarded instead of stepping the new one off-rhythm.
type FrameMsg struct {
	Gen int
	At  time.Time
}

// GraphPageModel owns one graph visualization: the simulation driving node
// positions, the camera, the gesture recognizer, and the selection state.
// Mounting a new payload replaces the simulation wholesale; the old one is
// stopped first so exactly one lives at any time.
type GraphPageModel struct {
	styles Styles
	width  int
	height int

	payload  *graph.Payload
	parseErr error

	sim     *sim.Simulation
	gen     int
	ticking bool
	snap    sim.Snapshot

	cam     camera.Camera
	overlay *hittest.Overlay
	rec     *gesture.Recognizer
	inter   interaction.State

	mouseDown        bool
	cursorX, cursorY float64 // last pointer position, pixel space
}

// NewGraphPageModel creates an empty graph page.
func NewGraphPageModel(styles Styles) GraphPageModel {
	return GraphPageModel{
		styles: styles,
		width:  80,
		height: 24,
		cam:    camera.New(),
		rec:    gesture.NewRecognizer(gesture.DefaultConfig()),
	}
}

// SetSize updates the space available to the page, in terminal cells.
func (m *GraphPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.rebuildOverlay()
}

func (m *GraphPageModel) canvasRows() int {
	rows := m.height - statusRows - detailRows
	if rows < 3 {
		rows = 3
	}
	return rows
}

// SetPayload replaces the mounted graph. The previous simulation, if any, is
// stopped before the new one exists, and camera and selection state reset.
// A malformed payload leaves the page in an error state it can recover from
// on the next SetPayload.
func (m *GraphPageModel) SetPayload(data []byte) tea.Cmd {
	if m.sim != nil {
		m.sim.Stop()
	}
	m.gen++
	m.ticking = false
	m.cam = camera.New()
	m.inter = interaction.State{}
	m.overlay = nil
	m.snap = sim.Snapshot{}

	p, err := graph.Parse(data)
	if err != nil {
		m.payload = nil
		m.sim = nil
		m.parseErr = err
		return nil
	}
	m.payload = p
	m.parseErr = nil

	cfg := sim.DefaultConfig()
	cfg.CenterX = float64(m.width)            // pixel center: width*2/2
	cfg.CenterY = float64(m.canvasRows() * 2) // pixel center: rows*4/2
	m.sim = sim.New(p, cfg)

	if snap, ok := m.sim.Step(); ok {
		m.snap = snap
	}
	m.rebuildOverlay()

	m.ticking = true
	return m.tick()
}

// Close stops the live simulation, if any. The parent calls this when the
// graph pane unmounts.
func (m *GraphPageModel) Close() {
	if m.sim != nil {
		m.sim.Stop()
	}
	m.ticking = false
}

// Mounted reports whether a payload (or payload error) is being shown.
func (m *GraphPageModel) Mounted() bool {
	return m.payload != nil || m.parseErr != nil
}

func (m *GraphPageModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg{Gen: gen, At: t}
	})
}

// ensureTicking restarts the frame loop after an interaction reheats a
// converged simulation.
func (m *GraphPageModel) ensureTicking() tea.Cmd {
	if m.ticking || m.sim == nil || !m.sim.Alive() {
		return nil
	}
	m.ticking = true
	return m.tick()
}

// Update handles frame ticks, mouse input, and keys.
func (m GraphPageModel) Update(msg tea.Msg) (GraphPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		return m.handleFrame(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.cam.Reset()
			m.rebuildOverlay()
		}
	}
	return m, nil
}

func (m GraphPageModel) handleFrame(msg FrameMsg) (GraphPageModel, tea.Cmd) {
	if msg.Gen != m.gen || m.sim == nil {
		return m, nil
	}
	if snap, ok := m.sim.Step(); ok {
		m.snap = snap
		m.rebuildOverlay()
	}
	if m.sim.Alive() && !m.sim.Converged() {
		return m, m.tick()
	}
	m.ticking = false
	return m, nil
}

// pixel maps a terminal cell coordinate to the center of its braille pixel
// block, the coordinate space shared by camera, overlay, and gestures.
func pixel(cellX, cellY int) (float64, float64) {
	return float64(cellX*2 + 1), float64(cellY*4 + 2)
}

func (m GraphPageModel) handleMouse(msg tea.MouseMsg) (GraphPageModel, tea.Cmd) {
	px, py := pixel(msg.X, msg.Y)
	m.cursorX, m.cursorY = px, py
	now := time.Now()

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.cam.ZoomBy(-wheelStep)
		m.rebuildOverlay()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.cam.ZoomBy(wheelStep)
		m.rebuildOverlay()
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.mouseDown = true
		events := m.rec.Handle(gesture.Pointer{
			Phase: gesture.PhaseDown, X: px, Y: py, Touches: 1, Time: now,
		}, m.resolve)
		return m.applyEvents(events)

	case tea.MouseActionMotion:
		if !m.mouseDown {
			m.updateHover(px, py)
			return m, nil
		}
		events := m.rec.Handle(gesture.Pointer{
			Phase: gesture.PhaseMove, X: px, Y: py, Touches: 1, Time: now,
		}, nil)
		return m.applyEvents(events)

	case tea.MouseActionRelease:
		m.mouseDown = false
		events := m.rec.Handle(gesture.Pointer{
			Phase: gesture.PhaseUp, X: px, Y: py, Touches: 1, Time: now,
		}, nil)
		return m.applyEvents(events)
	}
	return m, nil
}

func (m GraphPageModel) applyEvents(events []gesture.Event) (GraphPageModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, e := range events {
		switch e.Kind {
		case gesture.KindTapNode:
			m.inter.SelectNode(e.ID)
		case gesture.KindTapEdge:
			m.inter.SelectEdge(e.ID)
		case gesture.KindTapBackground:
			m.inter.Dismiss()
		case gesture.KindDoubleTap:
			m.cam.Reset()
			m.rebuildOverlay()
		case gesture.KindPan:
			m.cam.Pan(e.DX, e.DY)
			m.rebuildOverlay()
		case gesture.KindPinch:
			m.cam.ZoomBy(e.DY)
			m.rebuildOverlay()
		case gesture.KindDragStart:
			if m.sim != nil {
				wx, wy := m.cam.Invert(e.X, e.Y)
				m.sim.StartDrag(e.ID, wx, wy)
				cmd = m.ensureTicking()
			}
		case gesture.KindDragMove:
			if m.sim != nil {
				wx, wy := m.cam.Invert(e.X, e.Y)
				m.sim.Drag(e.ID, wx, wy)
			}
		case gesture.KindDragEnd:
			if m.sim != nil {
				m.sim.EndDrag(e.ID)
				cmd = m.ensureTicking()
			}
		}
	}
	return m, cmd
}

func (m *GraphPageModel) updateHover(px, py float64) {
	switch h := m.overlay.Hit(px, py); h.Kind {
	case hittest.HitNode:
		m.inter.HoverNode(h.ID)
	case hittest.HitEdge:
		m.inter.HoverEdge(h.ID)
	default:
		m.inter.ClearHover()
	}
}

func (m *GraphPageModel) resolve(x, y float64) gesture.Target {
	switch h := m.overlay.Hit(x, y); h.Kind {
	case hittest.HitNode:
		return gesture.Target{Kind: gesture.TargetNode, ID: h.ID}
	case hittest.HitEdge:
		return gesture.Target{Kind: gesture.TargetEdge, ID: h.ID}
	}
	return gesture.Target{}
}

// rebuildOverlay re-derives hit regions from the snapshot and camera the
// next frame renders with. Hit geometry and drawn geometry must never
// disagree.
func (m *GraphPageModel) rebuildOverlay() {
	if m.sim == nil || m.snap.Empty() {
		m.overlay = nil
		return
	}
	m.overlay = hittest.Build(m.snap, m.sim.Edges(), m.cam, hittest.Options{})
}

// View renders the canvas, a status line, and the detail area.
func (m GraphPageModel) View() string {
	if m.parseErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Error.Render("could not read graph data"),
			m.styles.Muted.Render(m.parseErr.Error()),
			"",
			m.styles.Muted.Render("send another graph to try again"),
		)
	}
	if m.payload == nil {
		return m.styles.Muted.Render("no graph loaded")
	}

	canvas := NewCanvas(m.width, m.canvasRows())
	m.drawEdges(canvas)
	m.drawNodes(canvas)
	m.drawHoverLabel(canvas)

	status := m.statusLine()
	detail := renderDetail(m.styles, m.payload, m.inter, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, canvas.Render(), status, detail)
}

func (m *GraphPageModel) drawEdges(c *Canvas) {
	for _, e := range m.sim.Edges() {
		src, ok1 := m.snap.Pos(e.Source)
		tgt, ok2 := m.snap.Pos(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		x1, y1 := m.cam.Apply(src.X, src.Y)
		x2, y2 := m.cam.Apply(tgt.X, tgt.Y)
		color := EdgeDefault
		if m.inter.EdgeEmphasis(e.Key()) != interaction.EmphasisNone {
			color = EdgeEmphasis
		}
		c.Line(x1, y1, x2, y2, color)
	}
}

func (m *GraphPageModel) drawNodes(c *Canvas) {
	for _, p := range m.snap.Nodes {
		x, y := m.cam.Apply(p.X, p.Y)
		color := NodeDefault
		switch m.inter.NodeEmphasis(p.ID) {
		case interaction.EmphasisSelected:
			color = NodeSelected
		case interaction.EmphasisHovered:
			color = NodeHovered
		}
		c.Dot(int(x), int(y), color)
	}
}

func (m *GraphPageModel) drawHoverLabel(c *Canvas) {
	label := m.inter.HoveredNode
	if label == "" {
		label = m.inter.HoveredEdge
	}
	if label == "" {
		return
	}
	cellX := int(m.cursorX)/2 + 2
	cellY := int(m.cursorY) / 4
	c.WriteText(cellX, cellY, label, m.styles.HoverLabel)
}

func (m *GraphPageModel) statusLine() string {
	s := fmt.Sprintf(" %d nodes · %d edges · zoom %.0f%%",
		len(m.payload.Nodes), len(m.payload.Edges), m.cam.Scale*100)
	if m.payload.Dropped > 0 {
		s += m.styles.Warning.Render(
			fmt.Sprintf("  %d unresolved edges dropped", m.payload.Dropped))
	}
	return m.styles.Footer.Render(s)
}
