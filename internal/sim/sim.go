// Package sim implements the force-directed layout simulation that assigns
// positions to graph nodes. It owns no rendering concerns: each tick
// publishes an immutable position snapshot and the caller decides what to do
// with it.
//
// The simulation cools: an internal energy level (alpha) decays every tick
// and once it drops below the convergence threshold, Step reports done and
// positions stabilize. Dragging a node pins it and holds the system hot so
// neighbors keep relaxing; releasing reheats briefly so the layout settles
// smoothly instead of snapping.
package sim

import (
	"math"

	"graphchat/internal/graph"
)

// goldenAngle spreads seed positions in a phyllotaxis spiral so no two nodes
// start coincident.
const goldenAngle = 2.399963229728653

// dragAlphaTarget keeps the system hot while a node is dragged.
const dragAlphaTarget = 0.3

// Config holds the force parameters. Zero values are replaced by defaults.
type Config struct {
	LinkDistance   float64 // target separation for connected nodes
	LinkStrength   float64 // spring stiffness for the link force
	Repulsion      float64 // many-body strength, inverse-distance-squared falloff
	CollideRadius  float64 // minimum radius enforced between any two nodes
	CenterX        float64 // layout center the graph is pulled toward
	CenterY        float64
	CenterStrength float64
	Damping        float64 // velocity retained per tick
	AlphaMin       float64 // convergence threshold
	AlphaDecay     float64
}

// DefaultConfig returns the stock force parameters.
func DefaultConfig() Config {
	return Config{
		LinkDistance:   120,
		LinkStrength:   0.1,
		Repulsion:      400,
		CollideRadius:  25,
		CenterStrength: 0.05,
		Damping:        0.6,
		AlphaMin:       0.001,
		AlphaDecay:     0.0228,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LinkDistance == 0 {
		c.LinkDistance = d.LinkDistance
	}
	if c.LinkStrength == 0 {
		c.LinkStrength = d.LinkStrength
	}
	if c.Repulsion == 0 {
		c.Repulsion = d.Repulsion
	}
	if c.CollideRadius == 0 {
		c.CollideRadius = d.CollideRadius
	}
	if c.CenterStrength == 0 {
		c.CenterStrength = d.CenterStrength
	}
	if c.Damping == 0 {
		c.Damping = d.Damping
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = d.AlphaMin
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = d.AlphaDecay
	}
	return c
}

// Node is a simulation-owned position record. The stepper is the sole writer
// of these fields; everything else reads snapshots.
type Node struct {
	ID     string
	X, Y   float64
	VX, VY float64
	FX, FY *float64 // pinned position, non-nil while dragged
}

type link struct {
	source, target *Node
}

// Pos is one node's published position.
type Pos struct {
	ID   string
	X, Y float64
}

// Snapshot is the immutable per-tick output read by rendering and
// hit-testing. Both must derive their geometry from the same snapshot in the
// same frame.
type Snapshot struct {
	Nodes []Pos
	index map[string]int
}

// Pos looks up a node's position by id.
func (s Snapshot) Pos(id string) (Pos, bool) {
	i, ok := s.index[id]
	if !ok {
		return Pos{}, false
	}
	return s.Nodes[i], true
}

// Empty reports whether the snapshot carries no positions.
func (s Snapshot) Empty() bool { return len(s.Nodes) == 0 }

// Simulation is a mutable layout process bound to one graph payload.
// Replacing the payload means stopping this instance and creating a fresh
// one; a stopped simulation cannot be resumed.
//
// All methods must be called from a single goroutine (the UI event loop).
type Simulation struct {
	cfg         Config
	nodes       []*Node
	byID        map[string]*Node
	links       []link
	edges       []graph.Edge
	alpha       float64
	alphaTarget float64
	stopped     bool
}

// New builds a simulation for the payload, seeding positions center-biased
// in a spiral unless a node's attributes carry explicit x/y seeds.
func New(p *graph.Payload, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	s := &Simulation{
		cfg:   cfg,
		nodes: make([]*Node, 0, len(p.Nodes)),
		byID:  make(map[string]*Node, len(p.Nodes)),
		edges: p.Edges,
		alpha: 1,
	}

	for i, gn := range p.Nodes {
		radius := cfg.CollideRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * goldenAngle
		n := &Node{
			ID: gn.ID,
			X:  cfg.CenterX + radius*math.Cos(angle),
			Y:  cfg.CenterY + radius*math.Sin(angle),
		}
		if x, ok := gn.Attrs["x"].(float64); ok {
			n.X = x
		}
		if y, ok := gn.Attrs["y"].(float64); ok {
			n.Y = y
		}
		s.nodes = append(s.nodes, n)
		s.byID[gn.ID] = n
	}

	// Payload ingestion already dropped dangling edges; the guard here keeps
	// an unresolved link from ever entering the force loop regardless.
	for _, e := range p.Edges {
		src, tgt := s.byID[e.Source], s.byID[e.Target]
		if src == nil || tgt == nil {
			continue
		}
		s.links = append(s.links, link{source: src, target: tgt})
	}

	return s
}

// Edges returns the resolved edge set for rendering and hit-testing.
func (s *Simulation) Edges() []graph.Edge { return s.edges }

// Alive reports whether the simulation may still produce ticks.
func (s *Simulation) Alive() bool { return !s.stopped }

// Converged reports whether energy has decayed below the threshold.
func (s *Simulation) Converged() bool {
	return s.alpha < s.cfg.AlphaMin && s.alphaTarget < s.cfg.AlphaMin
}

// Alpha exposes the current energy level.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Stop terminates the simulation immediately and irreversibly. Subsequent
// Step calls are no-ops and never publish another snapshot.
func (s *Simulation) Stop() { s.stopped = true }

// Step advances the simulation one tick and publishes the updated positions.
// It returns false once the simulation is stopped or has converged.
func (s *Simulation) Step() (Snapshot, bool) {
	if s.stopped || s.Converged() {
		return Snapshot{}, false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLinks()
	s.applyRepulsion()
	s.applyCenter()
	s.applyCollision()
	s.integrate()

	return s.publish(), true
}

// applyLinks pulls connected nodes toward the target separation distance.
func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		dx := l.target.X - l.source.X
		dy := l.target.Y - l.source.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}
		f := s.cfg.LinkStrength * (dist - s.cfg.LinkDistance) * s.alpha
		fx := f * dx / dist
		fy := f * dy / dist
		l.source.VX += fx
		l.source.VY += fy
		l.target.VX -= fx
		l.target.VY -= fy
	}
}

// applyRepulsion pushes all node pairs apart with inverse-distance-squared
// falloff.
func (s *Simulation) applyRepulsion() {
	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist2 := dx*dx + dy*dy + 0.01
			f := s.cfg.Repulsion / dist2 * s.alpha
			invDist := 1 / math.Sqrt(dist2)
			fx := f * dx * invDist
			fy := f * dy * invDist
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}
}

// applyCenter pulls the layout toward the configured center so the graph
// does not drift off-screen.
func (s *Simulation) applyCenter() {
	for _, n := range s.nodes {
		n.VX -= (n.X - s.cfg.CenterX) * s.cfg.CenterStrength * s.alpha
		n.VY -= (n.Y - s.cfg.CenterY) * s.cfg.CenterStrength * s.alpha
	}
}

// applyCollision separates overlapping pairs so no two nodes sit closer than
// twice the collision radius.
func (s *Simulation) applyCollision() {
	minDist := 2 * s.cfg.CollideRadius
	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			if dist >= minDist {
				continue
			}
			if dist == 0 {
				dx, dy, dist = minDist, 0, minDist
			}
			overlap := (minDist - dist) / dist * 0.5
			px := dx * overlap
			py := dy * overlap
			if a.FX == nil {
				a.X -= px
			}
			if a.FY == nil {
				a.Y -= py
			}
			if b.FX == nil {
				b.X += px
			}
			if b.FY == nil {
				b.Y += py
			}
		}
	}
}

// integrate folds accumulated velocity into position. A pinned axis is
// forced to the drag target and excluded from force-driven displacement.
func (s *Simulation) integrate() {
	for _, n := range s.nodes {
		if n.FX != nil {
			n.X = *n.FX
			n.VX = 0
		} else {
			n.VX *= s.cfg.Damping
			n.X += n.VX
		}
		if n.FY != nil {
			n.Y = *n.FY
			n.VY = 0
		} else {
			n.VY *= s.cfg.Damping
			n.Y += n.VY
		}
	}
}

func (s *Simulation) publish() Snapshot {
	snap := Snapshot{
		Nodes: make([]Pos, len(s.nodes)),
		index: make(map[string]int, len(s.nodes)),
	}
	for i, n := range s.nodes {
		snap.Nodes[i] = Pos{ID: n.ID, X: n.X, Y: n.Y}
		snap.index[n.ID] = i
	}
	return snap
}

// StartDrag pins the node at the given position and holds the system hot so
// the rest of the layout keeps responding.
func (s *Simulation) StartDrag(id string, x, y float64) {
	n := s.byID[id]
	if n == nil {
		return
	}
	n.FX, n.FY = &x, &y
	s.alphaTarget = dragAlphaTarget
	if s.alpha < dragAlphaTarget {
		s.alpha = dragAlphaTarget
	}
}

// Drag moves an active drag's pinned position.
func (s *Simulation) Drag(id string, x, y float64) {
	n := s.byID[id]
	if n == nil || n.FX == nil {
		return
	}
	n.FX, n.FY = &x, &y
}

// EndDrag clears the pin so the node re-enters free simulation. The system
// is reheated so neighbors relax toward the released position instead of
// snapping.
func (s *Simulation) EndDrag(id string) {
	n := s.byID[id]
	if n == nil {
		return
	}
	n.FX, n.FY = nil, nil
	s.alphaTarget = 0
	s.Reheat()
}

// Reheat raises the energy level so a cooled layout resumes ticking.
func (s *Simulation) Reheat() {
	if s.alpha < dragAlphaTarget {
		s.alpha = dragAlphaTarget
	}
}

// Pinned reports whether the node is currently pinned by a drag.
func (s *Simulation) Pinned(id string) bool {
	n := s.byID[id]
	return n != nil && n.FX != nil
}
