// Package hittest maintains invisible, transform-synchronized regions over
// each node and edge so imprecise pointer input resolves to the correct
// graph element. Regions live in screen space and are rebuilt every frame
// from the latest simulation snapshot and the current camera; a region from
// a previous frame must never be consulted.
package hittest

import (
	"math"

	"graphchat/internal/camera"
	"graphchat/internal/graph"
	"graphchat/internal/sim"
)

// Default region sizing in screen units. Node radius is constant in screen
// space so tap ergonomics do not change with zoom; edge half-width gives the
// thin rendered line a generous perpendicular margin.
const (
	DefaultNodeRadius    = 4.0
	DefaultEdgeHalfWidth = 2.0
)

// Kind distinguishes what a hit resolved to.
type Kind int

const (
	HitNone Kind = iota
	HitNode
	HitEdge
)

// Hit identifies the element under a point.
type Hit struct {
	Kind Kind
	ID   string // node id or edge key
}

// NodeRegion is a disk centered on the node's transformed screen position.
type NodeRegion struct {
	ID     string
	X, Y   float64
	Radius float64
}

// Contains reports whether the screen point falls inside the disk.
func (r NodeRegion) Contains(x, y float64) bool {
	dx, dy := x-r.X, y-r.Y
	return dx*dx+dy*dy <= r.Radius*r.Radius
}

// EdgeRegion is a rotated rectangle spanning the edge's screen segment with
// a fixed perpendicular half-width.
type EdgeRegion struct {
	Key            string
	X1, Y1, X2, Y2 float64
	HalfWidth      float64
}

// Contains projects the point onto the segment and checks both the along-
// segment parameter and the perpendicular distance.
func (r EdgeRegion) Contains(x, y float64) bool {
	dx, dy := r.X2-r.X1, r.Y2-r.Y1
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		// Degenerate segment: treat as a disk of the margin radius.
		px, py := x-r.X1, y-r.Y1
		return px*px+py*py <= r.HalfWidth*r.HalfWidth
	}
	t := ((x-r.X1)*dx + (y-r.Y1)*dy) / len2
	if t < 0 || t > 1 {
		return false
	}
	cx, cy := r.X1+t*dx, r.Y1+t*dy
	return math.Hypot(x-cx, y-cy) <= r.HalfWidth
}

// Overlay is the per-frame region set. It is derived, ephemeral geometry:
// build it, hit-test against it, throw it away with the frame.
type Overlay struct {
	nodes []NodeRegion
	edges []EdgeRegion
}

// Options sizes the regions. Zero values take the defaults.
type Options struct {
	NodeRadius    float64
	EdgeHalfWidth float64
}

// Build derives the overlay from a simulation snapshot and camera. The
// caller must pass the same snapshot and camera it renders with this frame.
func Build(snap sim.Snapshot, edges []graph.Edge, cam camera.Camera, opts Options) *Overlay {
	if opts.NodeRadius == 0 {
		opts.NodeRadius = DefaultNodeRadius
	}
	if opts.EdgeHalfWidth == 0 {
		opts.EdgeHalfWidth = DefaultEdgeHalfWidth
	}

	o := &Overlay{
		nodes: make([]NodeRegion, 0, len(snap.Nodes)),
		edges: make([]EdgeRegion, 0, len(edges)),
	}

	for _, e := range edges {
		src, ok1 := snap.Pos(e.Source)
		tgt, ok2 := snap.Pos(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		x1, y1 := cam.Apply(src.X, src.Y)
		x2, y2 := cam.Apply(tgt.X, tgt.Y)
		o.edges = append(o.edges, EdgeRegion{
			Key: e.Key(),
			X1:  x1, Y1: y1, X2: x2, Y2: y2,
			HalfWidth: opts.EdgeHalfWidth,
		})
	}

	for _, n := range snap.Nodes {
		x, y := cam.Apply(n.X, n.Y)
		o.nodes = append(o.nodes, NodeRegion{ID: n.ID, X: x, Y: y, Radius: opts.NodeRadius})
	}

	return o
}

// Hit resolves the element at a screen point. Node regions win over edge
// regions so a tap near a junction selects the node.
func (o *Overlay) Hit(x, y float64) Hit {
	if o == nil {
		return Hit{}
	}
	for _, n := range o.nodes {
		if n.Contains(x, y) {
			return Hit{Kind: HitNode, ID: n.ID}
		}
	}
	for _, e := range o.edges {
		if e.Contains(x, y) {
			return Hit{Kind: HitEdge, ID: e.Key}
		}
	}
	return Hit{}
}

// Nodes exposes the node regions (render-order iteration, tests).
func (o *Overlay) Nodes() []NodeRegion { return o.nodes }

// Edges exposes the edge regions.
func (o *Overlay) Edges() []EdgeRegion { return o.edges }
