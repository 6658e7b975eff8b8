// Package gesture classifies raw pointer sequences into pans, pinches, node
// drags, taps, and double-taps. It is host-independent: callers feed it
// Pointer records (from terminal mouse events, tests, or anything else) plus
// a resolver for what lies under a point, and consume the resolved events.
// The recognizer never mutates selection, camera, or simulation state
// itself.
//
// One recognizer instance serves the whole surface. Grant state is keyed by
// the element resolved at grant time rather than held in per-element
// closures, so tap/drag disambiguation runs independently per grant without
// N coexisting state machines.
package gesture

import (
	"math"
	"time"
)

// Phase is a pointer lifecycle stage.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
)

// TargetKind says what a grant landed on.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetNode
	TargetEdge
)

// Target is the element (if any) under a grant point.
type Target struct {
	Kind TargetKind
	ID   string
}

// Pointer is one raw input sample.
type Pointer struct {
	Phase   Phase
	X, Y    float64
	Touches int // concurrent touch points; 0 and 1 both mean single-touch
	Time    time.Time
}

// Kind enumerates resolved gesture events.
type Kind int

const (
	KindTapNode Kind = iota
	KindTapEdge
	KindTapBackground
	KindDoubleTap
	KindPan
	KindPinch
	KindDragStart
	KindDragMove
	KindDragEnd
)

// Event is a resolved gesture the caller acts on.
type Event struct {
	Kind   Kind
	ID     string  // node id or edge key for taps and drags
	X, Y   float64 // current pointer position for drags
	DX, DY float64 // movement delta for pan/pinch
}

// Config holds the classification thresholds. Zero values take the
// defaults.
type Config struct {
	TapSlop         float64       // max movement for a tap
	TapTimeout      time.Duration // max duration for a tap
	DoubleTapWindow time.Duration // gap between tap grants counting as a double-tap
	PanGate         float64       // movement on either axis before pan/pinch claims
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		TapSlop:         5,
		TapTimeout:      200 * time.Millisecond,
		DoubleTapWindow: 300 * time.Millisecond,
		PanGate:         10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TapSlop == 0 {
		c.TapSlop = d.TapSlop
	}
	if c.TapTimeout == 0 {
		c.TapTimeout = d.TapTimeout
	}
	if c.DoubleTapWindow == 0 {
		c.DoubleTapWindow = d.DoubleTapWindow
	}
	if c.PanGate == 0 {
		c.PanGate = d.PanGate
	}
	return c
}

type state int

const (
	idle state = iota
	pending  // granted, not yet classified
	panning
	pinching
	dragging
	claimed // granted on an edge and moved; swallowed so pan cannot steal it
)

// Recognizer is the gesture state machine:
// idle -> (grant) -> {panning | pinching | dragging} -> (release) -> idle.
type Recognizer struct {
	cfg    Config
	state  state
	grant  Pointer
	target Target

	lastX, lastY float64
	maxDX, maxDY float64 // per-axis deviation from grant (pan gating)
	maxDist      float64 // euclidean deviation from grant (tap slop)

	// Double-tap detection uses a single shared last-tap timestamp: any tap
	// whose grant falls within the window of the previous tap's grant
	// counts, regardless of position.
	lastTap    time.Time
	hasLastTap bool
}

// NewRecognizer builds a recognizer with the given thresholds.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg.withDefaults()}
}

// Handle feeds one pointer sample through the machine. resolve is consulted
// at grant time against the caller's current-frame overlay, so hit geometry
// is never stale. The returned events are in occurrence order.
func (r *Recognizer) Handle(p Pointer, resolve func(x, y float64) Target) []Event {
	switch p.Phase {
	case PhaseDown:
		return r.handleDown(p, resolve)
	case PhaseMove:
		return r.handleMove(p)
	case PhaseUp:
		return r.handleUp(p)
	}
	return nil
}

func (r *Recognizer) handleDown(p Pointer, resolve func(x, y float64) Target) []Event {
	r.grant = p
	r.target = Target{}
	if resolve != nil {
		r.target = resolve(p.X, p.Y)
	}
	r.state = pending
	r.lastX, r.lastY = p.X, p.Y
	r.maxDX, r.maxDY, r.maxDist = 0, 0, 0
	if r.target.Kind == TargetNone && p.Touches >= 2 {
		r.state = pinching
	}
	return nil
}

func (r *Recognizer) handleMove(p Pointer) []Event {
	if r.state == idle {
		return nil
	}

	dx := p.X - r.lastX
	dy := p.Y - r.lastY
	r.maxDX = math.Max(r.maxDX, math.Abs(p.X-r.grant.X))
	r.maxDY = math.Max(r.maxDY, math.Abs(p.Y-r.grant.Y))
	r.maxDist = math.Max(r.maxDist, math.Hypot(p.X-r.grant.X, p.Y-r.grant.Y))

	var events []Event
	switch r.state {
	case pending:
		switch r.target.Kind {
		case TargetNode:
			// A grant over a node claims the gesture before pan/pinch can.
			if r.maxDist > r.cfg.TapSlop {
				r.state = dragging
				events = append(events,
					Event{Kind: KindDragStart, ID: r.target.ID, X: p.X, Y: p.Y})
			}
		case TargetEdge:
			// Edges are tappable but not draggable; past the slop the
			// gesture is dead, and pan must not steal it.
			if r.maxDist > r.cfg.TapSlop {
				r.state = claimed
			}
		default:
			if p.Touches >= 2 {
				r.state = pinching
			} else if r.maxDX > r.cfg.PanGate || r.maxDY > r.cfg.PanGate {
				r.state = panning
				// Fold in the gated movement so the view tracks the full
				// gesture, not just the post-claim remainder.
				events = append(events,
					Event{Kind: KindPan, DX: p.X - r.grant.X, DY: p.Y - r.grant.Y})
			}
		}
	case panning:
		events = append(events, Event{Kind: KindPan, DX: dx, DY: dy})
	case pinching:
		events = append(events, Event{Kind: KindPinch, DY: dy})
	case dragging:
		events = append(events, Event{Kind: KindDragMove, ID: r.target.ID, X: p.X, Y: p.Y})
	}

	r.lastX, r.lastY = p.X, p.Y
	return events
}

func (r *Recognizer) handleUp(p Pointer) []Event {
	defer func() { r.state = idle }()

	switch r.state {
	case dragging:
		return []Event{{Kind: KindDragEnd, ID: r.target.ID, X: p.X, Y: p.Y}}
	case pending:
		elapsed := p.Time.Sub(r.grant.Time)
		if r.maxDist > r.cfg.TapSlop || elapsed >= r.cfg.TapTimeout {
			return nil // too far or too slow: a stalled drag, not a tap
		}
		var events []Event
		switch r.target.Kind {
		case TargetNode:
			events = append(events, Event{Kind: KindTapNode, ID: r.target.ID})
		case TargetEdge:
			events = append(events, Event{Kind: KindTapEdge, ID: r.target.ID})
		default:
			events = append(events, Event{Kind: KindTapBackground})
		}
		if r.hasLastTap && r.grant.Time.Sub(r.lastTap) < r.cfg.DoubleTapWindow {
			events = append(events, Event{Kind: KindDoubleTap})
		}
		r.lastTap = r.grant.Time
		r.hasLastTap = true
		return events
	}
	return nil
}

// Dragging reports the node id of an in-flight drag, if any.
func (r *Recognizer) Dragging() (string, bool) {
	if r.state == dragging {
		return r.target.ID, true
	}
	return "", false
}
