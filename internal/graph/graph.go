// Package graph defines the node/edge payload consumed by the visualizer
// and its ingestion rules. A payload arrives as the deserialized body of a
// tool-result message whose view field equals "graph".
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for structurally invalid payloads. The visualizer pane
// surfaces these as its invalid-data state; they never reach the simulation.
var (
	ErrMalformed   = errors.New("graph: malformed payload")
	ErrMissingID   = errors.New("graph: node missing id")
	ErrDuplicateID = errors.New("graph: duplicate node id")
)

// layoutAttrs are simulation internals that must never appear in the info
// panel.
var layoutAttrs = map[string]bool{
	"x": true, "y": true, "fx": true, "fy": true,
	"vx": true, "vy": true, "index": true,
	"source": true, "target": true,
}

// Node is one graph element. Attrs is immutable once ingested; simulation
// state lives in internal/sim, not here.
type Node struct {
	ID    string
	Attrs map[string]any
}

// Edge connects two nodes by id. Both endpoints are guaranteed to exist in
// the payload's node set; edges referencing missing ids are dropped at
// ingest.
type Edge struct {
	Source string
	Target string
	Attrs  map[string]any
}

// Key returns the stable identity used for edge selection and hover.
func (e Edge) Key() string {
	return e.Source + "->" + e.Target
}

// Payload is an ingested graph ready for simulation.
type Payload struct {
	Nodes []Node
	Edges []Edge

	// Dropped counts edges removed because an endpoint id was absent.
	Dropped int
}

type rawPayload struct {
	Nodes []map[string]any `json:"nodes"`
	Edges []map[string]any `json:"edges"`
}

// Parse ingests a JSON graph payload. Malformed JSON, nodes without a string
// id, and duplicate ids are errors; dangling edges are dropped (counted in
// Dropped) so layout can never see an undefined endpoint.
func Parse(data []byte) (*Payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Nodes == nil {
		return nil, fmt.Errorf("%w: missing nodes array", ErrMalformed)
	}

	p := &Payload{
		Nodes: make([]Node, 0, len(raw.Nodes)),
		Edges: make([]Edge, 0, len(raw.Edges)),
	}

	seen := make(map[string]bool, len(raw.Nodes))
	for i, attrs := range raw.Nodes {
		id, ok := attrs["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: node %d", ErrMissingID, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = true
		p.Nodes = append(p.Nodes, Node{ID: id, Attrs: attrs})
	}

	for _, attrs := range raw.Edges {
		src, _ := attrs["source"].(string)
		tgt, _ := attrs["target"].(string)
		if !seen[src] || !seen[tgt] {
			p.Dropped++
			continue
		}
		p.Edges = append(p.Edges, Edge{Source: src, Target: tgt, Attrs: attrs})
	}

	return p, nil
}

// Node returns the node with the given id, if present.
func (p *Payload) Node(id string) (Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given key, if present.
func (p *Payload) Edge(key string) (Edge, bool) {
	for _, e := range p.Edges {
		if e.Key() == key {
			return e, true
		}
	}
	return Edge{}, false
}

// Attr is one displayable key/value pair.
type Attr struct {
	Key   string
	Value string
}

// DisplayAttrs returns the element's attributes with layout internals
// (x, y, fx, fy, vx, vy, index, source, target) and the id filtered out,
// sorted by key for stable rendering.
func DisplayAttrs(attrs map[string]any) []Attr {
	out := make([]Attr, 0, len(attrs))
	for k, v := range attrs {
		if k == "id" || layoutAttrs[k] {
			continue
		}
		out = append(out, Attr{Key: k, Value: fmt.Sprintf("%v", v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
