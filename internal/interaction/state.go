// Package interaction is the single source of truth for which graph element
// is selected or hovered. Elements are identified by id throughout, never by
// object identity: the simulation may replace node records between ticks and
// selection must survive that.
package interaction

// Emphasis is the visual treatment an element should receive. Selected
// overrides hovered for the same element.
type Emphasis int

const (
	EmphasisNone Emphasis = iota
	EmphasisHovered
	EmphasisSelected
)

// State holds the selection and hover fields. Selection is mutually
// exclusive between nodes and edges; hover is independent of selection.
// The empty string means none.
type State struct {
	SelectedNode string
	SelectedEdge string
	HoveredNode  string
	HoveredEdge  string
}

// SelectNode toggles selection off if the node is already selected, else
// selects it and clears any edge selection.
func (s *State) SelectNode(id string) {
	if s.SelectedNode == id {
		s.SelectedNode = ""
		return
	}
	s.SelectedNode = id
	s.SelectedEdge = ""
}

// SelectEdge is symmetric to SelectNode.
func (s *State) SelectEdge(key string) {
	if s.SelectedEdge == key {
		s.SelectedEdge = ""
		return
	}
	s.SelectedEdge = key
	s.SelectedNode = ""
}

// HoverNode sets the hovered node (empty clears) and clears edge hover.
func (s *State) HoverNode(id string) {
	s.HoveredNode = id
	s.HoveredEdge = ""
}

// HoverEdge sets the hovered edge (empty clears) and clears node hover.
func (s *State) HoverEdge(key string) {
	s.HoveredEdge = key
	s.HoveredNode = ""
}

// ClearHover clears both hover fields without touching selection.
func (s *State) ClearHover() {
	s.HoveredNode = ""
	s.HoveredEdge = ""
}

// Dismiss clears all four fields.
func (s *State) Dismiss() {
	*s = State{}
}

// NodeEmphasis returns the visual treatment for a node.
func (s *State) NodeEmphasis(id string) Emphasis {
	switch {
	case s.SelectedNode == id:
		return EmphasisSelected
	case s.HoveredNode == id:
		return EmphasisHovered
	default:
		return EmphasisNone
	}
}

// EdgeEmphasis returns the visual treatment for an edge.
func (s *State) EdgeEmphasis(key string) Emphasis {
	switch {
	case s.SelectedEdge == key:
		return EmphasisSelected
	case s.HoveredEdge == key:
		return EmphasisHovered
	default:
		return EmphasisNone
	}
}

// HasSelection reports whether any element is selected.
func (s *State) HasSelection() bool {
	return s.SelectedNode != "" || s.SelectedEdge != ""
}
