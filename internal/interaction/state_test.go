package interaction

import "testing"

func TestSelectNode_ClearsEdgeSelection(t *testing.T) {
	var s State
	s.SelectEdge("A->B")
	s.SelectNode("A")
	if s.SelectedNode != "A" {
		t.Errorf("SelectedNode = %q", s.SelectedNode)
	}
	if s.SelectedEdge != "" {
		t.Errorf("selecting a node must clear edge selection, got %q", s.SelectedEdge)
	}
}

func TestSelectEdge_ClearsNodeSelection(t *testing.T) {
	var s State
	s.SelectNode("A")
	s.SelectEdge("A->B")
	if s.SelectedEdge != "A->B" {
		t.Errorf("SelectedEdge = %q", s.SelectedEdge)
	}
	if s.SelectedNode != "" {
		t.Errorf("selecting an edge must clear node selection, got %q", s.SelectedNode)
	}
}

func TestSelectNode_Toggles(t *testing.T) {
	var s State
	s.SelectNode("A")
	s.SelectNode("A")
	if s.SelectedNode != "" {
		t.Errorf("second select of same node should toggle off, got %q", s.SelectedNode)
	}
	s.SelectNode("A")
	s.SelectNode("B")
	if s.SelectedNode != "B" {
		t.Errorf("selecting another node should switch, got %q", s.SelectedNode)
	}
}

func TestSelectEdge_Toggles(t *testing.T) {
	var s State
	s.SelectEdge("A->B")
	s.SelectEdge("A->B")
	if s.SelectedEdge != "" {
		t.Errorf("second select of same edge should toggle off, got %q", s.SelectedEdge)
	}
}

func TestHover_IndependentOfSelection(t *testing.T) {
	var s State
	s.SelectNode("A")
	s.HoverNode("B")
	if s.SelectedNode != "A" || s.HoveredNode != "B" {
		t.Errorf("hover must not disturb selection: %+v", s)
	}
	s.ClearHover()
	if s.SelectedNode != "A" {
		t.Errorf("ClearHover must not disturb selection: %+v", s)
	}
	if s.HoveredNode != "" || s.HoveredEdge != "" {
		t.Errorf("ClearHover left hover state: %+v", s)
	}
}

func TestDismiss_ClearsEverything(t *testing.T) {
	var s State
	s.SelectNode("A")
	s.HoverEdge("A->B")
	s.Dismiss()
	if s != (State{}) {
		t.Errorf("Dismiss left %+v", s)
	}
}

func TestEmphasis_SelectedOverridesHovered(t *testing.T) {
	var s State
	s.SelectNode("A")
	s.HoverNode("A")
	if got := s.NodeEmphasis("A"); got != EmphasisSelected {
		t.Errorf("emphasis = %v, want selected", got)
	}
}

func TestEmphasis_HoveredWhileOtherSelected(t *testing.T) {
	var s State
	s.SelectNode("A")
	s.HoverNode("B")
	if got := s.NodeEmphasis("B"); got != EmphasisHovered {
		t.Errorf("hovered element alongside a different selection = %v, want hovered", got)
	}
	if got := s.NodeEmphasis("A"); got != EmphasisSelected {
		t.Errorf("selected element = %v, want selected", got)
	}
}

func TestEdgeEmphasis(t *testing.T) {
	var s State
	s.SelectEdge("A->B")
	s.HoverEdge("B->C")
	if got := s.EdgeEmphasis("A->B"); got != EmphasisSelected {
		t.Errorf("selected edge = %v", got)
	}
	if got := s.EdgeEmphasis("B->C"); got != EmphasisHovered {
		t.Errorf("hovered edge = %v", got)
	}
	if got := s.EdgeEmphasis("C->D"); got != EmphasisNone {
		t.Errorf("uninvolved edge = %v", got)
	}
}
