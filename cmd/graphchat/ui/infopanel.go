package ui

import (
	"strings"

	"graphchat/internal/graph"
	"graphchat/internal/interaction"
)

// renderDetail shows the attributes of the element the user is focused on.
// Selection wins over hover; with neither it renders an interaction hint.
func renderDetail(st Styles, p *graph.Payload, inter interaction.State, width int) string {
	id, isNode, ok := detailTarget(inter)
	if !ok {
		return st.Muted.Render(" click a node or edge for details · drag to pan · wheel to zoom · double-click to reset")
	}

	var title string
	var attrs []graph.Attr
	if isNode {
		n, found := p.Node(id)
		if !found {
			return ""
		}
		title = n.ID
		attrs = graph.DisplayAttrs(n.Attrs)
	} else {
		e, found := p.Edge(id)
		if !found {
			return ""
		}
		title = e.Source + " → " + e.Target
		attrs = graph.DisplayAttrs(e.Attrs)
	}

	var sb strings.Builder
	sb.WriteString(st.Bold.Render(title))
	if len(attrs) == 0 {
		sb.WriteString("\n")
		sb.WriteString(st.Muted.Render("no attributes"))
	}
	for i, a := range attrs {
		if i >= detailRows-3 {
			sb.WriteString("\n")
			sb.WriteString(st.Muted.Render("…"))
			break
		}
		sb.WriteString("\n")
		sb.WriteString(st.InfoKey.Render(a.Key+": ") + st.InfoValue.Render(a.Value))
	}

	panel := st.InfoPanel
	if width > 4 {
		panel = panel.MaxWidth(width)
	}
	return panel.Render(sb.String())
}

// detailTarget picks the element to describe: selected node, selected edge,
// hovered node, hovered edge, in that order.
func detailTarget(inter interaction.State) (id string, isNode, ok bool) {
	switch {
	case inter.SelectedNode != "":
		return inter.SelectedNode, true, true
	case inter.SelectedEdge != "":
		return inter.SelectedEdge, false, true
	case inter.HoveredNode != "":
		return inter.HoveredNode, true, true
	case inter.HoveredEdge != "":
		return inter.HoveredEdge, false, true
	}
	return "", false, false
}
