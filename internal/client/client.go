// Package client abstracts the chat backend. The TUI talks to a Client and
// does not care whether replies come from the Gemini API or a scripted
// scenario file.
package client

import (
	"context"
	"strings"
)

// Turn is one prior exchange passed back to the backend as context.
type Turn struct {
	Role    string
	Content string
}

// Reply is the backend's answer to a prompt. Graph, when present, is a JSON
// graph payload to visualize alongside (or instead of) the prose.
type Reply struct {
	Text  string
	Graph string
}

// Client produces replies to prompts.
type Client interface {
	Send(ctx context.Context, history []Turn, prompt string) (Reply, error)
}

const graphFence = "```graph"

// extractGraph splits a model response into prose and an embedded graph
// payload, when the response carries a ```graph fenced block.
func extractGraph(text string) (prose, payload string, ok bool) {
	start := strings.Index(text, graphFence)
	if start < 0 {
		return text, "", false
	}
	rest := text[start+len(graphFence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return text, "", false
	}
	payload = strings.TrimSpace(rest[:end])
	prose = strings.TrimSpace(text[:start] + rest[end+3:])
	return prose, payload, payload != ""
}
