package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// graphInstruction teaches the model the payload contract the visualizer
// consumes.
const graphInstruction = `You are graphchat, a terminal assistant that can answer with interactive graphs.
When the user asks for a relationship structure (dependencies, networks, flows), include exactly one fenced block of the form:

` + "```graph" + `
{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"source": "a", "target": "b"}]}
` + "```" + `

Every node needs a string "id"; edges reference node ids via "source" and "target". Extra keys on nodes and edges are shown as attributes. Keep prose outside the block short.`

// GeminiClient answers prompts through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: c, model: model}, nil
}

// turnRole maps a chat turn role onto the API's role type. Tool turns are
// replayed as model output.
func turnRole(role string) genai.Role {
	if role == "user" {
		return genai.RoleUser
	}
	return genai.RoleModel
}

// Send asks the model for a reply, separating any embedded graph payload
// from the prose.
func (c *GeminiClient) Send(ctx context.Context, history []Turn, prompt string) (Reply, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Content, turnRole(t.Role)))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(graphInstruction, genai.RoleUser),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return Reply{}, fmt.Errorf("no candidates returned")
	}

	prose, payload, ok := extractGraph(text)
	if !ok {
		return Reply{Text: text}, nil
	}
	return Reply{Text: prose, Graph: payload}, nil
}
