package client

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a canned conversation loaded from YAML. Steps answer prompts
// in order; a step with a match string instead answers the first prompt
// containing it.
type Scenario struct {
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one canned reply.
type ScenarioStep struct {
	Match string `yaml:"match,omitempty"`
	Reply string `yaml:"reply,omitempty"`
	Graph string `yaml:"graph,omitempty"`
}

// ScriptedClient replays a scenario. It serves demos and tests without an
// API key.
type ScriptedClient struct {
	scenario Scenario
	next     int
}

// NewScriptedClient builds a client over an in-memory scenario.
func NewScriptedClient(s Scenario) *ScriptedClient {
	return &ScriptedClient{scenario: s}
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	if len(s.Steps) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s has no steps", path)
	}
	return s, nil
}

// Send answers from the scenario: matched steps first, then the next
// sequential step, then a fallback shrug.
func (c *ScriptedClient) Send(_ context.Context, _ []Turn, prompt string) (Reply, error) {
	lower := strings.ToLower(prompt)
	for _, step := range c.scenario.Steps {
		if step.Match != "" && strings.Contains(lower, strings.ToLower(step.Match)) {
			return stepReply(step), nil
		}
	}

	for c.next < len(c.scenario.Steps) {
		step := c.scenario.Steps[c.next]
		c.next++
		if step.Match != "" {
			continue // match-only steps never play sequentially
		}
		return stepReply(step), nil
	}

	return Reply{Text: "That's all this scenario knows. Try asking about the demo graph."}, nil
}

func stepReply(step ScenarioStep) Reply {
	return Reply{Text: strings.TrimSpace(step.Reply), Graph: strings.TrimSpace(step.Graph)}
}

// DemoScenario is the built-in scenario used when neither an API key nor a
// scenario file is configured.
func DemoScenario() Scenario {
	return Scenario{Steps: []ScenarioStep{
		{
			Match: "graph",
			Reply: "Here is the service topology. Click a node for its attributes.",
			Graph: `{
  "nodes": [
    {"id": "gateway", "kind": "edge", "region": "eu-west"},
    {"id": "orders", "kind": "service", "lang": "go"},
    {"id": "billing", "kind": "service", "lang": "go"},
    {"id": "inventory", "kind": "service", "lang": "kotlin"},
    {"id": "postgres", "kind": "store"},
    {"id": "redis", "kind": "cache"},
    {"id": "kafka", "kind": "broker"}
  ],
  "edges": [
    {"source": "gateway", "target": "orders", "proto": "http"},
    {"source": "gateway", "target": "billing", "proto": "http"},
    {"source": "orders", "target": "postgres"},
    {"source": "orders", "target": "redis"},
    {"source": "orders", "target": "kafka", "topic": "order-events"},
    {"source": "billing", "target": "postgres"},
    {"source": "billing", "target": "kafka", "topic": "invoices"},
    {"source": "inventory", "target": "kafka", "topic": "order-events"},
    {"source": "inventory", "target": "postgres"}
  ]
}`,
		},
		{
			Reply: "Hi! Ask me to show you a graph and I'll render one you can pan, zoom and drag.",
		},
	}}
}
