package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasSetLightsBrailleDots(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0, "")
	c.Set(1, 3, "")

	got := c.Render()
	// Top-left dot (0x01) plus bottom-right dot (0x80) of the first cell.
	want := string(rune(0x2800|0x01|0x80)) + " "
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0, "")
	c.Set(0, -1, "")
	c.Set(4, 0, "")
	c.Set(0, 8, "")
	if got := c.Render(); strings.TrimSpace(strings.ReplaceAll(got, "\n", "")) != "" {
		t.Fatalf("out-of-range writes leaked into %q", got)
	}
}

func TestCanvasLineTouchesEndpoints(t *testing.T) {
	c := NewCanvas(10, 4)
	c.Line(0, 0, 19, 15, "")

	got := c.Render()
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d rows, want 4", len(lines))
	}
	if lines[0] == strings.Repeat(" ", 10) {
		t.Fatal("line start row is empty")
	}
	if lines[3] == strings.Repeat(" ", 10) {
		t.Fatal("line end row is empty")
	}
}

func TestCanvasTextOverridesPixels(t *testing.T) {
	c := NewCanvas(10, 2)
	for px := 0; px < 20; px++ {
		c.Set(px, 2, "")
	}
	c.WriteText(2, 0, "api", lipgloss.NewStyle())

	row := strings.Split(c.Render(), "\n")[0]
	if !strings.Contains(row, "api") {
		t.Fatalf("text overlay missing from %q", row)
	}
}

func TestCanvasTextClipsAtEdges(t *testing.T) {
	c := NewCanvas(5, 1)
	c.WriteText(3, 0, "abcdef", lipgloss.NewStyle())
	c.WriteText(-2, 0, "xyz", lipgloss.NewStyle())
	c.WriteText(0, 5, "off", lipgloss.NewStyle())

	got := c.Render()
	if len([]rune(got)) != 5 {
		t.Fatalf("render width %d, want 5: %q", len([]rune(got)), got)
	}
	if !strings.HasPrefix(got, "z") {
		t.Fatalf("left-clipped run should keep its tail, got %q", got)
	}
	if !strings.Contains(got, "ab") || strings.Contains(got, "abc") {
		t.Fatalf("right clip wrong in %q", got)
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 1)
	c.Set(0, 0, "")
	c.WriteText(1, 0, "x", lipgloss.NewStyle())
	c.Clear()
	if got := c.Render(); got != "   " {
		t.Fatalf("got %q after Clear, want blank", got)
	}
}
