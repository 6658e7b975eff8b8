package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cells pack a 2x4 pixel grid into one terminal cell, giving the
// graph pane double the horizontal and quadruple the vertical resolution of
// plain character drawing. dotBits maps (dx, dy) within a cell to the
// corresponding bit of the braille codepoint (U+2800 + bits).
var dotBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type textRun struct {
	x, y  int
	text  string
	style lipgloss.Style
}

type cell struct {
	dots  rune
	color lipgloss.Color
}

// Canvas is a braille pixel buffer with a text overlay. Pixel coordinates
// run from (0,0) top-left to (2*cols-1, 4*rows-1); writes outside the
// buffer are discarded.
type Canvas struct {
	cols, rows int
	cells      []cell
	runs       []textRun
}

// NewCanvas allocates a canvas of the given size in terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
}

// PixelWidth returns the horizontal pixel resolution.
func (c *Canvas) PixelWidth() int { return c.cols * 2 }

// PixelHeight returns the vertical pixel resolution.
func (c *Canvas) PixelHeight() int { return c.rows * 4 }

// Clear resets all pixels and text runs.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
	c.runs = c.runs[:0]
}

// Set lights one pixel. The last color written to any pixel of a cell wins
// for the whole cell.
func (c *Canvas) Set(px, py int, color lipgloss.Color) {
	if px < 0 || py < 0 || px >= c.PixelWidth() || py >= c.PixelHeight() {
		return
	}
	i := (py/4)*c.cols + px/2
	c.cells[i].dots |= dotBits[px%2][py%4]
	c.cells[i].color = color
}

// Dot lights a 2x2 pixel block centered near the point, which reads as a
// filled marker at braille resolution.
func (c *Canvas) Dot(px, py int, color lipgloss.Color) {
	for dx := 0; dx < 2; dx++ {
		for dy := 0; dy < 2; dy++ {
			c.Set(px-1+dx, py-1+dy, color)
		}
	}
}

// Line draws a Bresenham line between two pixel points.
func (c *Canvas) Line(x0, y0, x1, y1 float64, color lipgloss.Color) {
	ix0, iy0 := int(math.Round(x0)), int(math.Round(y0))
	ix1, iy1 := int(math.Round(x1)), int(math.Round(y1))

	dx := abs(ix1 - ix0)
	dy := -abs(iy1 - iy0)
	sx, sy := 1, 1
	if ix0 > ix1 {
		sx = -1
	}
	if iy0 > iy1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.Set(ix0, iy0, color)
		if ix0 == ix1 && iy0 == iy1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			ix0 += sx
		}
		if e2 <= dx {
			err += dx
			iy0 += sy
		}
	}
}

// WriteText places a styled string at a cell position, on top of any
// braille content. Later runs overwrite earlier ones where they overlap.
func (c *Canvas) WriteText(cellX, cellY int, text string, style lipgloss.Style) {
	if cellY < 0 || cellY >= c.rows || text == "" {
		return
	}
	if cellX < 0 {
		r := []rune(text)
		if -cellX >= len(r) {
			return
		}
		text = string(r[-cellX:])
		cellX = 0
	}
	if cellX >= c.cols {
		return
	}
	if r := []rune(text); cellX+len(r) > c.cols {
		text = string(r[:c.cols-cellX])
	}
	c.runs = append(c.runs, textRun{x: cellX, y: cellY, text: text, style: style})
}

// Render flattens the buffer into terminal lines.
func (c *Canvas) Render() string {
	// Text overlay, resolved per cell. Styles are kept per run so a label
	// renders as one styled span.
	type overlayCell struct {
		run int
		idx int
	}
	overlay := map[int]overlayCell{}
	for ri, run := range c.runs {
		for i, n := 0, len([]rune(run.text)); i < n; i++ {
			overlay[run.y*c.cols+run.x+i] = overlayCell{run: ri, idx: i}
		}
	}

	var sb strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < c.cols; x++ {
			i := y*c.cols + x
			if oc, ok := overlay[i]; ok {
				run := c.runs[oc.run]
				r := []rune(run.text)[oc.idx]
				sb.WriteString(run.style.Render(string(r)))
				continue
			}
			cl := c.cells[i]
			if cl.dots == 0 {
				sb.WriteByte(' ')
				continue
			}
			ch := string(0x2800 + cl.dots)
			if cl.color != "" {
				ch = lipgloss.NewStyle().Foreground(cl.color).Render(ch)
			}
			sb.WriteString(ch)
		}
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
