package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// canvas is a fixed-size screen region that blocks are painted onto in
// order, later blocks covering earlier ones. Freeform panels may overlap,
// so frames cannot simply be joined.
type canvas struct {
	width int
	rows  []string
}

func newCanvas(width, height int) *canvas {
	width, height = max(width, 0), max(height, 0)
	rows := make([]string, height)
	blank := strings.Repeat(" ", width)
	for i := range rows {
		rows[i] = blank
	}
	return &canvas{width: width, rows: rows}
}

// paint draws block with its top-left corner at (x, y). Parts falling
// outside the canvas are clipped.
func (c *canvas) paint(x, y int, block string) {
	if block == "" || x >= c.width {
		return
	}
	for i, line := range strings.Split(block, "\n") {
		row := y + i
		if row < 0 || row >= len(c.rows) {
			continue
		}
		if x < 0 {
			line = ansi.Cut(line, -x, ansi.StringWidth(line))
		}
		start := max(x, 0)
		line = ansi.Truncate(line, c.width-start, "")
		end := start + ansi.StringWidth(line)

		cur := c.rows[row]
		c.rows[row] = ansi.Truncate(cur, start, "") + line + ansi.Cut(cur, end, c.width)
	}
}

func (c *canvas) String() string {
	return strings.Join(c.rows, "\n")
}
