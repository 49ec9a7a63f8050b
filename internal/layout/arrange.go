package layout

import (
	"math"
	"slices"
)

// Placement is a panel's rectangle in terminal cells.
type Placement struct {
	Panel     PanelConfig
	X, Y      int
	Width     int
	Height    int
	Maximized bool
}

// Arrange lays out the visible panels of the current layout in a
// width x height area. Fixed layouts tile their slots; advanced layouts
// convert percentage rectangles, clamped to the area. Placements are in
// render order: list order, stably sorted by ZIndex. A maximized panel
// takes the whole area and is the only placement.
func (m *Model) Arrange(width, height int) []Placement {
	m.mu.Lock()
	defer m.mu.Unlock()

	width, height = max(width, 0), max(height, 0)
	if idx := m.current.index(m.maximized); idx >= 0 {
		return []Placement{{
			Panel:     m.current.Panels[idx].clone(),
			Width:     width,
			Height:    height,
			Maximized: true,
		}}
	}

	out := make([]Placement, 0, len(m.current.Panels))
	for i, p := range m.current.Panels {
		if !p.IsVisible() {
			continue
		}
		r, ok := m.rects[p.ID]
		if !ok {
			r, ok = panelRect(m.current.Type, i, p)
		}
		if !ok {
			continue
		}
		x0, x1 := toCells(r.X, r.X+r.Width, width)
		y0, y1 := toCells(r.Y, r.Y+r.Height, height)
		out = append(out, Placement{
			Panel:  p.clone(),
			X:      x0,
			Y:      y0,
			Width:  x1 - x0,
			Height: y1 - y0,
		})
	}
	slices.SortStableFunc(out, func(a, b Placement) int {
		return a.Panel.ZIndex - b.Panel.ZIndex
	})
	return out
}

// toCells converts a [from,to] percent span to cell offsets within total.
// Adjacent spans share their edge so tiles never gap or overlap.
func toCells(from, to float64, total int) (int, int) {
	conv := func(pct float64) int {
		c := int(math.Round(clampf(pct, 0, 100) * float64(total) / 100))
		return min(max(c, 0), total)
	}
	return conv(from), conv(to)
}
