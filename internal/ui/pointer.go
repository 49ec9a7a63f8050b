package ui

import (
	"estatedash/internal/geometry"
	"estatedash/internal/layout"
)

// Hit zones of a panel frame.
const (
	zoneNone   = ""
	zoneBody   = "body"
	zoneTitle  = "title"
	zoneBorder = "border"
)

// hitTest reports which part of placement p the cell (x, y) falls on. The
// top border and title row are the drag handle; the other borders and the
// bottom corners are resize handles.
func hitTest(p layout.Placement, x, y int) (string, geometry.Direction) {
	if x < p.X || y < p.Y || x >= p.X+p.Width || y >= p.Y+p.Height {
		return zoneNone, ""
	}
	right, bottom := p.X+p.Width-1, p.Y+p.Height-1
	switch {
	case x == right && y == bottom:
		return zoneBorder, geometry.Corner
	case x == p.X && y == bottom:
		return zoneBorder, geometry.BottomLeft
	case y == p.Y || y == p.Y+1:
		return zoneTitle, ""
	case x == right:
		return zoneBorder, geometry.Right
	case x == p.X:
		return zoneBorder, geometry.Left
	case y == bottom:
		return zoneBorder, geometry.Bottom
	default:
		return zoneBody, ""
	}
}

// Gesture is a panel's placement, in cells, while it is being moved or
// resized.
type Gesture struct {
	PanelID  string
	Position geometry.Point
	Size     geometry.Size
}

// Percent converts g to a layout rectangle in percent of area.
func (g Gesture) Percent(area geometry.Size) layout.Rect {
	pct := func(v, total float64) float64 {
		if total <= 0 {
			return 0
		}
		return v / total * 100
	}
	return layout.Rect{
		X:      pct(g.Position.X, area.Width),
		Y:      pct(g.Position.Y, area.Height),
		Width:  pct(g.Size.Width, area.Width),
		Height: pct(g.Size.Height, area.Height),
	}
}

// Pointer turns mouse press, motion and release into drag and resize
// gestures on freeform panels. Motion and release are only acted on while
// a gesture started by a press is active.
type Pointer struct {
	drag   geometry.DragSession
	resize geometry.ResizeSession
	start  Gesture
}

// NewPointer creates a pointer adapter. Resizes never shrink a panel below
// minSize cells.
func NewPointer(minSize geometry.Size) *Pointer {
	p := &Pointer{}
	p.drag.Handle = zoneTitle
	p.resize.MinSize = minSize
	return p
}

// Press handles a button press at (x, y) over placements in render order.
// It returns the id of the topmost panel under the pointer, if any, and
// whether a drag or resize began. Gestures start only when freeform is set
// and the panel is not maximized.
func (p *Pointer) Press(placements []layout.Placement, area geometry.Size, x, y int, freeform bool) (string, bool) {
	if p.Active() {
		return p.start.PanelID, false
	}
	for i := len(placements) - 1; i >= 0; i-- {
		pl := placements[i]
		zone, dir := hitTest(pl, x, y)
		if zone == zoneNone {
			continue
		}
		if !freeform || pl.Maximized {
			return pl.Panel.ID, false
		}
		pointer := geometry.Point{X: float64(x), Y: float64(y)}
		p.start = Gesture{
			PanelID:  pl.Panel.ID,
			Position: geometry.Point{X: float64(pl.X), Y: float64(pl.Y)},
			Size:     geometry.Size{Width: float64(pl.Width), Height: float64(pl.Height)},
		}
		switch zone {
		case zoneTitle:
			bounds := &geometry.Bounds{Parent: area, Element: p.start.Size}
			return pl.Panel.ID, p.drag.Begin(pointer, zone, p.start.Position, bounds)
		case zoneBorder:
			return pl.Panel.ID, p.resize.Begin(dir, pointer, p.start.Size)
		}
		return pl.Panel.ID, false
	}
	return "", false
}

// Motion updates the active gesture. ok is false when no gesture is active.
func (p *Pointer) Motion(x, y int) (Gesture, bool) {
	pointer := geometry.Point{X: float64(x), Y: float64(y)}
	g := p.start
	if pos, ok := p.drag.Move(pointer); ok {
		g.Position = pos
		return g, true
	}
	if size, ok := p.resize.Move(pointer); ok {
		g.Size = size
		return g, true
	}
	return Gesture{}, false
}

// Release finishes the active gesture and returns the final placement. ok
// is false when no gesture is active.
func (p *Pointer) Release(x, y int) (Gesture, bool) {
	pointer := geometry.Point{X: float64(x), Y: float64(y)}
	g := p.start
	if pos, ok := p.drag.End(pointer); ok {
		g.Position = pos
		return g, true
	}
	if size, ok := p.resize.End(pointer); ok {
		g.Size = size
		return g, true
	}
	return Gesture{}, false
}

// Active reports whether a drag or resize is in progress.
func (p *Pointer) Active() bool {
	return p.drag.Active() || p.resize.Active()
}

// Preview returns the in-progress placement of the panel being moved or
// resized.
func (p *Pointer) Preview() (Gesture, bool) {
	g := p.start
	switch {
	case p.drag.Active():
		g.Position = p.drag.Current()
	case p.resize.Active():
		g.Size = p.resize.Current()
	default:
		return Gesture{}, false
	}
	return g, true
}
