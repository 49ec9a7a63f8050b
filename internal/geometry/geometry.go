// Package geometry is the pure core behind panel drag and resize.
//
// Nothing here knows about terminals or mouse events: callers feed pointer
// coordinates in and get positions and sizes out. Units are whatever the
// caller uses (terminal cells in the ui package). Out-of-range results are
// clamped, never rejected, so no function in this package returns an error.
package geometry

// Point is a position or a pointer coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds constrains a dragged element to its parent.
type Bounds struct {
	Parent  Size
	Element Size
}

// MaxPosition is the largest top-left corner that keeps the element inside
// the parent. When the element is larger than the parent the limit is 0.
func (b Bounds) MaxPosition() Point {
	return Point{
		X: max(0, b.Parent.Width-b.Element.Width),
		Y: max(0, b.Parent.Height-b.Element.Height),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
