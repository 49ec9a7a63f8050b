package geometry

import "testing"

func TestDrag_FollowsPointerDelta(t *testing.T) {
	start := DragStart{Position: Point{X: 10, Y: 5}, Pointer: Point{X: 40, Y: 20}}
	got := Drag(start, Point{X: 47, Y: 18}, nil)
	want := Point{X: 17, Y: 3}
	if got != want {
		t.Errorf("Drag: expected %+v, got %+v", want, got)
	}
}

func TestDrag_UnboundedAllowsNegative(t *testing.T) {
	start := DragStart{Position: Point{X: 2, Y: 2}, Pointer: Point{X: 10, Y: 10}}
	got := Drag(start, Point{X: 0, Y: 0}, nil)
	if got.X != -8 || got.Y != -8 {
		t.Errorf("Drag without bounds should not clamp, got %+v", got)
	}
}

func TestDrag_ClampsToParent(t *testing.T) {
	bounds := &Bounds{Parent: Size{Width: 100, Height: 40}, Element: Size{Width: 30, Height: 10}}
	start := DragStart{Position: Point{X: 50, Y: 20}, Pointer: Point{X: 50, Y: 20}}

	tests := []struct {
		name    string
		pointer Point
		want    Point
	}{
		{"inside", Point{X: 60, Y: 25}, Point{X: 60, Y: 25}},
		{"past right/bottom", Point{X: 500, Y: 500}, Point{X: 70, Y: 30}},
		{"past left/top", Point{X: -500, Y: -500}, Point{X: 0, Y: 0}},
		{"mixed", Point{X: -10, Y: 200}, Point{X: 0, Y: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Drag(start, tt.pointer, bounds); got != tt.want {
				t.Errorf("Drag(%+v): expected %+v, got %+v", tt.pointer, tt.want, got)
			}
		})
	}
}

func TestDrag_NeverLeavesBounds(t *testing.T) {
	bounds := &Bounds{Parent: Size{Width: 80, Height: 24}, Element: Size{Width: 20, Height: 8}}
	start := DragStart{Position: Point{X: 30, Y: 8}, Pointer: Point{X: 35, Y: 10}}
	limit := bounds.MaxPosition()

	for x := -100.0; x <= 200; x += 7 {
		for y := -50.0; y <= 80; y += 5 {
			p := Drag(start, Point{X: x, Y: y}, bounds)
			if p.X < 0 || p.X > limit.X || p.Y < 0 || p.Y > limit.Y {
				t.Fatalf("pointer (%v,%v) produced out-of-bounds position %+v", x, y, p)
			}
		}
	}
}

func TestDrag_ElementLargerThanParent(t *testing.T) {
	bounds := &Bounds{Parent: Size{Width: 10, Height: 10}, Element: Size{Width: 20, Height: 20}}
	start := DragStart{Position: Point{}, Pointer: Point{}}
	if got := Drag(start, Point{X: 5, Y: 5}, bounds); got != (Point{}) {
		t.Errorf("oversized element should pin at origin, got %+v", got)
	}
}

func TestDragSession_Lifecycle(t *testing.T) {
	var ended []Point
	s := &DragSession{OnDragEnd: func(p Point) { ended = append(ended, p) }}

	if s.State() != DragIdle {
		t.Fatalf("expected idle, got %v", s.State())
	}
	if _, ok := s.Move(Point{X: 1, Y: 1}); ok {
		t.Error("Move while idle should report ok=false")
	}

	if !s.Begin(Point{X: 10, Y: 10}, "", Point{X: 2, Y: 3}, nil) {
		t.Fatal("Begin without handle should start dragging")
	}
	if !s.Active() || s.State().String() != "dragging" {
		t.Fatalf("expected dragging, got %v", s.State())
	}
	if s.Begin(Point{}, "", Point{}, nil) {
		t.Error("Begin while dragging should be ignored")
	}

	if p, ok := s.Move(Point{X: 12, Y: 15}); !ok || p != (Point{X: 4, Y: 8}) {
		t.Errorf("Move: got %+v ok=%v", p, ok)
	}

	final, ok := s.End(Point{X: 20, Y: 10})
	if !ok || final != (Point{X: 12, Y: 3}) {
		t.Errorf("End: got %+v ok=%v", final, ok)
	}
	if s.Active() {
		t.Error("expected idle after End")
	}
	if len(ended) != 1 || ended[0] != final {
		t.Errorf("OnDragEnd: expected one call with %+v, got %v", final, ended)
	}

	if _, ok := s.End(Point{}); ok {
		t.Error("End while idle should report ok=false")
	}
	if len(ended) != 1 {
		t.Errorf("OnDragEnd should not fire when idle, got %d calls", len(ended))
	}
}

func TestDragSession_HandleGate(t *testing.T) {
	s := &DragSession{Handle: "title"}
	if s.Begin(Point{}, "body", Point{}, nil) {
		t.Error("pointer-down outside handle should not start a drag")
	}
	if s.Active() {
		t.Error("expected idle")
	}
	if !s.Begin(Point{}, "title", Point{}, nil) {
		t.Error("pointer-down on handle should start a drag")
	}
}

func TestDragSession_BoundsCopied(t *testing.T) {
	bounds := &Bounds{Parent: Size{Width: 50, Height: 50}, Element: Size{Width: 10, Height: 10}}
	s := &DragSession{}
	s.Begin(Point{}, "", Point{}, bounds)
	bounds.Parent = Size{Width: 1000, Height: 1000}

	p, _ := s.Move(Point{X: 500, Y: 500})
	if p != (Point{X: 40, Y: 40}) {
		t.Errorf("bounds captured at Begin should apply, got %+v", p)
	}
}
