package geometry

// DragStart captures the element position and pointer at pointer-down.
type DragStart struct {
	Position Point
	Pointer  Point
}

// Drag computes the element position for the current pointer:
// start position + (pointer - pointer at start), clamped per axis to
// [0, parent - element] when bounds are given.
func Drag(start DragStart, pointer Point, bounds *Bounds) Point {
	pos := start.Position.Add(pointer.Sub(start.Pointer))
	if bounds == nil {
		return pos
	}
	limit := bounds.MaxPosition()
	return Point{
		X: clamp(pos.X, 0, limit.X),
		Y: clamp(pos.Y, 0, limit.Y),
	}
}

// DragState is the state of a DragSession.
type DragState int

const (
	DragIdle DragState = iota
	Dragging
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// DragSession is the idle/dragging state machine for one draggable element.
type DragSession struct {
	// Handle, when set, restricts drags to pointer-downs whose target matches it.
	Handle string
	// OnDragEnd receives the final position on pointer-up.
	OnDragEnd func(Point)

	state   DragState
	start   DragStart
	bounds  *Bounds
	current Point
}

// Begin starts a drag at pointer if target matches the handle.
// Returns false (and stays idle) when gated out or already dragging.
func (s *DragSession) Begin(pointer Point, target string, position Point, bounds *Bounds) bool {
	if s.state == Dragging {
		return false
	}
	if s.Handle != "" && target != s.Handle {
		return false
	}
	s.state = Dragging
	s.start = DragStart{Position: position, Pointer: pointer}
	if bounds != nil {
		b := *bounds
		s.bounds = &b
	} else {
		s.bounds = nil
	}
	s.current = position
	return true
}

// Move updates the position for a pointer move. ok is false when idle.
func (s *DragSession) Move(pointer Point) (Point, bool) {
	if s.state != Dragging {
		return Point{}, false
	}
	s.current = Drag(s.start, pointer, s.bounds)
	return s.current, true
}

// End finishes the drag at pointer, returns to idle and reports the final
// position to OnDragEnd. ok is false when idle.
func (s *DragSession) End(pointer Point) (Point, bool) {
	if s.state != Dragging {
		return Point{}, false
	}
	final := Drag(s.start, pointer, s.bounds)
	s.state = DragIdle
	s.bounds = nil
	s.current = final
	if s.OnDragEnd != nil {
		s.OnDragEnd(final)
	}
	return final, true
}

// State reports idle or dragging.
func (s *DragSession) State() DragState { return s.state }

// Active reports whether a drag is in progress.
func (s *DragSession) Active() bool { return s.state == Dragging }

// Current returns the most recently computed position.
func (s *DragSession) Current() Point { return s.current }
