package geometry

// Direction names the edge or corner a resize handle controls.
type Direction string

const (
	Corner      Direction = "corner" // bottom-right
	Right       Direction = "right"
	Bottom      Direction = "bottom"
	Left        Direction = "left"
	Top         Direction = "top"
	TopLeft     Direction = "top-left"
	TopRight    Direction = "top-right"
	BottomLeft  Direction = "bottom-left"
	BottomRight Direction = "bottom-right"
)

// ParseDirection maps a handle name to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(s); d {
	case Corner, Right, Bottom, Left, Top, TopLeft, TopRight, BottomLeft, BottomRight:
		return d, true
	default:
		return "", false
	}
}

// axes returns the width and height multipliers applied to the pointer delta.
func (d Direction) axes() (wx, hy float64) {
	switch d {
	case Corner, BottomRight:
		return 1, 1
	case Right:
		return 1, 0
	case Left:
		return -1, 0
	case Bottom:
		return 0, 1
	case Top:
		return 0, -1
	case TopLeft:
		return -1, -1
	case TopRight:
		return 1, -1
	case BottomLeft:
		return -1, 1
	default:
		return 0, 0
	}
}

// ResizeStart captures the handle, size and pointer at pointer-down.
type ResizeStart struct {
	Direction Direction
	Size      Size
	Pointer   Point
}

// Resize computes the size for the current pointer. Width follows the
// horizontal delta for right-side handles and its mirror for left-side ones;
// height likewise for bottom/top. The result is floored at minSize.
func Resize(start ResizeStart, pointer Point, minSize Size) Size {
	delta := pointer.Sub(start.Pointer)
	wx, hy := start.Direction.axes()
	return Size{
		Width:  max(minSize.Width, start.Size.Width+wx*delta.X),
		Height: max(minSize.Height, start.Size.Height+hy*delta.Y),
	}
}

// ResizeState is the state of a ResizeSession.
type ResizeState int

const (
	ResizeIdle ResizeState = iota
	Resizing
)

func (s ResizeState) String() string {
	switch s {
	case ResizeIdle:
		return "idle"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// ResizeSession is the idle/resizing(direction) state machine for one element.
type ResizeSession struct {
	MinSize     Size
	OnResizeEnd func(Size)

	state   ResizeState
	start   ResizeStart
	current Size
}

// Begin starts resizing from the given handle. Returns false when already
// resizing or the direction is unknown.
func (s *ResizeSession) Begin(dir Direction, pointer Point, size Size) bool {
	if s.state == Resizing {
		return false
	}
	if _, ok := ParseDirection(string(dir)); !ok {
		return false
	}
	s.state = Resizing
	s.start = ResizeStart{Direction: dir, Size: size, Pointer: pointer}
	s.current = size
	return true
}

// Move updates the size for a pointer move. ok is false when idle.
func (s *ResizeSession) Move(pointer Point) (Size, bool) {
	if s.state != Resizing {
		return Size{}, false
	}
	s.current = Resize(s.start, pointer, s.MinSize)
	return s.current, true
}

// End finishes the resize, returns to idle and reports the final size to
// OnResizeEnd. ok is false when idle.
func (s *ResizeSession) End(pointer Point) (Size, bool) {
	if s.state != Resizing {
		return Size{}, false
	}
	final := Resize(s.start, pointer, s.MinSize)
	s.state = ResizeIdle
	s.current = final
	if s.OnResizeEnd != nil {
		s.OnResizeEnd(final)
	}
	return final, true
}

// State reports idle or resizing.
func (s *ResizeSession) State() ResizeState { return s.state }

// Direction returns the active handle; empty when idle.
func (s *ResizeSession) Direction() Direction {
	if s.state != Resizing {
		return ""
	}
	return s.start.Direction
}

// Active reports whether a resize is in progress.
func (s *ResizeSession) Active() bool { return s.state == Resizing }

// Current returns the most recently computed size.
func (s *ResizeSession) Current() Size { return s.current }
