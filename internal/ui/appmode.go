package ui

import "estatedash/internal/layout"

// AppMode selects which bindings apply. Tiled layouts place panels in fixed
// slots; freeform (advanced) layouts let panels be moved and resized.
type AppMode int

const (
	ModeTiled AppMode = iota
	ModeFreeform
)

func (m AppMode) String() string {
	switch m {
	case ModeTiled:
		return "Tiled"
	case ModeFreeform:
		return "Freeform"
	default:
		return "Unknown"
	}
}

// modeFor returns the mode matching a layout type.
func modeFor(t layout.Type) AppMode {
	if t == layout.Advanced {
		return ModeFreeform
	}
	return ModeTiled
}
