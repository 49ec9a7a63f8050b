package panelstate

import (
	"sync"

	"estatedash/internal/geometry"
	"estatedash/internal/jsonutil"
)

// Options configure Store.Init.
type Options struct {
	PanelID      string
	ContentType  string
	InitialState map[string]any
	// Persist enables storage. When false the store is never touched.
	Persist bool
	// Global stores the record outside the workspace namespace.
	Global bool
	// OnStateChange receives only the keys an update changed.
	OnStateChange func(changed map[string]any)
}

// Handle is a mounted panel's view of its state.
// Every method is atomic with respect to the others; safe for concurrent use.
type Handle struct {
	mu      sync.Mutex
	store   *Store
	opts    Options
	initial map[string]any
	state   map[string]any
}

// Init builds the panel's state: a copy of InitialState with any persisted
// top-level keys laid over it.
func (s *Store) Init(opts Options) *Handle {
	initial := jsonutil.CloneMap(opts.InitialState)
	if initial == nil {
		initial = map[string]any{}
	}
	state := jsonutil.CloneMap(initial)
	if opts.Persist {
		if rec, ok := s.Load(opts.PanelID, opts.Global); ok {
			for k, v := range rec.State {
				state[k] = v
			}
		}
	}
	return &Handle{store: s, opts: opts, initial: initial, state: state}
}

// ID returns the panel id.
func (h *Handle) ID() string { return h.opts.PanelID }

// State returns a copy of the current state.
func (h *Handle) State() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return jsonutil.CloneMap(h.state)
}

// UpdateState shallow-merges partial into the state.
func (h *Handle) UpdateState(partial map[string]any) {
	if len(partial) == 0 {
		return
	}
	changed := jsonutil.CloneMap(partial)
	h.update(func(state map[string]any) map[string]any {
		for k, v := range changed {
			state[k] = jsonutil.CloneValue(v)
		}
		return changed
	})
}

// update runs fn on the state under the lock and persists the result there,
// so stored versions follow update order. fn returns the changed keys; none
// means nothing is saved or reported.
func (h *Handle) update(fn func(state map[string]any) map[string]any) {
	h.mu.Lock()
	changed := fn(h.state)
	if len(changed) > 0 {
		h.persist(h.state)
	}
	h.mu.Unlock()

	if len(changed) > 0 && h.opts.OnStateChange != nil {
		h.opts.OnStateChange(changed)
	}
}

// UpdatePosition sets the position key.
func (h *Handle) UpdatePosition(p geometry.Point) {
	h.UpdateState(map[string]any{KeyPosition: map[string]any{"x": p.X, "y": p.Y}})
}

// UpdateSize sets the size key.
func (h *Handle) UpdateSize(sz geometry.Size) {
	h.UpdateState(map[string]any{KeySize: map[string]any{"width": sz.Width, "height": sz.Height}})
}

// ToggleMaximized flips the maximized flag and returns the new value.
func (h *Handle) ToggleMaximized() bool {
	var next bool
	h.update(func(state map[string]any) map[string]any {
		next = !jsonutil.GetBool(state, KeyMaximized)
		state[KeyMaximized] = next
		return map[string]any{KeyMaximized: next}
	})
	return next
}

// SetMaximized sets the maximized flag; a no-op when it already has that value.
func (h *Handle) SetMaximized(v bool) {
	h.update(func(state map[string]any) map[string]any {
		if jsonutil.GetBool(state, KeyMaximized) == v {
			return nil
		}
		state[KeyMaximized] = v
		return map[string]any{KeyMaximized: v}
	})
}

// ResetState restores the original InitialState, discarding persisted and
// in-memory changes, and deletes the stored record.
func (h *Handle) ResetState() {
	h.mu.Lock()
	h.state = jsonutil.CloneMap(h.initial)
	restored := jsonutil.CloneMap(h.initial)
	if h.opts.Persist {
		_ = h.store.Delete(h.opts.PanelID, h.opts.Global)
	}
	h.mu.Unlock()

	if h.opts.OnStateChange != nil {
		h.opts.OnStateChange(restored)
	}
}

// ClearTransient drops the layout-owned keys (position, size, maximized
// flag), falling back to their initial values when the panel was created with
// any. Custom keys are kept. OnStateChange receives the affected keys, with
// nil for keys that were removed.
func (h *Handle) ClearTransient() {
	h.update(func(state map[string]any) map[string]any {
		changed := make(map[string]any)
		for _, k := range []string{KeyPosition, KeySize, KeyMaximized} {
			init, hasInit := h.initial[k]
			_, has := state[k]
			switch {
			case hasInit:
				state[k] = jsonutil.CloneValue(init)
				changed[k] = jsonutil.CloneValue(init)
			case has:
				delete(state, k)
				changed[k] = nil
			}
		}
		return changed
	})
}

// Maximized reports the maximized flag.
func (h *Handle) Maximized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return jsonutil.GetBool(h.state, KeyMaximized)
}

// Position decodes the position key; ok is false when unset or malformed.
func (h *Handle) Position() (geometry.Point, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := jsonutil.GetMap(h.state, KeyPosition)
	x, okX := jsonutil.GetNumber(m, "x")
	y, okY := jsonutil.GetNumber(m, "y")
	if !okX || !okY {
		return geometry.Point{}, false
	}
	return geometry.Point{X: x, Y: y}, true
}

// Size decodes the size key; ok is false when unset or malformed.
func (h *Handle) Size() (geometry.Size, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := jsonutil.GetMap(h.state, KeySize)
	w, okW := jsonutil.GetNumber(m, "width")
	ht, okH := jsonutil.GetNumber(m, "height")
	if !okW || !okH {
		return geometry.Size{}, false
	}
	return geometry.Size{Width: w, Height: ht}, true
}

func (h *Handle) persist(state map[string]any) {
	if !h.opts.Persist {
		return
	}
	_ = h.store.Save(h.opts.PanelID, h.opts.ContentType, state, h.opts.Global)
}
