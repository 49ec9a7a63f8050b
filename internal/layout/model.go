package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"estatedash/internal/jsonutil"
	"estatedash/internal/kv"
	"estatedash/internal/registry"

	"github.com/google/uuid"
)

// SavedKey is the storage key of the saved layouts array.
const SavedKey = "layouts:saved"

// Panel-level actions understood by HandlePanelAction.
const (
	ActionMaximize       registry.Action = "maximize"
	ActionRestore        registry.Action = "restore"
	ActionToggleMaximize registry.Action = "toggle-maximize"
	ActionClose          registry.Action = "close"
	ActionShow           registry.Action = "show"
)

// ErrUnknownAction is returned by HandlePanelAction for unsupported actions.
var ErrUnknownAction = errors.New("unknown panel action")

// ErrNotFreeform is returned by SetPanelRect outside advanced layouts.
var ErrNotFreeform = errors.New("layout is not freeform")

// Model holds the workspace's current layout, the user's saved layouts and
// transient per-panel flags (which panel is maximized, ad hoc rectangles
// from dragging and resizing). Safe for concurrent use.
type Model struct {
	mu          sync.Mutex
	store       kv.Store
	defaultType Type
	saved       []LayoutConfig
	current     LayoutConfig
	maximized   string
	rects       map[string]Rect
	now         func() time.Time
	newID       func() string
}

// NewModel creates a Model showing the built-in layout of defaultType and
// loads saved layouts from store. A nil store keeps saved layouts in memory.
func NewModel(store kv.Store, defaultType Type) *Model {
	if _, ok := ParseType(string(defaultType)); !ok {
		defaultType = Dual
	}
	return &Model{
		store:       store,
		defaultType: defaultType,
		saved:       loadSaved(store),
		current:     Default(defaultType),
		rects:       make(map[string]Rect),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Current returns a copy of the active layout with ad hoc rectangles applied.
func (m *Model) Current() LayoutConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// snapshot must be called with m.mu held.
func (m *Model) snapshot() LayoutConfig {
	c := m.current.Clone()
	for i, p := range c.Panels {
		if r, ok := m.rects[p.ID]; ok {
			c.Panels[i].Rect = &r
		}
	}
	return c
}

// Layouts returns the built-in layouts followed by saved ones.
func (m *Model) Layouts() []LayoutConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Defaults()
	for _, c := range m.saved {
		out = append(out, c.Clone())
	}
	return out
}

// Select makes the built-in or saved layout with the given id current.
// Maximize state and ad hoc rectangles are cleared.
func (m *Model) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.lookup(id)
	if !ok {
		return fmt.Errorf("select layout %q: not found", id)
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("select layout: %w", err)
	}
	m.apply(cfg)
	return nil
}

// Apply makes cfg current after validating it.
func (m *Model) Apply(cfg LayoutConfig) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("apply layout: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(cfg.Clone())
	return nil
}

// apply must be called with m.mu held.
func (m *Model) apply(cfg LayoutConfig) {
	m.current = cfg
	m.maximized = ""
	clear(m.rects)
}

// lookup must be called with m.mu held.
func (m *Model) lookup(id string) (LayoutConfig, bool) {
	for _, t := range Types() {
		if DefaultID(t) == id {
			return Default(t), true
		}
	}
	for _, c := range m.saved {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return LayoutConfig{}, false
}

// SwitchType changes the arrangement to t, preserving panels whose content
// type has a slot in the new layout. A preserved panel keeps its id, title,
// initial state and visibility; its geometry comes from the new layout.
// Switching to the current type is a no-op.
func (m *Model) SwitchType(t Type) error {
	if _, ok := ParseType(string(t)); !ok {
		return fmt.Errorf("switch layout: unknown layout type %q", t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Type == t {
		return nil
	}

	next := Default(t)
	used := make([]bool, len(m.current.Panels))
	for i, slotPanel := range next.Panels {
		j := -1
		for k, p := range m.current.Panels {
			if !used[k] && p.ContentType == slotPanel.ContentType {
				j = k
				break
			}
		}
		if j < 0 {
			continue
		}
		used[j] = true
		prev := m.current.Panels[j].clone()
		slotPanel.ID = prev.ID
		slotPanel.Title = prev.Title
		slotPanel.InitialState = prev.InitialState
		slotPanel.Visible = prev.Visible
		next.Panels[i] = slotPanel
	}

	// Two preserved panels may now share an id with an untouched default slot.
	seen := make(map[string]bool, len(next.Panels))
	for i, p := range next.Panels {
		if seen[p.ID] {
			next.Panels[i].ID = fmt.Sprintf("%s-%d", p.ID, i+1)
		}
		seen[next.Panels[i].ID] = true
	}

	maximized := m.maximized
	m.apply(next)
	if next.index(maximized) >= 0 {
		m.maximized = maximized
	}
	return nil
}

// Save stores the current layout under name with a new id and timestamps
// and makes the saved copy current.
func (m *Model) Save(name string) (LayoutConfig, error) {
	if strings.TrimSpace(name) == "" {
		return LayoutConfig{}, errors.New("layout name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	cfg := m.snapshot()
	cfg.ID = m.newID()
	cfg.Name = name
	cfg.CreatedAt = &now
	cfg.UpdatedAt = &now

	m.saved = append(m.saved, cfg.Clone())
	saveSaved(m.store, m.saved)

	m.current = cfg.Clone()
	clear(m.rects)
	return cfg, nil
}

// Import decodes a TOML layout document, validates it and adds it to the
// saved layouts under a fresh id.
func (m *Model) Import(data []byte) (LayoutConfig, error) {
	cfg, err := DecodeTOML(data)
	if err != nil {
		return LayoutConfig{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	cfg.ID = m.newID()
	if cfg.CreatedAt == nil {
		cfg.CreatedAt = &now
	}
	cfg.UpdatedAt = &now
	m.saved = append(m.saved, cfg.Clone())
	saveSaved(m.store, m.saved)
	return cfg, nil
}

// DeleteSaved removes a saved layout. Built-in layouts cannot be deleted.
// The current layout is left as is.
func (m *Model) DeleteSaved(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := slices.IndexFunc(m.saved, func(c LayoutConfig) bool { return c.ID == id })
	if idx < 0 {
		return false
	}
	m.saved = slices.Delete(m.saved, idx, idx+1)
	saveSaved(m.store, m.saved)
	return true
}

// HandlePanelAction is the single dispatch point for panel-level actions.
//
//	maximize X: normal or maximizedBy(Y) -> maximizedBy(X)
//	restore X:  maximizedBy(X) -> normal; otherwise unchanged
//	close X:    hides X, and restores if X was maximized
//	show X:     makes X visible again
func (m *Model) HandlePanelAction(panelID string, action registry.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.current.index(panelID)
	if idx < 0 {
		return fmt.Errorf("%s %q: %w", action, panelID, ErrUnknownPanel)
	}
	switch action {
	case ActionMaximize:
		m.maximized = panelID
		m.setVisible(idx, true)
	case ActionRestore:
		if m.maximized == panelID {
			m.maximized = ""
		}
	case ActionToggleMaximize:
		if m.maximized == panelID {
			m.maximized = ""
		} else {
			m.maximized = panelID
			m.setVisible(idx, true)
		}
	case ActionClose:
		m.setVisible(idx, false)
		if m.maximized == panelID {
			m.maximized = ""
		}
	case ActionShow:
		m.setVisible(idx, true)
	default:
		return fmt.Errorf("%q on %q: %w", action, panelID, ErrUnknownAction)
	}
	return nil
}

// setVisible must be called with m.mu held.
func (m *Model) setVisible(idx int, v bool) {
	m.current.Panels[idx].Visible = &v
}

// Maximized returns the id of the maximized panel, if any.
func (m *Model) Maximized() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maximized, m.maximized != ""
}

// Reset reverts to the default layout and clears maximize state and ad hoc
// rectangles for the whole workspace.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(Default(m.defaultType))
}

// SetPanelRect records an ad hoc rectangle for a panel of an advanced
// layout. The rectangle is clamped to the canvas.
func (m *Model) SetPanelRect(panelID string, r Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Type != Advanced {
		return fmt.Errorf("set rect of %q: %w", panelID, ErrNotFreeform)
	}
	if m.current.index(panelID) < 0 {
		return fmt.Errorf("set rect of %q: %w", panelID, ErrUnknownPanel)
	}
	m.rects[panelID] = r.Clamp()
	return nil
}

// PanelRect returns the effective percentage rectangle of a panel: its ad
// hoc rectangle, its configured one, or its fixed slot.
func (m *Model) PanelRect(panelID string) (Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.current.index(panelID)
	if idx < 0 {
		return Rect{}, false
	}
	if r, ok := m.rects[panelID]; ok {
		return r, true
	}
	return panelRect(m.current.Type, idx, m.current.Panels[idx])
}

func panelRect(t Type, i int, p PanelConfig) (Rect, bool) {
	if t.Fixed() {
		return slotRect(t, i, p)
	}
	if p.Rect == nil {
		return Rect{}, false
	}
	return p.Rect.Clamp(), true
}

// decodeSaved decodes entries one at a time so one bad entry does not drop
// the others.
func decodeSaved(data []byte) ([]LayoutConfig, error) {
	raw, err := jsonutil.UnmarshalArrayAllowEmpty[json.RawMessage](data, "decode saved layouts")
	if err != nil {
		return nil, err
	}
	out := make([]LayoutConfig, 0, len(raw))
	for _, item := range raw {
		var cfg LayoutConfig
		if err := json.Unmarshal(item, &cfg); err != nil {
			log.Printf("layout.decodeSaved: skipping unreadable layout: %v", err)
			continue
		}
		if err := Validate(cfg); err != nil {
			log.Printf("layout.decodeSaved: skipping invalid layout: %v", err)
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}

func loadSaved(store kv.Store) []LayoutConfig {
	if store == nil {
		return nil
	}
	data, ok, err := store.Get(SavedKey)
	if err != nil {
		log.Printf("layout.loadSaved: failed to read %q: %v", SavedKey, err)
		return nil
	}
	if !ok {
		return nil
	}
	saved, err := decodeSaved(data)
	if err != nil {
		log.Printf("layout.loadSaved: ignoring malformed %q: %v", SavedKey, err)
		return nil
	}
	return saved
}

func saveSaved(store kv.Store, saved []LayoutConfig) {
	if store == nil {
		return
	}
	if saved == nil {
		saved = []LayoutConfig{}
	}
	data, err := json.Marshal(saved)
	if err != nil {
		log.Printf("layout.saveSaved: failed to encode: %v", err)
		return
	}
	if err := store.Set(SavedKey, data); err != nil {
		log.Printf("layout.saveSaved: failed to write %q: %v", SavedKey, err)
	}
}
