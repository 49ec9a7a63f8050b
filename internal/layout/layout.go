// Package layout describes how a workspace arranges its panels: fixed grids
// (single, dual, tri, quad) with a static slot count, and a freeform
// "advanced" layout of percentage rectangles that may overlap.
package layout

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
)

// Type is a layout arrangement scheme.
type Type string

const (
	Single   Type = "single"
	Dual     Type = "dual"
	Tri      Type = "tri"
	Quad     Type = "quad"
	Advanced Type = "advanced"
)

// Types lists every layout type in cycling order.
func Types() []Type {
	return []Type{Single, Dual, Tri, Quad, Advanced}
}

// ParseType converts s to a Type.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Types(), t) {
		return t, true
	}
	return "", false
}

// Slots returns the number of panels a fixed layout holds.
// Advanced layouts are unbounded and return 0.
func (t Type) Slots() int {
	return len(templates[t])
}

// Fixed reports whether t is a grid layout with a static slot count.
func (t Type) Fixed() bool { return t != Advanced && t.Slots() > 0 }

// GridPosition addresses a slot of a fixed layout.
type GridPosition struct {
	Row int `json:"row" toml:"row"`
	Col int `json:"col" toml:"col"`
}

// Rect is a freeform placement in percent of the workspace (0-100).
type Rect struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Clamp confines r to the [0,100] percent canvas.
func (r Rect) Clamp() Rect {
	r.Width = clampf(r.Width, 0, 100)
	r.Height = clampf(r.Height, 0, 100)
	r.X = clampf(r.X, 0, 100-r.Width)
	r.Y = clampf(r.Y, 0, 100-r.Height)
	return r
}

func clampf(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// PanelConfig declares one panel of a layout.
type PanelConfig struct {
	ID           string               `json:"id" toml:"id"`
	ContentType  registry.ContentType `json:"contentType" toml:"contentType"`
	Title        string               `json:"title" toml:"title"`
	Grid         *GridPosition        `json:"grid,omitempty" toml:"grid,omitempty"`
	Rect         *Rect                `json:"rect,omitempty" toml:"rect,omitempty"`
	ZIndex       int                  `json:"zIndex,omitempty" toml:"zIndex,omitempty"`
	InitialState map[string]any       `json:"initialState,omitempty" toml:"initialState,omitempty"`
	Visible      *bool                `json:"visible,omitempty" toml:"visible,omitempty"`
}

// IsVisible reports whether the panel is shown. Panels are visible unless
// explicitly hidden.
func (p PanelConfig) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

func (p PanelConfig) clone() PanelConfig {
	if p.Grid != nil {
		g := *p.Grid
		p.Grid = &g
	}
	if p.Rect != nil {
		r := *p.Rect
		p.Rect = &r
	}
	if p.Visible != nil {
		v := *p.Visible
		p.Visible = &v
	}
	p.InitialState = jsonutil.CloneMap(p.InitialState)
	return p
}

// LayoutConfig is a complete, selectable arrangement.
type LayoutConfig struct {
	ID        string        `json:"id" toml:"id"`
	Name      string        `json:"name" toml:"name"`
	Type      Type          `json:"layoutType" toml:"layoutType"`
	Panels    []PanelConfig `json:"panels" toml:"panels"`
	CreatedAt *time.Time    `json:"createdAt,omitempty" toml:"createdAt,omitempty"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty" toml:"updatedAt,omitempty"`
}

// Clone returns a deep copy of c.
func (c LayoutConfig) Clone() LayoutConfig {
	panels := make([]PanelConfig, len(c.Panels))
	for i, p := range c.Panels {
		panels[i] = p.clone()
	}
	c.Panels = panels
	if c.CreatedAt != nil {
		t := *c.CreatedAt
		c.CreatedAt = &t
	}
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

// Panel returns the panel with the given id.
func (c LayoutConfig) Panel(id string) (PanelConfig, bool) {
	i := c.index(id)
	if i < 0 {
		return PanelConfig{}, false
	}
	return c.Panels[i], true
}

func (c LayoutConfig) index(id string) int {
	return slices.IndexFunc(c.Panels, func(p PanelConfig) bool { return p.ID == id })
}

// Validation errors.
var (
	ErrDuplicatePanel = errors.New("duplicate panel id")
	ErrUnknownPanel   = errors.New("unknown panel")
)

// Validate checks that c can be applied to a workspace: it needs an id, a
// name, a known type, unique non-empty panel ids, and for fixed layouts no
// more panels than slots.
func Validate(c LayoutConfig) error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("layout: missing id")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("layout %q: missing name", c.ID)
	}
	if _, ok := ParseType(string(c.Type)); !ok {
		return fmt.Errorf("layout %q: unknown layout type %q", c.ID, c.Type)
	}
	if c.Type.Fixed() && len(c.Panels) > c.Type.Slots() {
		return fmt.Errorf("layout %q: %d panels exceed %d %s slots", c.ID, len(c.Panels), c.Type.Slots(), c.Type)
	}
	seen := make(map[string]bool, len(c.Panels))
	for _, p := range c.Panels {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("layout %q: panel without id", c.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("layout %q: %w %q", c.ID, ErrDuplicatePanel, p.ID)
		}
		seen[p.ID] = true
		if p.ContentType == "" {
			return fmt.Errorf("layout %q: panel %q has no content type", c.ID, p.ID)
		}
	}
	return nil
}

// slot is one cell of a fixed layout template, in percent.
type slot struct {
	Grid GridPosition
	Rect Rect
}

var templates = map[Type][]slot{
	Single: {
		{GridPosition{0, 0}, Rect{0, 0, 100, 100}},
	},
	Dual: {
		{GridPosition{0, 0}, Rect{0, 0, 50, 100}},
		{GridPosition{0, 1}, Rect{50, 0, 50, 100}},
	},
	Tri: {
		{GridPosition{0, 0}, Rect{0, 0, 50, 100}},
		{GridPosition{0, 1}, Rect{50, 0, 50, 50}},
		{GridPosition{1, 1}, Rect{50, 50, 50, 50}},
	},
	Quad: {
		{GridPosition{0, 0}, Rect{0, 0, 50, 50}},
		{GridPosition{0, 1}, Rect{50, 0, 50, 50}},
		{GridPosition{1, 0}, Rect{0, 50, 50, 50}},
		{GridPosition{1, 1}, Rect{50, 50, 50, 50}},
	},
}

// slotRect returns the template rectangle of the i-th panel of a fixed
// layout. An explicit grid position wins over list order.
func slotRect(t Type, i int, p PanelConfig) (Rect, bool) {
	tpl := templates[t]
	if p.Grid != nil {
		for _, s := range tpl {
			if s.Grid == *p.Grid {
				return s.Rect, true
			}
		}
	}
	if i < len(tpl) {
		return tpl[i].Rect, true
	}
	return Rect{}, false
}

// defaultContent is the slot content of each built-in fixed layout.
var defaultContent = map[Type][]registry.ContentType{
	Single: {registry.TypeMap},
	Dual:   {registry.TypeMap, registry.TypeProperty},
	Tri:    {registry.TypeMap, registry.TypeProperty, registry.TypeStats},
	Quad:   {registry.TypeMap, registry.TypeProperty, registry.TypeFilter, registry.TypeStats},
}

var titles = map[registry.ContentType]string{
	registry.TypeMap:      "Map",
	registry.TypeState:    "States",
	registry.TypeCounty:   "Counties",
	registry.TypeProperty: "Properties",
	registry.TypeFilter:   "Filters",
	registry.TypeStats:    "Statistics",
	registry.TypeChart:    "Price Chart",
}

// Title returns the display title for a content type.
func Title(ct registry.ContentType) string {
	if t, ok := titles[ct]; ok {
		return t
	}
	return string(ct)
}

// PanelID returns the default panel id for a content type.
func PanelID(ct registry.ContentType) string {
	return "panel-" + string(ct)
}

// DefaultID returns the id of the built-in layout of type t.
func DefaultID(t Type) string {
	return "default-" + string(t)
}

// Default returns the built-in layout of type t.
func Default(t Type) LayoutConfig {
	if t == Advanced {
		return LayoutConfig{
			ID:   DefaultID(Advanced),
			Name: "Freeform",
			Type: Advanced,
			Panels: []PanelConfig{
				newPanel(registry.TypeMap, nil, &Rect{0, 0, 60, 100}),
				newPanel(registry.TypeProperty, nil, &Rect{60, 0, 40, 60}),
				newPanel(registry.TypeChart, nil, &Rect{50, 55, 50, 45}),
			},
		}
	}
	cts := defaultContent[t]
	panels := make([]PanelConfig, len(cts))
	for i, ct := range cts {
		g := templates[t][i].Grid
		panels[i] = newPanel(ct, &g, nil)
	}
	return LayoutConfig{
		ID:     DefaultID(t),
		Name:   strings.ToUpper(string(t[:1])) + string(t[1:]),
		Type:   t,
		Panels: panels,
	}
}

// Defaults returns one built-in layout per type.
func Defaults() []LayoutConfig {
	out := make([]LayoutConfig, 0, len(Types()))
	for _, t := range Types() {
		out = append(out, Default(t))
	}
	return out
}

func newPanel(ct registry.ContentType, g *GridPosition, r *Rect) PanelConfig {
	return PanelConfig{
		ID:          PanelID(ct),
		ContentType: ct,
		Title:       Title(ct),
		Grid:        g,
		Rect:        r,
	}
}

// FromContentMap builds a layout of type t whose panels show the given
// content types, each seeded with its initial state. Built-in content types
// come first in their canonical order, then any others sorted by name.
// Fixed layouts keep at most Slots() panels; advanced layouts cascade every
// entry across the canvas.
func FromContentMap(t Type, contents map[registry.ContentType]map[string]any) LayoutConfig {
	cfg := LayoutConfig{ID: DefaultID(t), Name: Default(t).Name, Type: t}
	for i, ct := range orderedTypes(contents) {
		var p PanelConfig
		switch {
		case t.Fixed():
			if i >= t.Slots() {
				return cfg
			}
			g := templates[t][i].Grid
			p = newPanel(ct, &g, nil)
		default:
			off := float64(i%6) * 8
			p = newPanel(ct, nil, &Rect{X: off, Y: off, Width: 50, Height: 50})
			p.ZIndex = i
		}
		p.InitialState = jsonutil.CloneMap(contents[ct])
		cfg.Panels = append(cfg.Panels, p)
	}
	return cfg
}

func orderedTypes(contents map[registry.ContentType]map[string]any) []registry.ContentType {
	var out []registry.ContentType
	for _, ct := range registry.BuiltinTypes() {
		if _, ok := contents[ct]; ok {
			out = append(out, ct)
		}
	}
	var extra []registry.ContentType
	for ct := range contents {
		if !slices.Contains(out, ct) {
			extra = append(extra, ct)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
