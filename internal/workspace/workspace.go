// Package workspace is the composition root of the panel workspace. It owns
// one instance of each shared service (sync bus, content registry, filter
// coordinator, layout model, panel state store) and mounts the panels of the
// current layout, wiring each panel's content to its state and to layout
// actions.
package workspace

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"estatedash/internal/filters"
	"estatedash/internal/geometry"
	"estatedash/internal/kv"
	"estatedash/internal/layout"
	"estatedash/internal/panelstate"
	"estatedash/internal/registry"
	"estatedash/internal/syncbus"
	"estatedash/internal/telemetry"
)

// Events broadcast by the workspace itself.
const (
	EventFiltersChanged = "filters:changed"
	EventLayoutChanged  = "layout:changed"
	EventPanelAction    = "panel:action"
)

// Source is the Event.Source of workspace-originated events.
const Source = "workspace"

// Options configure New.
type Options struct {
	// Name namespaces workspace-scoped panel state.
	Name string
	// Store backs panel state, filters and saved layouts. Nil keeps
	// everything in memory.
	Store kv.Store
	// DefaultLayout is shown at start and restored by ResetLayout.
	DefaultLayout layout.Type
	// Persist enables panel state persistence.
	Persist bool
	Tracer  *telemetry.Tracer
}

// Workspace coordinates a layout, its mounted panels and shared services.
// Safe for concurrent use.
type Workspace struct {
	Bus      *syncbus.Bus
	Registry *registry.Registry
	Filters  *filters.Coordinator
	Layout   *layout.Model

	states  *panelstate.Store
	persist bool
	tracer  *telemetry.Tracer

	mu     sync.Mutex
	panels map[string]*Panel
	order  []string

	unsubscribe func()
}

// New builds a workspace and mounts its default layout.
func New(opts Options) (*Workspace, error) {
	store := opts.Store
	if store == nil {
		store = kv.NewMemory()
	}
	w := &Workspace{
		Bus:      syncbus.New(),
		Registry: registry.New(),
		Filters:  filters.New(store),
		Layout:   layout.NewModel(store, opts.DefaultLayout),
		states:   panelstate.NewStore(store, opts.Name),
		persist:  opts.Persist,
		tracer:   opts.Tracer,
		panels:   make(map[string]*Panel),
	}
	w.unsubscribe = w.Filters.OnChange(func(set filters.FilterSet) {
		w.Broadcast(EventFiltersChanged, set, Source)
	})
	if err := w.mount(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Close detaches the workspace from its filter coordinator.
func (w *Workspace) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}

// InitContent resolves content implementations into the registry and
// returns the content types that failed.
func (w *Workspace) InitContent(resolvers map[registry.ContentType]registry.Resolver) []registry.ContentType {
	_, span := w.tracer.Start(context.Background(), "registry.initialize")
	defer span.End()
	failed := w.Registry.Initialize(resolvers)
	for _, t := range failed {
		log.Printf("workspace.InitContent: %q unavailable", t)
	}
	return failed
}

// Broadcast publishes an event on the workspace bus.
func (w *Workspace) Broadcast(eventType string, payload any, source string) {
	_, span := w.tracer.Start(context.Background(), "bus.broadcast", "event.type", eventType, "event.source", source)
	defer span.End()
	w.Bus.Broadcast(eventType, payload, source)
}

// Panels returns the mounted panels in layout order.
func (w *Workspace) Panels() []*Panel {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Panel, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.panels[id])
	}
	return out
}

// Panel returns the mounted panel with the given id.
func (w *Workspace) Panel(id string) (*Panel, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.panels[id]
	return p, ok
}

// mount reconciles mounted panels with the current layout. Panels that stay
// (same id and content type) keep their state handle; new ones are
// initialized from storage; removed ones are dropped.
func (w *Workspace) mount() error {
	cfg := w.Layout.Current()
	if err := layout.Validate(cfg); err != nil {
		return fmt.Errorf("mount layout: %w", err)
	}

	w.mu.Lock()
	next := make(map[string]*Panel, len(cfg.Panels))
	order := make([]string, 0, len(cfg.Panels))
	var fresh []*Panel
	for _, pc := range cfg.Panels {
		p, ok := w.panels[pc.ID]
		if ok && p.Config.ContentType == pc.ContentType {
			p.setConfig(pc)
		} else {
			p = w.newPanel(pc)
			fresh = append(fresh, p)
		}
		next[pc.ID] = p
		order = append(order, pc.ID)
	}
	w.panels = next
	w.order = order
	w.mu.Unlock()

	if cfg.Type == layout.Advanced {
		for _, p := range fresh {
			w.restoreRect(p)
		}
	}
	w.syncMaximized()
	return nil
}

func (w *Workspace) newPanel(pc layout.PanelConfig) *Panel {
	p := &Panel{ws: w, Config: pc}
	p.State = w.states.Init(panelstate.Options{
		PanelID:      pc.ID,
		ContentType:  string(pc.ContentType),
		InitialState: pc.InitialState,
		Persist:      w.persist,
	})
	return p
}

// restoreRect applies a persisted freeform rectangle to the layout.
func (w *Workspace) restoreRect(p *Panel) {
	pos, okPos := p.State.Position()
	size, okSize := p.State.Size()
	if !okPos || !okSize {
		return
	}
	r := layout.Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
	if err := w.Layout.SetPanelRect(p.ID(), r); err != nil {
		log.Printf("workspace.restoreRect: %v", err)
	}
}

// syncMaximized mirrors the layout's maximize state into each panel's
// isMaximized flag.
func (w *Workspace) syncMaximized() {
	maxID, _ := w.Layout.Maximized()
	for _, p := range w.Panels() {
		p.State.SetMaximized(p.ID() == maxID)
	}
}

// HandleAction dispatches a panel-level action to the layout and
// re-mounts.
func (w *Workspace) HandleAction(panelID string, action registry.Action) error {
	_, span := w.tracer.Start(context.Background(), "panel.action", "panel.id", panelID, "panel.action", string(action))
	defer span.End()
	if err := w.Layout.HandlePanelAction(panelID, action); err != nil {
		span.RecordError(err)
		return err
	}
	w.syncMaximized()
	w.Broadcast(EventPanelAction, ActionEvent{PanelID: panelID, Action: action}, panelID)
	return nil
}

// ActionEvent is the payload of EventPanelAction.
type ActionEvent struct {
	PanelID string
	Action  registry.Action
}

// SelectLayout makes the built-in or saved layout with the given id current.
func (w *Workspace) SelectLayout(id string) error {
	return w.changeLayout("layout.select", func() error { return w.Layout.Select(id) }, "layout.id", id)
}

// SwitchLayout changes the layout type, preserving panels by content type.
func (w *Workspace) SwitchLayout(t layout.Type) error {
	return w.changeLayout("layout.switch", func() error { return w.Layout.SwitchType(t) }, "layout.type", string(t))
}

// ApplyLayout validates cfg and makes it current. Duplicate panel ids are
// rejected with layout.ErrDuplicatePanel.
func (w *Workspace) ApplyLayout(cfg layout.LayoutConfig) error {
	return w.changeLayout("layout.apply", func() error { return w.Layout.Apply(cfg) }, "layout.id", cfg.ID)
}

// SaveLayout stores the current layout under name and makes the saved copy
// current.
func (w *Workspace) SaveLayout(name string) (layout.LayoutConfig, error) {
	var saved layout.LayoutConfig
	err := w.changeLayout("layout.save", func() error {
		cfg, err := w.Layout.Save(name)
		saved = cfg
		return err
	}, "layout.name", name)
	return saved, err
}

// ImportLayout adds a TOML layout document to the saved layouts and
// selects it.
func (w *Workspace) ImportLayout(data []byte) (layout.LayoutConfig, error) {
	cfg, err := w.Layout.Import(data)
	if err != nil {
		return layout.LayoutConfig{}, fmt.Errorf("import layout: %w", err)
	}
	return cfg, w.SelectLayout(cfg.ID)
}

// ResetLayout reverts to the default layout and clears position, size and
// maximized flags of every panel in the workspace, mounted or only stored.
func (w *Workspace) ResetLayout() {
	for _, p := range w.Panels() {
		p.State.ClearTransient()
	}
	w.clearStoredTransient()
	err := w.changeLayout("layout.reset", func() error {
		w.Layout.Reset()
		return nil
	})
	if err != nil {
		log.Printf("workspace.ResetLayout: %v", err)
	}
}

// clearStoredTransient drops the layout-owned keys from the persisted state
// of panels that are not mounted, so a later mount does not restore them.
func (w *Workspace) clearStoredTransient() {
	if !w.persist {
		return
	}
	for _, id := range w.states.PanelIDs(false) {
		if _, mounted := w.Panel(id); mounted {
			continue
		}
		rec, ok := w.states.Load(id, false)
		if !ok {
			continue
		}
		w.states.Init(panelstate.Options{PanelID: id, ContentType: rec.ContentType, Persist: true}).ClearTransient()
	}
}

func (w *Workspace) changeLayout(name string, change func() error, attrs ...string) error {
	from := w.Layout.Current()
	_, span := w.tracer.Start(context.Background(), name, append(attrs, "layout.from", string(from.Type))...)
	defer span.End()

	if err := change(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := w.mount(); err != nil {
		span.RecordError(err)
		return err
	}
	cur := w.Layout.Current()
	w.Broadcast(EventLayoutChanged, cur, Source)
	return nil
}

// LoadPreset applies a saved filter preset.
func (w *Workspace) LoadPreset(id string) error {
	_, span := w.tracer.Start(context.Background(), "filters.load", "preset.id", id)
	defer span.End()
	if err := w.Filters.Load(id); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// MovePanel records a freeform panel's new placement, in percent of the
// workspace, in both the layout and the panel's persisted state.
func (w *Workspace) MovePanel(panelID string, r layout.Rect) error {
	p, ok := w.Panel(panelID)
	if !ok {
		return fmt.Errorf("move %q: %w", panelID, layout.ErrUnknownPanel)
	}
	if err := w.Layout.SetPanelRect(panelID, r); err != nil {
		return err
	}
	clamped, _ := w.Layout.PanelRect(panelID)
	p.State.UpdatePosition(geometry.Point{X: clamped.X, Y: clamped.Y})
	p.State.UpdateSize(geometry.Size{Width: clamped.Width, Height: clamped.Height})
	return nil
}

// Panel is a mounted layout panel.
type Panel struct {
	ws *Workspace

	mu     sync.Mutex
	Config layout.PanelConfig
	State  *panelstate.Handle
}

// ID returns the panel id.
func (p *Panel) ID() string { return p.State.ID() }

// Title returns the panel title, falling back to the content type's title.
func (p *Panel) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Config.Title != "" {
		return p.Config.Title
	}
	return layout.Title(p.Config.ContentType)
}

// ContentType returns what the panel shows.
func (p *Panel) ContentType() registry.ContentType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Config.ContentType
}

func (p *Panel) setConfig(pc layout.PanelConfig) {
	p.mu.Lock()
	p.Config = pc
	p.mu.Unlock()
}

// Props builds the content invocation contract for a width x height body.
func (p *Panel) Props(width, height int) registry.Props {
	p.mu.Lock()
	initial := p.Config.InitialState
	p.mu.Unlock()
	id := p.ID()
	return registry.Props{
		PanelID:       id,
		InitialState:  initial,
		State:         p.State.State(),
		Width:         width,
		Height:        height,
		OnStateChange: p.State.UpdateState,
		OnAction: func(action registry.Action) {
			if err := p.ws.HandleAction(id, action); err != nil {
				log.Printf("workspace.Panel.OnAction: %v", err)
			}
		},
	}
}

// Content returns the registered implementation for the panel.
func (p *Panel) Content() (registry.Content, bool) {
	return p.ws.Registry.Get(p.ContentType())
}

// Render draws the panel body. Unregistered content renders a placeholder.
func (p *Panel) Render(width, height int) string {
	c, ok := p.Content()
	if !ok {
		return fmt.Sprintf("%s content is unavailable", p.ContentType())
	}
	return c.Render(p.Props(width, height))
}

// HandleKey forwards a key to interactive content.
func (p *Panel) HandleKey(key string, width, height int) bool {
	c, ok := p.Content()
	if !ok {
		return false
	}
	ic, ok := c.(registry.Interactive)
	if !ok {
		return false
	}
	return ic.HandleKey(p.Props(width, height), key)
}

// PanelIDs lists the ids of every mounted panel, for diagnostics.
func (w *Workspace) PanelIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.order)
}
