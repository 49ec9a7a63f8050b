package workspace

import (
	"context"
	"errors"
	"testing"

	"estatedash/internal/filters"
	"estatedash/internal/kv"
	"estatedash/internal/layout"
	"estatedash/internal/registry"
	"estatedash/internal/syncbus"
	"estatedash/internal/telemetry"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mapID      = layout.PanelID(registry.TypeMap)
	propertyID = layout.PanelID(registry.TypeProperty)
)

func newTestWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	if opts.DefaultLayout == "" {
		opts.DefaultLayout = layout.Dual
	}
	w, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func record(w *Workspace, eventType string) *[]syncbus.Event {
	var events []syncbus.Event
	w.Bus.SubscribeType(eventType, func(ev syncbus.Event) { events = append(events, ev) })
	return &events
}

func TestNew_MountsDefaultLayout(t *testing.T) {
	w := newTestWorkspace(t, Options{DefaultLayout: layout.Dual})
	assert.Equal(t, []string{mapID, propertyID}, w.PanelIDs())

	p, ok := w.Panel(mapID)
	require.True(t, ok)
	assert.Equal(t, "Map", p.Title())
	assert.Equal(t, registry.TypeMap, p.ContentType())
}

func TestWorkspaces_AreIsolated(t *testing.T) {
	a := newTestWorkspace(t, Options{})
	b := newTestWorkspace(t, Options{})
	got := record(b, "ping")

	a.Broadcast("ping", nil, "x")
	assert.Empty(t, *got)
	assert.NotSame(t, a.Registry, b.Registry)
}

func TestFilterChanges_AreBroadcast(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	got := record(w, EventFiltersChanged)

	w.Filters.Merge(filters.FilterSet{"geographic": {"state": "TX"}})
	w.Filters.Clear()

	require.Len(t, *got, 2)
	assert.Equal(t, Source, (*got)[0].Source)
	assert.Equal(t, filters.FilterSet{"geographic": {"state": "TX"}}, (*got)[0].Payload)
	assert.Equal(t, filters.FilterSet{}, (*got)[1].Payload)

	w.Close()
	w.Filters.Clear()
	assert.Len(t, *got, 2, "closed workspace stops broadcasting")
}

func TestHandleAction_MaximizeAThenB(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	actions := record(w, EventPanelAction)

	require.NoError(t, w.HandleAction(mapID, layout.ActionMaximize))
	require.NoError(t, w.HandleAction(propertyID, layout.ActionMaximize))

	a, _ := w.Panel(mapID)
	b, _ := w.Panel(propertyID)
	assert.False(t, a.State.Maximized(), "A is implicitly restored")
	assert.True(t, b.State.Maximized())
	id, _ := w.Layout.Maximized()
	assert.Equal(t, propertyID, id)

	require.Len(t, *actions, 2)
	assert.Equal(t, ActionEvent{PanelID: propertyID, Action: layout.ActionMaximize}, (*actions)[1].Payload)
	assert.Equal(t, propertyID, (*actions)[1].Source)

	assert.ErrorIs(t, w.HandleAction("ghost", layout.ActionMaximize), layout.ErrUnknownPanel)
}

func TestSwitchLayout_KeepsPreservedPanelState(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	changes := record(w, EventLayoutChanged)

	before, _ := w.Panel(mapID)
	before.State.UpdateState(map[string]any{"zoom": 6.0})

	require.NoError(t, w.SwitchLayout(layout.Quad))
	assert.Len(t, w.Panels(), 4)

	after, ok := w.Panel(mapID)
	require.True(t, ok)
	assert.Same(t, before, after)
	assert.Equal(t, 6.0, after.State.State()["zoom"])

	require.Len(t, *changes, 1)
	assert.Equal(t, layout.Quad, (*changes)[0].Payload.(layout.LayoutConfig).Type)

	require.NoError(t, w.SwitchLayout(layout.Single))
	_, ok = w.Panel(propertyID)
	assert.False(t, ok, "panels without a slot are unmounted")
}

func TestApplyLayout_RejectsDuplicatePanelIDs(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	err := w.ApplyLayout(layout.LayoutConfig{ID: "dup", Name: "Dup", Type: layout.Advanced, Panels: []layout.PanelConfig{
		{ID: "p", ContentType: registry.TypeMap},
		{ID: "p", ContentType: registry.TypeStats},
	}})
	assert.ErrorIs(t, err, layout.ErrDuplicatePanel)
	assert.Equal(t, []string{mapID, propertyID}, w.PanelIDs())
}

func TestMovePanel_PersistsAcrossRestart(t *testing.T) {
	store := kv.NewMemory()
	opts := Options{Name: "austin", Store: store, DefaultLayout: layout.Advanced, Persist: true}
	w := newTestWorkspace(t, opts)

	require.NoError(t, w.MovePanel(mapID, layout.Rect{X: 95, Y: 10, Width: 20, Height: 30}))
	r, _ := w.Layout.PanelRect(mapID)
	assert.Equal(t, layout.Rect{X: 80, Y: 10, Width: 20, Height: 30}, r)

	restarted := newTestWorkspace(t, opts)
	r, ok := restarted.Layout.PanelRect(mapID)
	require.True(t, ok)
	assert.Equal(t, layout.Rect{X: 80, Y: 10, Width: 20, Height: 30}, r)

	other := newTestWorkspace(t, Options{Name: "dallas", Store: store, DefaultLayout: layout.Advanced, Persist: true})
	r, _ = other.Layout.PanelRect(mapID)
	assert.Equal(t, *layout.Default(layout.Advanced).Panels[0].Rect, r, "state is scoped per workspace")

	assert.ErrorIs(t, w.MovePanel("ghost", layout.Rect{}), layout.ErrUnknownPanel)
}

func TestMovePanel_FixedLayout(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	assert.ErrorIs(t, w.MovePanel(mapID, layout.Rect{}), layout.ErrNotFreeform)
}

func TestResetLayout(t *testing.T) {
	w := newTestWorkspace(t, Options{DefaultLayout: layout.Advanced})
	require.NoError(t, w.MovePanel(mapID, layout.Rect{X: 1, Y: 1, Width: 10, Height: 10}))
	require.NoError(t, w.HandleAction(mapID, layout.ActionMaximize))
	p, _ := w.Panel(mapID)
	p.State.UpdateState(map[string]any{"zoom": 4.0})

	w.ResetLayout()

	_, maximized := w.Layout.Maximized()
	assert.False(t, maximized)
	assert.Equal(t, layout.Default(layout.Advanced), w.Layout.Current())
	assert.Equal(t, map[string]any{"zoom": 4.0}, p.State.State(), "custom keys survive a layout reset")
}

func TestResetLayout_ClearsUnmountedPanelGeometry(t *testing.T) {
	w := newTestWorkspace(t, Options{DefaultLayout: layout.Advanced, Persist: true})
	require.NoError(t, w.MovePanel(propertyID, layout.Rect{X: 5, Y: 5, Width: 20, Height: 20}))
	require.NoError(t, w.SwitchLayout(layout.Single))
	_, mounted := w.Panel(propertyID)
	require.False(t, mounted)

	w.ResetLayout()

	r, ok := w.Layout.PanelRect(propertyID)
	require.True(t, ok)
	assert.Equal(t, *layout.Default(layout.Advanced).Panels[1].Rect, r)

	p, ok := w.Panel(propertyID)
	require.True(t, ok)
	_, hasPos := p.State.Position()
	assert.False(t, hasPos, "stored position is cleared")
	_, hasSize := p.State.Size()
	assert.False(t, hasSize, "stored size is cleared")
}

type counterContent struct {
	keys []string
}

func (c *counterContent) Render(props registry.Props) string {
	return props.PanelID
}

func (c *counterContent) HandleKey(props registry.Props, key string) bool {
	c.keys = append(c.keys, key)
	props.OnStateChange(map[string]any{"lastKey": key})
	if key == "m" {
		props.OnAction(layout.ActionMaximize)
	}
	return true
}

func TestPanelContent(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	p, _ := w.Panel(mapID)
	assert.Equal(t, "map content is unavailable", p.Render(10, 5))
	assert.False(t, p.HandleKey("x", 10, 5))

	content := &counterContent{}
	failed := w.InitContent(map[registry.ContentType]registry.Resolver{
		registry.TypeMap:   func() (registry.Content, error) { return content, nil },
		registry.TypeStats: func() (registry.Content, error) { return nil, errors.New("no assets") },
		registry.TypeProperty: func() (registry.Content, error) {
			return registry.ContentFunc(func(registry.Props) string { return "plain" }), nil
		},
	})
	assert.Equal(t, []registry.ContentType{registry.TypeStats}, failed)

	assert.Equal(t, mapID, p.Render(10, 5))
	assert.True(t, p.HandleKey("m", 10, 5))
	assert.Equal(t, []string{"m"}, content.keys)
	assert.Equal(t, "m", p.State.State()["lastKey"])
	id, _ := w.Layout.Maximized()
	assert.Equal(t, mapID, id, "OnAction reaches the layout")

	prop, _ := w.Panel(propertyID)
	assert.False(t, prop.HandleKey("x", 10, 5), "non-interactive content ignores keys")
}

func TestTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	w := newTestWorkspace(t, Options{Tracer: telemetry.New(tp)})
	require.NoError(t, w.SwitchLayout(layout.Quad))
	assert.Error(t, w.LoadPreset("missing"))

	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "layout.switch")
	assert.Contains(t, names, "bus.broadcast")
	assert.Contains(t, names, "filters.load")
}

func TestSaveLayout_BecomesCurrentAndKeepsPanels(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	before, ok := w.Panel(mapID)
	require.True(t, ok)
	changes := record(w, EventLayoutChanged)

	saved, err := w.SaveLayout("Morning review")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, w.Layout.Current().ID)
	assert.Len(t, *changes, 1)

	after, ok := w.Panel(mapID)
	require.True(t, ok)
	assert.Same(t, before, after)

	_, err = w.SaveLayout("  ")
	assert.Error(t, err)
}

func TestImportLayout_SelectsImported(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	doc := []byte(`
id = "shared"
name = "Shared"
layoutType = "single"

[[panels]]
id = "only-chart"
contentType = "chart"
`)
	cfg, err := w.ImportLayout(doc)
	require.NoError(t, err)
	assert.NotEqual(t, "shared", cfg.ID, "imports get a fresh id")
	assert.Equal(t, layout.Single, w.Layout.Current().Type)
	assert.Equal(t, []string{"only-chart"}, w.PanelIDs())

	_, err = w.ImportLayout([]byte("not toml ["))
	assert.Error(t, err)
	assert.Equal(t, []string{"only-chart"}, w.PanelIDs(), "a failed import leaves the layout alone")
}
