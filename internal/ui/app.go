package ui

import (
	"errors"
	"fmt"
	"strings"

	"estatedash/internal/geometry"
	"estatedash/internal/layout"
	"estatedash/internal/syncbus"
	"estatedash/internal/ui/textutil"
	"estatedash/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statusHeight is the number of rows above the panel area.
const statusHeight = 1

// Options configure NewAppModel.
type Options struct {
	// Name is shown in the status bar.
	Name string
	// ExportDir receives exported layout files.
	ExportDir string
	// MinPanelSize bounds mouse resizes, in cells.
	MinPanelSize geometry.Size
}

// AppModel is the root model: it draws the workspace's panels and routes
// keys to the focused panel and mouse gestures to the pointer adapter.
type AppModel struct {
	Mode       AppMode
	Workspace  *workspace.Workspace
	KeyHandler *KeyHandler
	Focus      *FocusManager
	Pointer    *Pointer
	Overlays   OverlayStack

	name      string
	exportDir string
	width     int
	height    int
	status    string
	statusErr bool

	unsubscribe func()
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root application model for ws.
func NewAppModel(ws *workspace.Workspace, opts Options) *AppModel {
	reg := NewKeybindRegistry()
	bindDefaults(reg)
	a := &AppModel{
		Workspace:  ws,
		KeyHandler: NewKeyHandler(reg),
		Focus:      &FocusManager{},
		Pointer:    NewPointer(opts.MinPanelSize),
		name:       opts.Name,
		exportDir:  opts.ExportDir,
	}
	a.unsubscribe = ws.Bus.Subscribe(func(ev syncbus.Event) {
		if ev.Type == workspace.EventFiltersChanged || ev.Type == workspace.EventLayoutChanged {
			return
		}
		a.setStatus(fmt.Sprintf("%s from %s", ev.Type, ev.Source), false)
	})
	a.sync()
	return a
}

// Close detaches the model from the workspace bus.
func (m *AppModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.sync()
	return a, cmd
}

func (m *AppModel) update(msg tea.Msg) tea.Cmd {
	ws := m.Workspace
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return nil
	case tea.MouseMsg:
		if m.Overlays.Len() == 0 {
			m.handleMouse(msg)
		}
		return nil
	case tea.KeyMsg:
		if m.Overlays.Len() > 0 {
			cmd, _ := m.Overlays.UpdateTop(msg)
			return cmd
		}
		if m.KeyHandler != nil {
			if consumed, cmd := m.KeyHandler.Handle(msg); consumed {
				return cmd
			}
		}
		m.handleKey(msg.String())
		return nil

	case DismissModalMsg:
		m.Overlays.Pop()
	case StatusMsg:
		m.setStatus(msg.Text, msg.Err)

	case FocusMsg:
		if msg.Delta < 0 {
			m.Focus.Prev()
		} else {
			m.Focus.Next()
		}
	case SwitchLayoutMsg:
		m.report(ws.SwitchLayout(msg.Type), "layout: "+string(msg.Type))
	case SelectLayoutMsg:
		m.Overlays.Clear()
		err := ws.SelectLayout(msg.ID)
		m.report(err, "layout: "+ws.Layout.Current().Name)
	case PanelActionMsg:
		id := msg.PanelID
		if id == "" {
			id = m.Focus.Current
		}
		title := id
		if p, ok := ws.Panel(id); ok {
			title = p.Title()
		}
		m.report(ws.HandleAction(id, msg.Action), panelAction(title, msg.Action))
	case ShowHiddenPanelsMsg:
		m.showHidden()
	case NudgePanelMsg:
		m.nudge(msg.Rect)

	case ShowResetConfirmMsg:
		m.Overlays.Push(Overlay{View: NewResetLayoutConfirmModal(), Dismiss: "esc"})
	case ResetLayoutMsg:
		m.Overlays.Clear()
		ws.ResetLayout()
		m.setStatus("layout reset", false)
	case ShowLayoutPickerMsg:
		m.Overlays.Push(Overlay{View: NewLayoutPickerModal(ws.Layout.Layouts(), ws.Layout.Current().ID)})
	case ShowSaveLayoutMsg:
		modal := NewSaveLayoutModal()
		m.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
		return modal.Init()
	case SaveLayoutMsg:
		m.Overlays.Clear()
		cfg, err := ws.SaveLayout(msg.Name)
		m.report(err, "saved layout "+cfg.Name)
	case ShowImportLayoutMsg:
		modal := NewImportLayoutModal()
		m.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
		return modal.Init()
	case ImportLayoutMsg:
		m.Overlays.Clear()
		return readLayoutFileCmd(msg.Path)
	case LayoutFileReadMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("import layout: %v", msg.Err), true)
			return nil
		}
		cfg, err := ws.ImportLayout(msg.Data)
		m.report(err, "imported layout "+cfg.Name)
	case ExportLayoutMsg:
		if m.exportDir == "" {
			m.setStatus("export layout: no export directory configured", true)
			return nil
		}
		return writeLayoutFileCmd(m.exportDir, ws.Layout.Current())

	case ShowPresetPickerMsg:
		presets := ws.Filters.Saved()
		if len(presets) == 0 {
			m.setStatus("no saved filter presets", false)
			return nil
		}
		m.Overlays.Push(Overlay{View: NewPresetPickerModal(presets)})
	case LoadPresetMsg:
		m.Overlays.Clear()
		m.report(ws.LoadPreset(msg.ID), "preset loaded")
	case ClearFiltersMsg:
		ws.Filters.Clear()
		m.setStatus("filters cleared", false)

	default:
		if m.Overlays.Len() > 0 {
			cmd, _ := m.Overlays.UpdateTop(msg)
			return cmd
		}
	}
	return nil
}

// handleKey handles keys not claimed by bindings: esc leaves a maximized
// panel, everything else goes to the focused panel's content.
func (m *AppModel) handleKey(key string) {
	if key == "esc" {
		if id, ok := m.Workspace.Layout.Maximized(); ok {
			m.report(m.Workspace.HandleAction(id, layout.ActionRestore), "restored")
		}
		return
	}
	p, ok := m.Workspace.Panel(m.Focus.Current)
	if !ok {
		return
	}
	w, h := 0, 0
	if pl, ok := m.placement(p.ID()); ok {
		w, h = bodySize(pl.Width, pl.Height)
	}
	p.HandleKey(key, w, h)
}

func (m *AppModel) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X, msg.Y-statusHeight
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if id, _ := m.Pointer.Press(m.placements(), m.area(), x, y, m.Mode == ModeFreeform); id != "" {
			m.Focus.SetFocus(id)
		}
	case tea.MouseActionMotion:
		m.Pointer.Motion(x, y)
	case tea.MouseActionRelease:
		g, ok := m.Pointer.Release(x, y)
		if !ok {
			return
		}
		if err := m.Workspace.MovePanel(g.PanelID, g.Percent(m.area())); err != nil {
			m.setStatus(err.Error(), true)
		}
	}
}

// nudge moves or resizes the focused freeform panel by delta percent.
func (m *AppModel) nudge(delta layout.Rect) {
	id := m.Focus.Current
	r, ok := m.Workspace.Layout.PanelRect(id)
	if !ok {
		return
	}
	r.X += delta.X
	r.Y += delta.Y
	r.Width += delta.Width
	r.Height += delta.Height
	if err := m.Workspace.MovePanel(id, r); err != nil {
		if errors.Is(err, layout.ErrNotFreeform) {
			m.setStatus("panels can only be moved in the freeform layout", true)
			return
		}
		m.setStatus(err.Error(), true)
	}
}

func (m *AppModel) showHidden() {
	n := 0
	for _, pc := range m.Workspace.Layout.Current().Panels {
		if pc.IsVisible() {
			continue
		}
		if err := m.Workspace.HandleAction(pc.ID, layout.ActionShow); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		n++
	}
	m.setStatus(fmt.Sprintf("%d panel(s) shown", n), false)
}

// report sets the status line from the outcome of a workspace operation.
func (m *AppModel) report(err error, ok string) {
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(ok, false)
}

func (m *AppModel) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// sync refreshes the mode and focus order from the workspace's layout.
func (m *AppModel) sync() {
	m.Mode = modeFor(m.Workspace.Layout.Current().Type)
	if m.KeyHandler != nil {
		m.KeyHandler.Mode = m.Mode
	}
	placements := m.placements()
	ids := make([]string, 0, len(placements))
	for _, p := range placements {
		ids = append(ids, p.Panel.ID)
	}
	m.Focus.SetOrder(ids)
}

// area is the panel area in cells.
func (m *AppModel) area() geometry.Size {
	return geometry.Size{Width: float64(m.width), Height: float64(max(m.height-statusHeight, 0))}
}

func (m *AppModel) placements() []layout.Placement {
	a := m.area()
	return m.Workspace.Layout.Arrange(int(a.Width), int(a.Height))
}

func (m *AppModel) placement(id string) (layout.Placement, bool) {
	for _, p := range m.placements() {
		if p.Panel.ID == id {
			return p, true
		}
	}
	return layout.Placement{}, false
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}
	if a.Overlays.Len() > 0 {
		return a.Overlays.Render(a.width, a.height)
	}

	c := newCanvas(a.width, a.height-statusHeight)
	a.paintPanels(c)
	if a.KeyHandler != nil && a.KeyHandler.LeaderWaiting {
		if help := RenderKeybindHelp(a.KeyHandler, a.Mode, a.width); help != "" {
			c.paint(0, len(c.rows)-lipgloss.Height(help), help)
		}
	}
	return a.statusBar() + "\n" + c.String()
}

func (m *AppModel) paintPanels(c *canvas) {
	preview, dragging := m.Pointer.Preview()
	for _, pl := range m.placements() {
		p, ok := m.Workspace.Panel(pl.Panel.ID)
		if !ok {
			continue
		}
		x, y, w, h := pl.X, pl.Y, pl.Width, pl.Height
		style := Styles.Frame
		switch {
		case dragging && preview.PanelID == pl.Panel.ID:
			x, y = int(preview.Position.X), int(preview.Position.Y)
			w, h = int(preview.Size.Width), int(preview.Size.Height)
			style = Styles.FrameDragging
		case pl.Maximized:
			style = Styles.FrameMaximized
		case pl.Panel.ID == m.Focus.Current:
			style = Styles.FrameFocused
		}
		badge := ""
		if pl.Maximized {
			badge = "[max]"
		}
		bw, bh := bodySize(w, h)
		c.paint(x, y, renderFrame(p.Title(), badge, p.Render(bw, bh), w, h, style))
	}
}

func (m *AppModel) statusBar() string {
	cfg := m.Workspace.Layout.Current()
	left := fmt.Sprintf(" estatedash · %s · %s (%s)", m.name, cfg.Name, cfg.Type)
	if p, ok := m.Workspace.Panel(m.Focus.Current); ok {
		left += " · " + p.Title()
	}
	right := m.status
	if right != "" {
		right += " "
	}
	space := m.width - textutil.VisualWidth(left)
	if space <= 1 {
		return Styles.Status.Render(textutil.Truncate(left, m.width))
	}
	right = textutil.PadLeftVisual(textutil.Truncate(right, space), space)
	style := Styles.Muted
	if m.statusErr {
		style = Styles.StatusErr
	}
	return Styles.Status.Render(left) + style.Render(right)
}

// Status returns the status line text.
func (m *AppModel) Status() string {
	return strings.TrimSpace(m.status)
}
