package ui

import (
	"fmt"

	"estatedash/internal/filters"
	"estatedash/internal/layout"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// PickerModal selects one entry from a filterable list.
type PickerModal struct {
	list     list.Model
	onSelect func(id string) tea.Msg
}

// pickerItem is one selectable entry.
type pickerItem struct {
	id, title, desc string
}

func (p pickerItem) FilterValue() string { return p.title }
func (p pickerItem) Title() string       { return p.title }
func (p pickerItem) Description() string { return p.desc }

// Ensure PickerModal implements View.
var _ View = (*PickerModal)(nil)

func newPickerModal(title string, items []pickerItem, onSelect func(string) tea.Msg) *PickerModal {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	l := list.New(listItems, NewCompactListDelegate(), 48, 14)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = Styles.Title
	return &PickerModal{list: l, onSelect: onSelect}
}

// NewLayoutPickerModal lists built-in and saved layouts.
func NewLayoutPickerModal(layouts []layout.LayoutConfig, currentID string) *PickerModal {
	items := make([]pickerItem, 0, len(layouts))
	selected := 0
	for i, cfg := range layouts {
		desc := fmt.Sprintf("%s · %d panels", cfg.Type, len(cfg.Panels))
		if cfg.CreatedAt != nil {
			desc += " · saved " + cfg.CreatedAt.Format("2006-01-02")
		}
		if cfg.ID == currentID {
			selected = i
		}
		items = append(items, pickerItem{id: cfg.ID, title: cfg.Name, desc: desc})
	}
	m := newPickerModal("Layouts", items, func(id string) tea.Msg { return SelectLayoutMsg{ID: id} })
	m.list.Select(selected)
	return m
}

// NewPresetPickerModal lists saved filter presets.
func NewPresetPickerModal(presets []filters.FilterConfig) *PickerModal {
	items := make([]pickerItem, 0, len(presets))
	for _, p := range presets {
		items = append(items, pickerItem{
			id:    p.ID,
			title: p.Name,
			desc:  fmt.Sprintf("%d categories · %s", len(p.Filters), p.UpdatedAt.Format("2006-01-02 15:04")),
		})
	}
	return newPickerModal("Filter presets", items, func(id string) tea.Msg { return LoadPresetMsg{ID: id} })
}

// Init implements View.
func (m *PickerModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *PickerModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "enter":
			if sel, ok := m.list.SelectedItem().(pickerItem); ok && m.onSelect != nil {
				return m, func() tea.Msg { return m.onSelect(sel.id) }
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Selected returns the id of the highlighted entry.
func (m *PickerModal) Selected() (string, bool) {
	sel, ok := m.list.SelectedItem().(pickerItem)
	return sel.id, ok
}

// View implements View.
func (m *PickerModal) View() string {
	help := "Enter: select  /: filter  Esc: cancel"
	return Styles.BoxCompact.Render(m.list.View() + "\n" + Styles.Hint.Render(help))
}
