package content

import (
	"fmt"
	"slices"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/registry"

	"github.com/charmbracelet/lipgloss"
)

var (
	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	activeTileStyle = tileStyle.BorderForeground(lipgloss.Color("205"))
)

// Map shows one tile per state with its matching property count and the
// counties of the active state. Left and right move the geographic filter
// across states; x clears it.
type Map struct {
	deps   Deps
	county *tracker
}

// NewMap creates the map content.
func NewMap(deps Deps) *Map {
	return &Map{deps: deps, county: track(deps.Bus, EventCountySelected)}
}

// Render implements registry.Content.
func (m *Map) Render(props registry.Props) string {
	names := distinct(m.deps.Data, filters.FieldState)
	_, counts := group(m.deps.filtered(filters.CategoryGeographic), filters.FieldState)
	active, activeCounty := m.deps.activeGeo()

	tiles := make([]string, 0, len(names))
	for _, name := range names {
		style := tileStyle
		if strings.EqualFold(name, active) {
			style = activeTileStyle
		}
		tiles = append(tiles, style.Render(fmt.Sprintf("%s\n%s", name, formatCount(counts[name]))))
	}

	body := []string{header("Map", "←/→ state, x clear")}
	body = append(body, wrapTiles(tiles, props.Width)...)

	if active != "" {
		rows := filters.ApplyToData(m.deps.filtered(filters.CategoryGeographic),
			filters.FilterSet{filters.CategoryGeographic: {filters.CriterionState: active}})
		counties, cc := group(rows, filters.FieldCounty)
		parts := make([]string, 0, len(counties))
		for _, c := range counties {
			part := fmt.Sprintf("%s (%d)", c, cc[c])
			if strings.EqualFold(c, activeCounty) {
				part = selectedStyle.Render(part)
			}
			parts = append(parts, part)
		}
		body = append(body, activeStyle.Render(active)+": "+strings.Join(parts, " · "))
	}
	if payload, ok := m.county.latest(); ok {
		if ref, ok := payload.(CountyRef); ok {
			body = append(body, mutedStyle.Render(fmt.Sprintf("last county: %s, %s", ref.County, ref.State)))
		}
	}
	return fit(strings.Join(body, "\n"), props)
}

// wrapTiles joins tiles horizontally, starting a new row when width would
// be exceeded.
func wrapTiles(tiles []string, width int) []string {
	var rows []string
	var row []string
	rowWidth := 0
	for _, t := range tiles {
		w := lipgloss.Width(t)
		if len(row) > 0 && width > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, t)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return rows
}

// HandleKey implements registry.Interactive.
func (m *Map) HandleKey(props registry.Props, key string) bool {
	names := distinct(m.deps.Data, filters.FieldState)
	if len(names) == 0 {
		return false
	}
	active, _ := m.deps.activeGeo()
	idx := slices.IndexFunc(names, func(n string) bool { return strings.EqualFold(n, active) })
	switch key {
	case "right", "l":
		idx = (idx + 1) % len(names)
	case "left", "h":
		if idx <= 0 {
			idx = len(names)
		}
		idx--
	case "x", "backspace":
		m.deps.merge(filters.FilterSet{filters.CategoryGeographic: nil})
		return true
	default:
		return false
	}
	m.deps.merge(filters.FilterSet{filters.CategoryGeographic: {filters.CriterionState: names[idx]}})
	m.deps.broadcast(EventStateSelected, names[idx], props.PanelID)
	return true
}
