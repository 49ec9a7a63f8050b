package content

import (
	"fmt"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/registry"
)

// States lists every state with the number of properties matching the
// non-geographic filters. Enter narrows the workspace to the highlighted
// state; x clears the geographic filter.
type States struct {
	deps Deps
}

// NewStates creates the state list content.
func NewStates(deps Deps) *States {
	return &States{deps: deps}
}

func (s *States) names() []string {
	return distinct(s.deps.Data, filters.FieldState)
}

// Render implements registry.Content.
func (s *States) Render(props registry.Props) string {
	names := s.names()
	_, counts := group(s.deps.filtered(filters.CategoryGeographic), filters.FieldState)
	active, _ := s.deps.activeGeo()
	cur := cursor(props, len(names))

	lines := []string{header("States", fmt.Sprintf("(%d)", len(names)))}
	start, end := window(len(names), cur, props.Height-1)
	for i := start; i < end; i++ {
		name := names[i]
		mark := " "
		if strings.EqualFold(name, active) {
			mark = "*"
		}
		line := fmt.Sprintf("%s %-4s %6s", mark, name, formatCount(counts[name]))
		switch {
		case i == cur:
			line = selectedStyle.Render(line)
		case mark == "*":
			line = activeStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(names) == 0 {
		lines = append(lines, mutedStyle.Render("no data"))
	}
	return fit(strings.Join(lines, "\n"), props)
}

// HandleKey implements registry.Interactive.
func (s *States) HandleKey(props registry.Props, key string) bool {
	names := s.names()
	if moveCursor(props, len(names), key) {
		return true
	}
	switch key {
	case "enter", " ":
		if len(names) == 0 {
			return true
		}
		name := names[cursor(props, len(names))]
		s.deps.merge(filters.FilterSet{filters.CategoryGeographic: {filters.CriterionState: name}})
		s.deps.broadcast(EventStateSelected, name, props.PanelID)
		return true
	case "x", "backspace":
		s.deps.merge(filters.FilterSet{filters.CategoryGeographic: nil})
		return true
	}
	return false
}
