package content

import (
	"fmt"
	"slices"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
)

// Counties lists the counties of the active state (every county when no
// state is selected). Enter narrows the workspace to the highlighted county.
type Counties struct {
	deps Deps
}

// NewCounties creates the county list content.
func NewCounties(deps Deps) *Counties {
	return &Counties{deps: deps}
}

// refs returns the selectable counties, ordered by state then county.
func (c *Counties) refs() []CountyRef {
	state, _ := c.deps.activeGeo()
	seen := make(map[CountyRef]bool)
	var out []CountyRef
	for _, r := range c.deps.Data {
		ref := CountyRef{
			State:  strings.TrimSpace(jsonutil.ToString(r[filters.FieldState])),
			County: strings.TrimSpace(jsonutil.ToString(r[filters.FieldCounty])),
		}
		if ref.County == "" || seen[ref] {
			continue
		}
		if state != "" && !strings.EqualFold(ref.State, state) {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	slices.SortFunc(out, func(a, b CountyRef) int {
		if a.State != b.State {
			return strings.Compare(a.State, b.State)
		}
		return strings.Compare(a.County, b.County)
	})
	return out
}

// Render implements registry.Content.
func (c *Counties) Render(props registry.Props) string {
	refs := c.refs()
	state, county := c.deps.activeGeo()

	counts := make(map[CountyRef]int)
	for _, r := range c.deps.filtered(filters.CategoryGeographic) {
		counts[CountyRef{State: jsonutil.ToString(r[filters.FieldState]), County: jsonutil.ToString(r[filters.FieldCounty])}]++
	}

	scope := "all states"
	if state != "" {
		scope = state
	}
	lines := []string{header("Counties", scope)}
	cur := cursor(props, len(refs))
	start, end := window(len(refs), cur, props.Height-1)
	for i := start; i < end; i++ {
		ref := refs[i]
		mark := " "
		if county != "" && strings.EqualFold(ref.County, county) && strings.EqualFold(ref.State, state) {
			mark = "*"
		}
		line := fmt.Sprintf("%s %-14s %-3s %4s", mark, ref.County, ref.State, formatCount(counts[ref]))
		switch {
		case i == cur:
			line = selectedStyle.Render(line)
		case mark == "*":
			line = activeStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(refs) == 0 {
		lines = append(lines, mutedStyle.Render("no counties"))
	}
	return fit(strings.Join(lines, "\n"), props)
}

// HandleKey implements registry.Interactive.
func (c *Counties) HandleKey(props registry.Props, key string) bool {
	refs := c.refs()
	if moveCursor(props, len(refs), key) {
		return true
	}
	switch key {
	case "enter", " ":
		if len(refs) == 0 {
			return true
		}
		ref := refs[cursor(props, len(refs))]
		c.deps.merge(filters.FilterSet{filters.CategoryGeographic: {
			filters.CriterionState:  ref.State,
			filters.CriterionCounty: ref.County,
		}})
		c.deps.broadcast(EventCountySelected, ref, props.PanelID)
		return true
	case "x", "backspace":
		state, _ := c.deps.activeGeo()
		if state == "" {
			c.deps.merge(filters.FilterSet{filters.CategoryGeographic: nil})
		} else {
			c.deps.merge(filters.FilterSet{filters.CategoryGeographic: {filters.CriterionState: state}})
		}
		return true
	}
	return false
}
