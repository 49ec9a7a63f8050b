package content

import (
	"fmt"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
)

const keySelected = "selected"

// Properties lists the properties passing the active filters. Enter
// broadcasts the highlighted property to sibling panels.
type Properties struct {
	deps Deps
}

// NewProperties creates the property table content.
func NewProperties(deps Deps) *Properties {
	return &Properties{deps: deps}
}

// Render implements registry.Content.
func (p *Properties) Render(props registry.Props) string {
	rows := p.deps.filtered()
	selected := jsonutil.GetString(props.State, keySelected)

	lines := []string{header("Properties", fmt.Sprintf("%s of %s", formatCount(len(rows)), formatCount(len(p.deps.Data))))}
	if len(rows) == 0 {
		lines = append(lines, mutedStyle.Render("no properties match the active filters"))
		return fit(strings.Join(lines, "\n"), props)
	}

	addrWidth := max(props.Width-32, 12)
	cur := cursor(props, len(rows))
	start, end := window(len(rows), cur, props.Height-1)
	for i := start; i < end; i++ {
		r := rows[i]
		mark := " "
		if selected != "" && jsonutil.GetString(r, "id") == selected {
			mark = "*"
		}
		price, _ := jsonutil.GetNumber(r, filters.FieldPrice)
		line := fmt.Sprintf("%s %-*s %-11s %12s %s",
			mark,
			addrWidth, truncate(jsonutil.GetString(r, "address"), addrWidth),
			jsonutil.ToString(r[filters.FieldPropertyType]),
			formatPrice(price),
			jsonutil.ToString(r[filters.FieldState]),
		)
		if i == cur {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return fit(strings.Join(lines, "\n"), props)
}

// HandleKey implements registry.Interactive.
func (p *Properties) HandleKey(props registry.Props, key string) bool {
	rows := p.deps.filtered()
	if moveCursor(props, len(rows), key) {
		return true
	}
	if key != "enter" && key != " " {
		return false
	}
	if len(rows) == 0 {
		return true
	}
	row := rows[cursor(props, len(rows))]
	id := jsonutil.GetString(row, "id")
	if props.OnStateChange != nil {
		props.OnStateChange(map[string]any{keySelected: id})
	}
	p.deps.broadcast(EventPropertySelected, id, props.PanelID)
	return true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
