// Package content holds the built-in panel bodies: map, state, county,
// property, filter, stats and chart. Each renders a compact text view of an
// in-memory property dataset narrowed by the workspace's active filters, and
// talks to sibling panels through the sync bus.
package content

import (
	_ "embed"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"estatedash/internal/filters"
	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
	"estatedash/internal/syncbus"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Events broadcast by built-in content.
const (
	EventStateSelected    = "state:selected"
	EventCountySelected   = "county:selected"
	EventPropertySelected = "property:selected"
)

// CountyRef is the payload of EventCountySelected.
type CountyRef struct {
	State  string
	County string
}

// Broadcaster publishes sync bus events. Both *syncbus.Bus and the
// workspace satisfy it.
type Broadcaster interface {
	Broadcast(eventType string, payload any, source string)
}

// Deps are the collaborators shared by built-in content.
type Deps struct {
	Events  Broadcaster
	Bus     *syncbus.Bus
	Filters *filters.Coordinator
	Data    []map[string]any
}

func (d Deps) broadcast(eventType string, payload any, source string) {
	if d.Events != nil {
		d.Events.Broadcast(eventType, payload, source)
		return
	}
	if d.Bus != nil {
		d.Bus.Broadcast(eventType, payload, source)
	}
}

// filtered returns the dataset narrowed by the active filters, with the
// given categories ignored.
func (d Deps) filtered(ignore ...string) []map[string]any {
	set := filters.FilterSet{}
	if d.Filters != nil {
		set = d.Filters.Active()
	}
	for _, cat := range ignore {
		delete(set, cat)
	}
	return filters.ApplyToData(d.Data, set)
}

func (d Deps) activeGeo() (state, county string) {
	if d.Filters == nil {
		return "", ""
	}
	geo := d.Filters.Active()[filters.CategoryGeographic]
	return jsonutil.ToString(geo[filters.CriterionState]), jsonutil.ToString(geo[filters.CriterionCounty])
}

// Resolvers returns a resolver for every built-in content type.
func Resolvers(deps Deps) map[registry.ContentType]registry.Resolver {
	return map[registry.ContentType]registry.Resolver{
		registry.TypeMap:      func() (registry.Content, error) { return NewMap(deps), nil },
		registry.TypeState:    func() (registry.Content, error) { return NewStates(deps), nil },
		registry.TypeCounty:   func() (registry.Content, error) { return NewCounties(deps), nil },
		registry.TypeProperty: func() (registry.Content, error) { return NewProperties(deps), nil },
		registry.TypeFilter:   func() (registry.Content, error) { return NewFilterPanel(deps), nil },
		registry.TypeStats:    func() (registry.Content, error) { return NewStats(deps), nil },
		registry.TypeChart:    func() (registry.Content, error) { return NewChart(deps), nil },
	}
}

//go:embed data/properties.json
var sampleJSON []byte

// SampleData returns the bundled demo dataset.
func SampleData() ([]map[string]any, error) {
	return jsonutil.UnmarshalArrayAllowEmpty[map[string]any](sampleJSON, "decode sample properties")
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// fit clips body to the panel body size.
func fit(body string, props registry.Props) string {
	style := lipgloss.NewStyle()
	if props.Width > 0 {
		style = style.MaxWidth(props.Width)
	}
	if props.Height > 0 {
		style = style.MaxHeight(props.Height)
	}
	return style.Render(body)
}

var printer = message.NewPrinter(language.AmericanEnglish)

func formatPrice(v float64) string {
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

const keyCursor = "cursor"

// cursor returns the panel's list cursor clamped to n items.
func cursor(props registry.Props, n int) int {
	c, _ := jsonutil.GetNumber(props.State, keyCursor)
	return clampIndex(int(c), n)
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}

// moveCursor handles list navigation keys, storing the new cursor in panel
// state. Reports whether key was a navigation key.
func moveCursor(props registry.Props, n int, key string) bool {
	cur := cursor(props, n)
	next := cur
	switch key {
	case "up", "k":
		next--
	case "down", "j":
		next++
	case "home", "g":
		next = 0
	case "end", "G":
		next = n - 1
	case "pgup":
		next -= max(props.Height-1, 1)
	case "pgdown":
		next += max(props.Height-1, 1)
	default:
		return false
	}
	next = clampIndex(next, n)
	if next != cur && props.OnStateChange != nil {
		props.OnStateChange(map[string]any{keyCursor: float64(next)})
	}
	return true
}

// window returns the [start,end) slice of n rows to show in height lines
// keeping cursor visible.
func window(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := max(cursor-height/2, 0)
	start = min(start, n-height)
	return start, start + height
}

// group counts rows by field, returning keys sorted.
func group(rows []map[string]any, field string) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, r := range rows {
		if v := strings.TrimSpace(jsonutil.ToString(r[field])); v != "" {
			counts[v]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, counts
}

// distinct returns the sorted distinct values of field across rows.
func distinct(rows []map[string]any, field string) []string {
	keys, _ := group(rows, field)
	return keys
}

func header(title string, detail string) string {
	if detail == "" {
		return titleStyle.Render(title)
	}
	return fmt.Sprintf("%s %s", titleStyle.Render(title), mutedStyle.Render(detail))
}

func prices(rows []map[string]any) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if p, ok := jsonutil.GetNumber(r, filters.FieldPrice); ok {
			out = append(out, p)
		}
	}
	return out
}

func (d Deps) merge(partial filters.FilterSet) {
	if d.Filters != nil {
		d.Filters.Merge(partial)
	}
}

// tracker remembers the payload of the latest event of one type.
type tracker struct {
	mu      sync.Mutex
	payload any
	ok      bool
}

func track(bus *syncbus.Bus, eventType string) *tracker {
	t := &tracker{}
	if bus != nil {
		bus.SubscribeType(eventType, func(ev syncbus.Event) {
			t.mu.Lock()
			t.payload, t.ok = ev.Payload, true
			t.mu.Unlock()
		})
	}
	return t
}

func (t *tracker) latest() (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.payload, t.ok
}

// findByID returns the row whose id field equals id.
func findByID(rows []map[string]any, id string) (map[string]any, bool) {
	for _, r := range rows {
		if jsonutil.GetString(r, "id") == id {
			return r, true
		}
	}
	return nil, false
}
