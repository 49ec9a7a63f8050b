package content

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
)

// priceStep is the increment applied by the price keys.
const priceStep = 100000

// FilterPanel edits the property criteria and manages saved presets.
//
//	t      cycle property type
//	[ ]    lower/raise the minimum price
//	{ }    lower/raise the maximum price
//	c      clear every filter
//	s      save the active filters as a preset
//	enter  load the highlighted preset
//	d      delete the highlighted preset
type FilterPanel struct {
	deps Deps
}

// NewFilterPanel creates the filter editor content.
func NewFilterPanel(deps Deps) *FilterPanel {
	return &FilterPanel{deps: deps}
}

// Render implements registry.Content.
func (f *FilterPanel) Render(props registry.Props) string {
	if f.deps.Filters == nil {
		return fit(mutedStyle.Render("filters unavailable"), props)
	}
	active := f.deps.Filters.Active()
	lines := []string{header("Filters", "")}
	lines = append(lines, describe(active)...)

	presets := f.deps.Filters.Saved()
	lines = append(lines, "", header("Presets", fmt.Sprintf("(%d)", len(presets))))
	if len(presets) == 0 {
		lines = append(lines, mutedStyle.Render("press s to save the active filters"))
	}
	cur := cursor(props, len(presets))
	start, end := window(len(presets), cur, props.Height-len(lines))
	for i := start; i < end; i++ {
		line := "  " + presets[i].Name
		if i == cur {
			line = selectedStyle.Render("> " + presets[i].Name)
		}
		lines = append(lines, line)
	}
	return fit(strings.Join(lines, "\n"), props)
}

// describe renders one line per criterion, categories in name order.
func describe(set filters.FilterSet) []string {
	if len(set) == 0 {
		return []string{mutedStyle.Render("no filters")}
	}
	cats := make([]string, 0, len(set))
	for c := range set {
		cats = append(cats, c)
	}
	slices.Sort(cats)

	var lines []string
	for _, cat := range cats {
		criteria := set[cat]
		keys := make([]string, 0, len(criteria))
		for k, v := range criteria {
			if !jsonutil.IsEmpty(v) {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			v := criteria[k]
			val := jsonutil.ToString(v)
			if n, ok := jsonutil.ToNumber(v); ok && (k == filters.CriterionMinPrice || k == filters.CriterionMaxPrice) {
				val = formatPrice(n)
			}
			lines = append(lines, fmt.Sprintf("  %s.%s = %s", cat, k, activeStyle.Render(val)))
		}
	}
	if len(lines) == 0 {
		return []string{mutedStyle.Render("no filters")}
	}
	return lines
}

// HandleKey implements registry.Interactive.
func (f *FilterPanel) HandleKey(props registry.Props, key string) bool {
	if f.deps.Filters == nil {
		return false
	}
	presets := f.deps.Filters.Saved()
	if moveCursor(props, len(presets), key) {
		return true
	}
	switch key {
	case "t":
		f.cycleType()
	case "[", "]":
		f.adjust(filters.CriterionMinPrice, key == "]")
	case "{", "}":
		f.adjust(filters.CriterionMaxPrice, key == "}")
	case "c":
		f.deps.Filters.Clear()
	case "s":
		if _, err := f.deps.Filters.Save(fmt.Sprintf("Preset %d", len(presets)+1), f.deps.Filters.Active()); err != nil {
			log.Printf("content.FilterPanel: save preset: %v", err)
		}
	case "enter":
		if len(presets) > 0 {
			_ = f.deps.Filters.Load(presets[cursor(props, len(presets))].ID)
		}
	case "d":
		if len(presets) > 0 {
			f.deps.Filters.Delete(presets[cursor(props, len(presets))].ID)
		}
	default:
		return false
	}
	return true
}

func (f *FilterPanel) property() map[string]any {
	prop := jsonutil.CloneMap(f.deps.Filters.Active()[filters.CategoryProperty])
	if prop == nil {
		prop = map[string]any{}
	}
	return prop
}

// cycleType steps the property type through "any" and each type present in
// the dataset.
func (f *FilterPanel) cycleType() {
	types := append([]string{""}, distinct(f.deps.Data, filters.FieldPropertyType)...)
	prop := f.property()
	cur := jsonutil.ToString(prop[filters.CriterionPropertyType])
	idx := slices.Index(types, cur)
	next := types[(idx+1)%len(types)]
	if next == "" {
		delete(prop, filters.CriterionPropertyType)
	} else {
		prop[filters.CriterionPropertyType] = next
	}
	f.deps.merge(filters.FilterSet{filters.CategoryProperty: prop})
}

// adjust moves a price bound by priceStep. Lowering a bound to zero or
// below removes it.
func (f *FilterPanel) adjust(criterion string, up bool) {
	prop := f.property()
	cur, _ := jsonutil.ToNumber(prop[criterion])
	if up {
		cur += priceStep
	} else {
		cur -= priceStep
	}
	if cur <= 0 {
		delete(prop, criterion)
	} else {
		prop[criterion] = cur
	}
	f.deps.merge(filters.FilterSet{filters.CategoryProperty: prop})
}
