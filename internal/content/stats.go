package content

import (
	"fmt"
	"slices"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
)

// Stats summarizes prices of the filtered dataset and compares the most
// recently selected property against the median.
type Stats struct {
	deps     Deps
	selected *tracker
}

// NewStats creates the statistics content.
func NewStats(deps Deps) *Stats {
	return &Stats{deps: deps, selected: track(deps.Bus, EventPropertySelected)}
}

// Summary holds price statistics.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// Summarize computes price statistics over rows. Rows without a numeric
// price are ignored.
func Summarize(rows []map[string]any) Summary {
	ps := prices(rows)
	if len(ps) == 0 {
		return Summary{}
	}
	slices.Sort(ps)
	var sum float64
	for _, p := range ps {
		sum += p
	}
	mid := len(ps) / 2
	median := ps[mid]
	if len(ps)%2 == 0 {
		median = (ps[mid-1] + ps[mid]) / 2
	}
	return Summary{
		Count:  len(ps),
		Min:    ps[0],
		Max:    ps[len(ps)-1],
		Mean:   sum / float64(len(ps)),
		Median: median,
	}
}

// Render implements registry.Content.
func (s *Stats) Render(props registry.Props) string {
	rows := s.deps.filtered()
	sum := Summarize(rows)

	lines := []string{header("Statistics", fmt.Sprintf("%s properties", formatCount(len(rows))))}
	if sum.Count == 0 {
		lines = append(lines, mutedStyle.Render("no priced properties"))
		return fit(strings.Join(lines, "\n"), props)
	}
	lines = append(lines,
		fmt.Sprintf("  median %14s", formatPrice(sum.Median)),
		fmt.Sprintf("  mean   %14s", formatPrice(sum.Mean)),
		fmt.Sprintf("  range  %s – %s", formatPrice(sum.Min), formatPrice(sum.Max)),
	)

	types, counts := group(rows, filters.FieldPropertyType)
	for _, t := range types {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %-12s %4s", t, formatCount(counts[t]))))
	}

	if payload, ok := s.selected.latest(); ok {
		if row, found := findByID(s.deps.Data, jsonutil.ToString(payload)); found {
			price, _ := jsonutil.GetNumber(row, filters.FieldPrice)
			delta := (price - sum.Median) / sum.Median * 100
			lines = append(lines, "", activeStyle.Render(fmt.Sprintf("  %s: %s (%+.0f%% vs median)",
				jsonutil.GetString(row, "address"), formatPrice(price), delta)))
		}
	}
	return fit(strings.Join(lines, "\n"), props)
}
