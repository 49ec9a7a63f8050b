package content

import (
	"fmt"
	"math"
	"strings"

	"estatedash/internal/filters"
	"estatedash/internal/jsonutil"
	"estatedash/internal/registry"
)

const (
	keyBucket     = "bucket"
	defaultBucket = 250000
	minBucket     = 25000
)

// Chart draws a price histogram of the filtered dataset. + and - change the
// bucket size; the bucket of the selected property is highlighted.
type Chart struct {
	deps     Deps
	selected *tracker
}

// NewChart creates the price chart content.
func NewChart(deps Deps) *Chart {
	return &Chart{deps: deps, selected: track(deps.Bus, EventPropertySelected)}
}

// Histogram counts prices per bucket of the given size, starting at the
// bucket holding the lowest price. Empty input yields no buckets.
func Histogram(ps []float64, bucket float64) (start float64, counts []int) {
	if len(ps) == 0 || bucket <= 0 {
		return 0, nil
	}
	lo, hi := ps[0], ps[0]
	for _, p := range ps {
		lo, hi = math.Min(lo, p), math.Max(hi, p)
	}
	start = math.Floor(lo/bucket) * bucket
	counts = make([]int, int((hi-start)/bucket)+1)
	for _, p := range ps {
		counts[int((p-start)/bucket)]++
	}
	return start, counts
}

func bucketSize(props registry.Props) float64 {
	b, ok := jsonutil.GetNumber(props.State, keyBucket)
	if !ok || b < minBucket {
		return defaultBucket
	}
	return b
}

// Render implements registry.Content.
func (c *Chart) Render(props registry.Props) string {
	bucket := bucketSize(props)
	start, counts := Histogram(prices(c.deps.filtered()), bucket)

	lines := []string{header("Price Chart", fmt.Sprintf("per %s", formatPrice(bucket)))}
	if len(counts) == 0 {
		lines = append(lines, mutedStyle.Render("no priced properties"))
		return fit(strings.Join(lines, "\n"), props)
	}

	highlight := -1
	if payload, ok := c.selected.latest(); ok {
		if row, found := findByID(c.deps.Data, jsonutil.ToString(payload)); found {
			if p, ok := jsonutil.GetNumber(row, filters.FieldPrice); ok && p >= start {
				highlight = int((p - start) / bucket)
			}
		}
	}

	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	barMax := max(props.Width-20, 4)
	for i, n := range counts {
		width := int(math.Round(float64(n) / float64(peak) * float64(barMax)))
		bar := strings.Repeat("█", width)
		label := fmt.Sprintf("%12s ", formatPrice(start+float64(i)*bucket))
		if i == highlight {
			lines = append(lines, selectedStyle.Render(label+bar)+fmt.Sprintf(" %d", n))
			continue
		}
		lines = append(lines, mutedStyle.Render(label)+barStyle.Render(bar)+fmt.Sprintf(" %d", n))
	}
	return fit(strings.Join(lines, "\n"), props)
}

// HandleKey implements registry.Interactive.
func (c *Chart) HandleKey(props registry.Props, key string) bool {
	bucket := bucketSize(props)
	switch key {
	case "+", "=":
		bucket *= 2
	case "-", "_":
		bucket = math.Max(bucket/2, minBucket)
	default:
		return false
	}
	if props.OnStateChange != nil {
		props.OnStateChange(map[string]any{keyBucket: bucket})
	}
	return true
}
