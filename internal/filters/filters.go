// Package filters holds the workspace's active filter set and its saved
// presets, and narrows datasets by them.
//
// A FilterSet is keyed by category ("property", "geographic") and each
// category holds criteria. Panels compose filters with Merge, which only
// touches the categories they pass, so a map panel setting geographic
// criteria never clobbers a property panel's price range.
package filters

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"estatedash/internal/jsonutil"
	"estatedash/internal/kv"

	"github.com/google/uuid"
)

// Well-known categories and criteria.
const (
	CategoryProperty   = "property"
	CategoryGeographic = "geographic"

	CriterionPropertyType = "propertyType"
	CriterionMinPrice     = "minPrice"
	CriterionMaxPrice     = "maxPrice"
	CriterionState        = "state"
	CriterionCounty       = "county"
)

// FilterSet maps a category to its criteria.
type FilterSet map[string]map[string]any

// Clone returns a deep copy. A nil set clones to an empty one.
func (s FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(s))
	for cat, criteria := range s {
		out[cat] = jsonutil.CloneMap(criteria)
	}
	return out
}

// FilterConfig is a named, persisted preset.
type FilterConfig struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filters   FilterSet `json:"filters"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// ErrNotFound is returned by Load for an unknown preset id.
var ErrNotFound = errors.New("filter preset not found")

// ValidateFilterConfig checks that a preset can be applied.
func ValidateFilterConfig(cfg FilterConfig) error {
	var problems []string
	if strings.TrimSpace(cfg.ID) == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		problems = append(problems, "missing name")
	}
	if cfg.Filters == nil {
		problems = append(problems, "filters must be an object")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid filter config %q: %s", cfg.ID, strings.Join(problems, ", "))
	}
	return nil
}

// Coordinator owns the active filters and saved presets. Every mutation is
// persisted; storage failures are logged and never returned.
// Safe for concurrent use.
type Coordinator struct {
	mu        sync.Mutex
	store     kv.Store
	active    FilterSet
	saved     []FilterConfig
	listeners map[int]func(FilterSet)
	nextID    int
	now       func() time.Time
	newID     func() string
}

// New creates a Coordinator, loading active filters and presets from store.
// A nil store keeps everything in memory.
func New(store kv.Store) *Coordinator {
	c := &Coordinator{
		store:     store,
		active:    FilterSet{},
		listeners: make(map[int]func(FilterSet)),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if set, ok := loadActive(store); ok {
		c.active = set
	}
	c.saved = loadPresets(store)
	return c
}

// Active returns a copy of the active filters.
func (c *Coordinator) Active() FilterSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Clone()
}

// Saved returns a copy of the saved presets in creation order.
func (c *Coordinator) Saved() []FilterConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FilterConfig, len(c.saved))
	for i, p := range c.saved {
		p.Filters = cloneOrNil(p.Filters)
		out[i] = p
	}
	return out
}

// Apply replaces the active filters wholesale.
func (c *Coordinator) Apply(set FilterSet) {
	c.setActive(set.Clone())
}

// Merge replaces only the categories present in partial, leaving the others
// untouched. Unlike a plain key merge, a nil category value removes that
// category, so a panel can withdraw its criteria without touching others.
func (c *Coordinator) Merge(partial FilterSet) {
	c.update(func(cur FilterSet) FilterSet {
		next := cur.Clone()
		for cat, criteria := range partial {
			if criteria == nil {
				delete(next, cat)
				continue
			}
			next[cat] = jsonutil.CloneMap(criteria)
		}
		return next
	})
}

// Clear resets the active filters to an empty set.
func (c *Coordinator) Clear() {
	c.setActive(FilterSet{})
}

func (c *Coordinator) setActive(next FilterSet) {
	c.update(func(FilterSet) FilterSet { return next })
}

// update computes and stores the next active set under one lock hold, then
// notifies listeners outside the lock.
func (c *Coordinator) update(fn func(cur FilterSet) FilterSet) {
	c.mu.Lock()
	next := fn(c.active)
	c.active = next
	saveActive(c.store, next, c.now())
	listeners := c.listenerSnapshot()
	c.mu.Unlock()

	for _, notify := range listeners {
		notify(next.Clone())
	}
}

// Save stores set as a new preset named name.
func (c *Coordinator) Save(name string, set FilterSet) (FilterConfig, error) {
	if strings.TrimSpace(name) == "" {
		return FilterConfig{}, errors.New("filter preset name is required")
	}
	now := c.now().UTC()
	cfg := FilterConfig{
		ID:        c.newID(),
		Name:      name,
		Filters:   set.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	c.mu.Lock()
	c.saved = append(c.saved, cfg)
	savePresets(c.store, c.saved)
	c.mu.Unlock()

	cfg.Filters = cfg.Filters.Clone()
	return cfg, nil
}

// Load validates the preset with the given id and applies its filters.
// On failure the active filters are left unchanged and the error is logged
// and returned.
func (c *Coordinator) Load(id string) error {
	c.mu.Lock()
	idx := slices.IndexFunc(c.saved, func(p FilterConfig) bool { return p.ID == id })
	var preset FilterConfig
	if idx >= 0 {
		preset = c.saved[idx]
	}
	c.mu.Unlock()

	if idx < 0 {
		err := fmt.Errorf("load filter %q: %w", id, ErrNotFound)
		log.Printf("filters.Load: %v", err)
		return err
	}
	if err := ValidateFilterConfig(preset); err != nil {
		log.Printf("filters.Load: %v", err)
		return err
	}
	c.Apply(preset.Filters)
	return nil
}

// Delete removes the preset with the given id. Returns false when absent.
func (c *Coordinator) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.saved, func(p FilterConfig) bool { return p.ID == id })
	if idx < 0 {
		return false
	}
	c.saved = slices.Delete(c.saved, idx, idx+1)
	savePresets(c.store, c.saved)
	return true
}

// OnChange registers fn to receive the active filters after every change.
func (c *Coordinator) OnChange(fn func(FilterSet)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// listenerSnapshot must be called with c.mu held.
func (c *Coordinator) listenerSnapshot() []func(FilterSet) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(FilterSet), 0, len(ids))
	for _, id := range ids {
		out = append(out, c.listeners[id])
	}
	return out
}

func cloneOrNil(s FilterSet) FilterSet {
	if s == nil {
		return nil
	}
	return s.Clone()
}
