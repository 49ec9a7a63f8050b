// Package registry maps content-type tags to the implementations that render
// a panel's body. Domain packages register implementations; the workspace
// looks them up when it mounts a panel.
package registry

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// ContentType tags what a panel shows.
type ContentType string

// Built-in content types.
const (
	TypeMap      ContentType = "map"
	TypeState    ContentType = "state"
	TypeCounty   ContentType = "county"
	TypeProperty ContentType = "property"
	TypeFilter   ContentType = "filter"
	TypeStats    ContentType = "stats"
	TypeChart    ContentType = "chart"
)

// BuiltinTypes lists the content types initialized by default.
func BuiltinTypes() []ContentType {
	return []ContentType{TypeMap, TypeState, TypeCounty, TypeProperty, TypeFilter, TypeStats, TypeChart}
}

// Action is a panel-level request bubbled up to the layout (maximize, close...).
type Action string

// Props is the uniform invocation contract every Content receives.
type Props struct {
	PanelID      string
	InitialState map[string]any
	// State is the panel's current state (initial merged with persisted and updates).
	State  map[string]any
	Width  int
	Height int
	// OnStateChange shallow-merges partial into the panel's state.
	OnStateChange func(partial map[string]any)
	// OnAction forwards a panel-level action to the layout.
	OnAction func(action Action)
}

// Content renders a panel body for the given props.
type Content interface {
	Render(props Props) string
}

// Interactive is implemented by content that reacts to keys while its panel
// has focus. HandleKey reports whether the key was consumed.
type Interactive interface {
	HandleKey(props Props, key string) bool
}

// ContentFunc adapts a function to Content.
type ContentFunc func(props Props) string

// Render implements Content.
func (f ContentFunc) Render(props Props) string { return f(props) }

// Resolver produces the implementation for one content type.
// It may be slow (loading assets) and may fail.
type Resolver func() (Content, error)

// Registry maps content types to implementations. Safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	contents    map[ContentType]Content
	initialized map[ContentType]bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		contents:    make(map[ContentType]Content),
		initialized: make(map[ContentType]bool),
	}
}

// Register maps t to c, overwriting any previous mapping.
func (r *Registry) Register(t ContentType, c Content) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contents[t] = c
}

// Get returns the implementation for t.
func (r *Registry) Get(t ContentType) (Content, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contents[t]
	return c, ok
}

// Types returns the registered content types in lexical order.
func (r *Registry) Types() []ContentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ContentType, 0, len(r.contents))
	for t := range r.contents {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Initialize resolves and registers each type in resolvers. Types resolved by
// an earlier call are skipped, so repeated calls are cheap. Resolvers run
// concurrently and register as they finish; a failing or panicking resolver
// is logged and does not affect the others. Returns the types that failed.
func (r *Registry) Initialize(resolvers map[ContentType]Resolver) []ContentType {
	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
		failed   []ContentType
	)
	for t, resolve := range resolvers {
		r.mu.RLock()
		done := r.initialized[t]
		r.mu.RUnlock()
		if done || resolve == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := safeResolve(resolve)
			if err != nil {
				log.Printf("registry.Initialize: failed to resolve %q: %v", t, err)
				failedMu.Lock()
				failed = append(failed, t)
				failedMu.Unlock()
				return
			}
			r.mu.Lock()
			r.contents[t] = c
			r.initialized[t] = true
			r.mu.Unlock()
		}()
	}
	wg.Wait()
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return failed
}

func safeResolve(resolve Resolver) (c Content, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("resolver panicked: %v", rec)
		}
	}()
	c, err = resolve()
	if err == nil && c == nil {
		err = fmt.Errorf("resolver returned no content")
	}
	return c, err
}
