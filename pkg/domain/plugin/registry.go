package plugin

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Registry is a process-wide, concurrency-safe mapping of plugin id to
// Plugin. Register is idempotent on id (a later call with the same id
// replaces the earlier registration, matching the teacher's client-factory
// map semantics of "register overwrites, reads are always fresh").
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds or replaces a plugin by its id.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.ID()] = p
}

// Reset wipes the registry and re-registers the given set, used for test
// isolation and per-instance initialization.
func (r *Registry) Reset(plugins ...Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		r.plugins[p.ID()] = p
	}
}

// ApplyEnabled filters the registry in place, removing plugins whose id
// maps to false in enabled; plugins absent from the map stay registered.
// A nil or empty map leaves the registry unchanged.
func (r *Registry) ApplyEnabled(enabled map[string]bool) {
	if len(enabled) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.plugins {
		if on, ok := enabled[id]; ok && !on {
			delete(r.plugins, id)
		}
	}
}

// Get returns the plugin registered under id, if any.
func (r *Registry) Get(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[id]
	return p, ok
}

// List returns the registered plugins sorted by id, for deterministic
// iteration (capability listings, discovery logging).
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// LogDiscoveryDebug emits one debug log line per registered plugin,
// reporting its id, kpi count and the Go package path the implementation
// type was loaded from.
func (r *Registry) LogDiscoveryDebug(logger *slog.Logger) {
	for _, p := range r.List() {
		t := reflect.TypeOf(p)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		logger.Debug("plugin discovered",
			"plugin_id", p.ID(),
			"kpi_count", len(p.KPIs()),
			"module", fmt.Sprintf("%s.%s", t.PkgPath(), t.Name()),
		)
	}
}
