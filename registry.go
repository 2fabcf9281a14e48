package pico

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Registry holds the stat kinds, features, components and blueprints of one
// independent pico instance. Multiple registries can coexist in the same
// process. Lookups are safe for concurrent use.
type Registry struct {
	opts Options
	log  *slog.Logger

	stats   map[string]AnyStat
	statsMu sync.RWMutex

	features   map[string]Feature
	featuresMu sync.RWMutex

	components   map[string]*Component
	componentsMu sync.RWMutex

	blueprints   map[string]*Blueprint
	blueprintsMu sync.RWMutex

	// bundles holds all registered bundles
	bundles []*Bundle

	// cache memoizes compiled stats of live instances
	cache *StatCache
}

// newRegistry creates a registry with the built-in features registered.
func newRegistry(opts Options) *Registry {
	r := &Registry{
		opts:       opts,
		log:        opts.Logger,
		stats:      make(map[string]AnyStat),
		features:   make(map[string]Feature),
		components: make(map[string]*Component),
		blueprints: make(map[string]*Blueprint),
	}
	r.features[DurabilityFeatureID] = DurabilityFeature{}
	r.cache = newStatCache(r, opts.CacheGrace, opts.CacheCleanup)
	return r
}

// Options returns the options the registry was built with.
func (r *Registry) Options() Options {
	return r.opts
}

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger {
	return r.log
}

// AddStat registers a stat kind.
func (r *Registry) AddStat(s AnyStat) error {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	if _, ok := r.stats[s.Key()]; ok {
		return fmt.Errorf("stat %s: %w", s.Key(), ErrDuplicate)
	}
	r.stats[s.Key()] = s
	return nil
}

// Stat returns the stat kind registered under key.
func (r *Registry) Stat(key string) (AnyStat, bool) {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	s, ok := r.stats[key]
	return s, ok
}

// StatKeys returns every registered stat key, sorted.
func (r *Registry) StatKeys() []string {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	return sortedKeys(r.stats)
}

// AddFeature registers a feature factory.
func (r *Registry) AddFeature(f Feature) error {
	r.featuresMu.Lock()
	defer r.featuresMu.Unlock()

	if _, ok := r.features[f.ID()]; ok {
		return fmt.Errorf("feature %s: %w", f.ID(), ErrDuplicate)
	}
	r.features[f.ID()] = f
	return nil
}

// Feature returns the feature registered under id.
func (r *Registry) Feature(id string) (Feature, bool) {
	r.featuresMu.RLock()
	defer r.featuresMu.RUnlock()
	f, ok := r.features[id]
	return f, ok
}

// AddComponent registers a component definition.
func (r *Registry) AddComponent(c *Component) error {
	r.componentsMu.Lock()
	defer r.componentsMu.Unlock()

	if _, ok := r.components[c.ID()]; ok {
		return fmt.Errorf("component %s: %w", c.ID(), ErrDuplicate)
	}
	r.components[c.ID()] = c
	return nil
}

// Component returns the component registered under id.
func (r *Registry) Component(id string) (*Component, bool) {
	r.componentsMu.RLock()
	defer r.componentsMu.RUnlock()
	c, ok := r.components[id]
	return c, ok
}

// ComponentIDs returns every registered component id, sorted.
func (r *Registry) ComponentIDs() []string {
	r.componentsMu.RLock()
	defer r.componentsMu.RUnlock()
	return sortedKeys(r.components)
}

// AddBlueprint registers a blueprint.
func (r *Registry) AddBlueprint(b *Blueprint) error {
	r.blueprintsMu.Lock()
	defer r.blueprintsMu.Unlock()

	if _, ok := r.blueprints[b.ID()]; ok {
		return fmt.Errorf("blueprint %s: %w", b.ID(), ErrDuplicate)
	}
	r.blueprints[b.ID()] = b
	return nil
}

// Blueprint returns the blueprint registered under id.
func (r *Registry) Blueprint(id string) (*Blueprint, bool) {
	r.blueprintsMu.RLock()
	defer r.blueprintsMu.RUnlock()
	b, ok := r.blueprints[id]
	return b, ok
}

// BlueprintIDs returns every registered blueprint id, sorted.
func (r *Registry) BlueprintIDs() []string {
	r.blueprintsMu.RLock()
	defer r.blueprintsMu.RUnlock()
	return sortedKeys(r.blueprints)
}

// Create instantiates the blueprint registered under id.
func (r *Registry) Create(id string) (*Node, error) {
	b, ok := r.Blueprint(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlueprint, id)
	}
	return b.Create(), nil
}

// Evaluate computes the stats of the whole tree n belongs to, using the
// registry's order policy.
func (r *Registry) Evaluate(n *Node) (*CompiledStatMap, error) {
	return Evaluate(n.Root(), r.opts.Order)
}

// Shutdown stops background work. The registry must not be used afterwards.
func (r *Registry) Shutdown() {
	r.cache.stop()
	r.log.Debug("pico: registry shut down", "bundles", len(r.bundles))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
