package pico

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/cmd"
)

// Builder configures a pico registry before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bundles []func(*Registry) *Bundle
	options []Option
}

// NewBuilder creates a new pico builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bundle adds a bundle to the builder. The callback receives the registry
// being built, so bundles can capture it (for example in commands).
func (b *Builder) Bundle(callback func(*Registry) *Bundle) *Builder {
	b.bundles = append(b.bundles, callback)
	return b
}

// Option adds registry options.
func (b *Builder) Option(opts ...Option) *Builder {
	b.options = append(b.options, opts...)
	return b
}

// Build creates the registry. Definitions are registered in dependency
// order across all bundles: stats, then features, then components, then
// blueprints, so a bundle may reference definitions of any other bundle.
func (b *Builder) Build() (*Registry, error) {
	opts := defaultOptions()
	for _, opt := range b.options {
		opt(&opts)
	}
	r := newRegistry(opts)

	var hooks []func(*Registry)
	for _, f := range b.bundles {
		bund := f(r)
		r.bundles = append(r.bundles, bund)
		hooks = append(hooks, bund.postInitHooks...)
	}

	if err := r.build(); err != nil {
		r.log.Error("pico: failed to build registry", "error", err)
		r.Shutdown()
		return nil, err
	}

	for _, hook := range hooks {
		hook(r)
	}
	return r, nil
}

// Init builds the registry and panics on failure.
// Returns the Registry instance which should be stored and used to create trees.
// Multiple Registry instances can coexist for running multiple isolated servers.
func (b *Builder) Init() *Registry {
	r, err := b.Build()
	if err != nil {
		panic("pico: failed to build registry: " + err.Error())
	}
	return r
}

// build registers the definitions of every bundle.
func (r *Registry) build() error {
	configs := make([][]*FileConfig, len(r.bundles))
	for i, bund := range r.bundles {
		for _, src := range bund.configs {
			cfg, err := src.load()
			if err != nil {
				return fmt.Errorf("bundle %s: %w", bund.name, err)
			}
			configs[i] = append(configs[i], cfg)
		}
	}

	phases := []func(*Bundle, []*FileConfig) error{
		r.registerStats,
		r.registerFeatures,
		r.registerComponents,
		r.registerBlueprints,
	}
	for _, phase := range phases {
		for i, bund := range r.bundles {
			if err := phase(bund, configs[i]); err != nil {
				return fmt.Errorf("bundle %s: %w", bund.name, err)
			}
		}
	}

	// Register commands with Dragonfly's command system
	for _, bund := range r.bundles {
		for _, command := range bund.commands {
			cmd.Register(command)
		}
		r.log.Debug("pico: registered bundle",
			"bundle", bund.name,
			"configs", len(bund.configs),
			"commands", len(bund.commands),
		)
	}
	return nil
}

func (r *Registry) registerStats(bund *Bundle, configs []*FileConfig) error {
	for _, s := range bund.stats {
		if err := r.AddStat(s); err != nil {
			return err
		}
	}
	for _, cfg := range configs {
		for _, sc := range cfg.Stats {
			if err := r.AddStat(newStatKind(sc)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) registerFeatures(bund *Bundle, _ []*FileConfig) error {
	for _, f := range bund.features {
		if err := r.AddFeature(f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerComponents(bund *Bundle, configs []*FileConfig) error {
	for _, c := range bund.components {
		if err := r.AddComponent(c); err != nil {
			return err
		}
	}
	for _, cfg := range configs {
		for _, cc := range cfg.Components {
			c, err := r.decodeComponent(cc)
			if err != nil {
				return err
			}
			if err := r.AddComponent(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) registerBlueprints(bund *Bundle, configs []*FileConfig) error {
	for _, bp := range bund.blueprints {
		if err := r.AddBlueprint(bp); err != nil {
			return err
		}
	}
	for _, cfg := range configs {
		for _, bc := range cfg.Blueprints {
			tree, err := r.TreeFromConfig(bc.Tree)
			if err != nil {
				return fmt.Errorf("blueprint %s: %w", bc.ID, err)
			}
			if err := r.AddBlueprint(NewBlueprint(bc.ID, tree)); err != nil {
				return err
			}
		}
	}
	return nil
}
