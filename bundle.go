package pico

import (
	"fmt"
	"os"

	"github.com/df-mc/dragonfly/server/cmd"
)

// Bundle groups related definitions together. Bundles are registered with
// the pico builder; all bundles of a builder share one registry.
type Bundle struct {
	name string

	// code definitions
	stats      []AnyStat
	features   []Feature
	components []*Component
	blueprints []*Blueprint

	// configs holds YAML documents, decoded at build time
	configs []configSource

	// commands holds command registrations
	commands []cmd.Command

	postInitHooks []func(*Registry)
}

// configSource is a YAML definition document, given inline or by path.
type configSource struct {
	name string
	data []byte
	path string
}

func (s configSource) load() (*FileConfig, error) {
	data := s.data
	if s.path != "" {
		var err error
		if data, err = os.ReadFile(s.path); err != nil {
			return nil, err
		}
	}
	cfg, err := DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", s.name, err)
	}
	return cfg, nil
}

// NewBundle creates a new bundle with the given name.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Stat registers a stat kind.
func (b *Bundle) Stat(s AnyStat) *Bundle {
	b.stats = append(b.stats, s)
	return b
}

// Feature registers a feature factory.
func (b *Bundle) Feature(f Feature) *Bundle {
	b.features = append(b.features, f)
	return b
}

// Component registers a component definition.
func (b *Bundle) Component(c *Component) *Bundle {
	b.components = append(b.components, c)
	return b
}

// Blueprint registers a blueprint.
func (b *Bundle) Blueprint(bp *Blueprint) *Bundle {
	b.blueprints = append(b.blueprints, bp)
	return b
}

// Config adds a YAML definition document. name is used in error messages.
func (b *Bundle) Config(name string, data []byte) *Bundle {
	b.configs = append(b.configs, configSource{name: name, data: data})
	return b
}

// ConfigFile adds a YAML definition file, read when the registry is built.
func (b *Bundle) ConfigFile(path string) *Bundle {
	b.configs = append(b.configs, configSource{name: path, path: path})
	return b
}

// Command registers a Dragonfly command for this bundle.
// Commands are registered with Dragonfly's command system when the
// registry is built.
func (b *Bundle) Command(command cmd.Command) *Bundle {
	b.commands = append(b.commands, command)
	return b
}

// PostInit registers a hook run once the registry is fully built.
func (b *Bundle) PostInit(hook func(*Registry)) *Bundle {
	b.postInitHooks = append(b.postInitHooks, hook)
	return b
}

// Build returns a callback function that returns this bundle.
// This allows for cleaner inline bundle initialization:
//
//	bund := pico.NewBundle("weapons").
//	    ConfigFile("weapons.yml").
//	    Build()
//
//	reg := pico.NewBuilder().
//	    Bundle(bund).
//	    Init()
func (b *Bundle) Build() func(*Registry) *Bundle {
	return func(*Registry) *Bundle {
		return b
	}
}
