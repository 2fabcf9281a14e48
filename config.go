package pico

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileConfig is one YAML definition document:
//
//	stats:
//	  - {key: damage, type: decimal}
//	components:
//	  - id: blade
//	    tags: [blade]
//	    stats:
//	      - values: {damage: [["+", 4.0]]}
//	blueprints:
//	  - id: sword
//	    tree: {component: hilt, children: {blade: {component: blade}}}
type FileConfig struct {
	Stats      []StatConfig      `yaml:"stats" validate:"dive"`
	Components []ComponentConfig `yaml:"components" validate:"dive"`
	Blueprints []BlueprintConfig `yaml:"blueprints" validate:"dive"`
}

// StatConfig declares a stat kind.
type StatConfig struct {
	Key  string `yaml:"key" validate:"required"`
	Type string `yaml:"type" validate:"required,oneof=decimal integer vector flag text"`
}

// ComponentConfig declares a component.
type ComponentConfig struct {
	ID    string        `yaml:"id" validate:"required"`
	Tags  []string      `yaml:"tags" validate:"dive,required"`
	Slots []SlotConfig  `yaml:"slots" validate:"dive"`
	Stats []StatsConfig `yaml:"stats" validate:"dive"`

	// Features maps feature id to the feature's profile, in declaration order.
	Features yaml.Node `yaml:"features" validate:"-"`
}

// SlotConfig declares a slot.
type SlotConfig struct {
	Key      string      `yaml:"key" validate:"required,childkey"`
	Required bool        `yaml:"required"`
	Rule     *RuleConfig `yaml:"rule" validate:"-"`
}

// StatsConfig declares an ApplicableStats block. Values maps stat keys to
// operation lists; a bare scalar is shorthand for a single "=".
//
//	values:
//	  damage: [["=", 10.0], ["*", 2.0]]
//	  durability: 250
type StatsConfig struct {
	Priority int         `yaml:"priority"`
	Reversed bool        `yaml:"reversed"`
	Rule     *RuleConfig `yaml:"rule" validate:"-"`
	Values   yaml.Node   `yaml:"values" validate:"-"`
}

// BlueprintConfig declares a blueprint.
type BlueprintConfig struct {
	ID   string      `yaml:"id" validate:"required"`
	Tree *TreeConfig `yaml:"tree" validate:"required"`
}

// TreeConfig is the YAML form of a node tree.
type TreeConfig struct {
	Component string                 `yaml:"component" validate:"required"`
	Features  yaml.Node              `yaml:"features,omitempty" validate:"-"`
	Children  map[string]*TreeConfig `yaml:"children,omitempty" validate:"dive,keys,childkey,endkeys,required"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()

	// Child keys become path segments, so they cannot contain the separator.
	_ = configValidate.RegisterValidation("childkey", func(fl validator.FieldLevel) bool {
		key := fl.Field().String()
		return key != "" && !strings.Contains(key, PathSeparator)
	})
}

// DecodeConfig decodes and validates a definition document. Unknown fields
// are rejected. An empty document is an empty config.
func DecodeConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := configValidate.Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseOps tokenizes the YAML form of a stat chain: either a list of
// [operator, operand] pairs or a single operand meaning "=".
func ParseOps(node *yaml.Node) ([]Op, error) {
	if node.Kind == yaml.AliasNode {
		return ParseOps(node.Alias)
	}
	if node.Kind != yaml.SequenceNode || (len(node.Content) > 0 && node.Content[0].Kind != yaml.SequenceNode) {
		var operand any
		if err := node.Decode(&operand); err != nil {
			return nil, err
		}
		return []Op{{Operator: OpSet, Operand: operand}}, nil
	}

	ops := make([]Op, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.SequenceNode || len(item.Content) != 2 || item.Content[0].Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %w: expected [operator, operand]", item.Line, ErrInvalidOperand)
		}
		var operand any
		if err := item.Content[1].Decode(&operand); err != nil {
			return nil, err
		}
		ops = append(ops, Op{Operator: item.Content[0].Value, Operand: operand})
	}
	return ops, nil
}

// newStatKind creates the stat kind named by a StatConfig type.
func newStatKind(cfg StatConfig) AnyStat {
	switch cfg.Type {
	case "integer":
		return IntegerStat(cfg.Key)
	case "vector":
		return VectorStat(cfg.Key)
	case "flag":
		return FlagStat(cfg.Key)
	case "text":
		return TextStat(cfg.Key)
	}
	return DecimalStat(cfg.Key)
}

// decodeComponent turns a component config into a definition. Stats and
// features it references must already be registered.
func (r *Registry) decodeComponent(cfg ComponentConfig) (*Component, error) {
	c := NewComponent(cfg.ID).WithTags(cfg.Tags...)
	for _, s := range cfg.Slots {
		c.WithSlot(NewSlot(s.Key, s.Required, s.Rule.rule()))
	}

	err := mappingPairs(&cfg.Features, func(id string, value *yaml.Node) error {
		f, ok := r.Feature(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFeature, id)
		}
		profile, err := f.DecodeProfile(decodeNode(value))
		if err != nil {
			return fmt.Errorf("feature %s: %w", id, err)
		}
		c.WithFeature(profile)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", cfg.ID, err)
	}

	for i, sc := range cfg.Stats {
		m, err := r.decodeStatMap(&sc.Values)
		if err != nil {
			return nil, fmt.Errorf("component %s: stats %d: %w", cfg.ID, i, err)
		}
		c.WithStats(ApplicableStats{
			Stats:    m,
			Priority: sc.Priority,
			Reversed: sc.Reversed,
			Rule:     sc.Rule.rule(),
		})
	}
	return c, nil
}

// decodeStatMap decodes a mapping of stat key to operations, keeping the
// document's key order.
func (r *Registry) decodeStatMap(node *yaml.Node) (*StatMap, error) {
	m := NewStatMap()
	err := mappingPairs(node, func(key string, value *yaml.Node) error {
		stat, ok := r.Stat(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownStat, key)
		}
		ops, err := ParseOps(value)
		if err != nil {
			return fmt.Errorf("stat %s: %w", key, err)
		}
		chain, err := stat.ParseChain(ops)
		if err != nil {
			return fmt.Errorf("stat %s: %w", key, err)
		}
		m.Set(key, chain)
		return nil
	})
	return m, err
}

// TreeFromConfig builds a node tree. Children are inserted in slot
// declaration order and must fit their slots.
func (r *Registry) TreeFromConfig(cfg *TreeConfig) (*Node, error) {
	return r.treeFromConfig(cfg, EmptyPath)
}

func (r *Registry) treeFromConfig(cfg *TreeConfig, path NodePath) (*Node, error) {
	c, ok := r.Component(cfg.Component)
	if !ok {
		return nil, fmt.Errorf("tree %q: %w: %s", path, ErrUnknownComponent, cfg.Component)
	}
	n := NewNode(c)

	err := mappingPairs(&cfg.Features, func(id string, value *yaml.Node) error {
		profile, ok := c.FeatureProfile(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFeature, id)
		}
		var tag map[string]any
		if err := decodeNode(value)(&tag); err != nil {
			return err
		}
		data, err := profile.DecodeData(tag)
		if err != nil {
			return err
		}
		return n.SetFeature(data)
	})
	if err != nil {
		return nil, fmt.Errorf("tree %q: %w", path, err)
	}

	keys := make([]string, 0, len(cfg.Children))
	for key := range cfg.Children {
		keys = append(keys, key)
	}
	for _, key := range c.orderKeys(keys) {
		child, err := r.treeFromConfig(cfg.Children[key], path.Plus(key))
		if err != nil {
			return nil, err
		}
		if err := n.Insert(key, child); err != nil {
			return nil, fmt.Errorf("tree %q: %w", path.Plus(key), err)
		}
	}
	return n, nil
}

// ParseTree decodes a node tree from YAML.
func (r *Registry) ParseTree(data []byte) (*Node, error) {
	var cfg TreeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := configValidate.Struct(&cfg); err != nil {
		return nil, err
	}
	return r.TreeFromConfig(&cfg)
}

// TreeConfigOf returns the YAML form of the tree rooted at n.
func TreeConfigOf(n *Node) (*TreeConfig, error) {
	cfg := &TreeConfig{Component: n.Component().ID()}

	if features := n.Features(); len(features) > 0 {
		cfg.Features = yaml.Node{Kind: yaml.MappingNode}
		for _, data := range features {
			var value yaml.Node
			if err := value.Encode(data.Encode()); err != nil {
				return nil, err
			}
			key := yaml.Node{Kind: yaml.ScalarNode, Value: data.Profile().FeatureID()}
			cfg.Features.Content = append(cfg.Features.Content, &key, &value)
		}
	}

	if n.Len() > 0 {
		cfg.Children = make(map[string]*TreeConfig, n.Len())
		for _, key := range n.Keys() {
			child, err := TreeConfigOf(n.Child(key))
			if err != nil {
				return nil, err
			}
			cfg.Children[key] = child
		}
	}
	return cfg, nil
}

// MarshalTree encodes the tree rooted at n as YAML.
func MarshalTree(n *Node) ([]byte, error) {
	cfg, err := TreeConfigOf(n)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(cfg)
}

func (c *RuleConfig) rule() Rule {
	if c == nil {
		return nil
	}
	return c.Rule
}

// mappingPairs calls fn for every key of a YAML mapping, in document order.
// An absent or null node has no pairs.
func mappingPairs(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	switch {
	case node.Kind == 0:
		return nil
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil
	case node.Kind == yaml.AliasNode:
		return mappingPairs(node.Alias, fn)
	case node.Kind != yaml.MappingNode:
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// decodeNode returns a decode function over node. A null or absent node
// leaves the target untouched.
func decodeNode(node *yaml.Node) func(v any) error {
	return func(v any) error {
		if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
			return nil
		}
		return node.Decode(v)
	}
}
