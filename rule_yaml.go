package pico

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule keys in the YAML form.
const (
	ruleTrue        = "true"
	ruleFalse       = "false"
	ruleIsRoot      = "is_root"
	ruleIsComplete  = "is_complete"
	ruleNot         = "not"
	ruleAll         = "all"
	ruleAny         = "any"
	ruleHasTags     = "has_tags"
	ruleHasFeatures = "has_features"
	ruleHas         = "has"
	ruleAs          = "as"
	ruleAsRoot      = "as_root"
)

// RuleConfig wraps a Rule for decoding from YAML.
type RuleConfig struct {
	Rule
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *RuleConfig) UnmarshalYAML(value *yaml.Node) error {
	r, err := DecodeRule(value)
	if err != nil {
		return err
	}
	c.Rule = r
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c RuleConfig) MarshalYAML() (any, error) {
	if c.Rule == nil {
		return true, nil
	}
	return c.Rule, nil
}

// ParseRule decodes a rule from YAML source.
func ParseRule(data []byte) (Rule, error) {
	var c RuleConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Rule == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidRule)
	}
	return c.Rule, nil
}

// DecodeRule decodes a rule from a YAML node.
func DecodeRule(node *yaml.Node) (Rule, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) != 1 {
			return nil, ruleError(node, "empty document")
		}
		return DecodeRule(node.Content[0])

	case yaml.AliasNode:
		return DecodeRule(node.Alias)

	case yaml.ScalarNode:
		switch node.Value {
		case ruleTrue:
			return True, nil
		case ruleFalse:
			return False, nil
		case ruleIsRoot:
			return IsRoot, nil
		case ruleIsComplete:
			return IsComplete, nil
		}
		return nil, ruleError(node, "unknown rule %q", node.Value)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, ruleError(node, "expected a single rule key, got %d", len(node.Content)/2)
		}
		return decodeRuleEntry(node.Content[0], node.Content[1])
	}

	return nil, ruleError(node, "expected a scalar or mapping")
}

func decodeRuleEntry(keyNode, value *yaml.Node) (Rule, error) {
	switch keyNode.Value {
	case ruleNot:
		inner, err := DecodeRule(value)
		if err != nil {
			return nil, err
		}
		return Not(inner), nil

	case ruleAll, ruleAny:
		if value.Kind != yaml.SequenceNode {
			return nil, ruleError(value, "%s expects a list of rules", keyNode.Value)
		}
		rules := make([]Rule, 0, len(value.Content))
		for _, item := range value.Content {
			r, err := DecodeRule(item)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
		if keyNode.Value == ruleAll {
			return All(rules...), nil
		}
		return Any(rules...), nil

	case ruleHasTags, ruleHasFeatures:
		keys, err := decodeStrings(value)
		if err != nil {
			return nil, ruleError(value, "%s: %v", keyNode.Value, err)
		}
		if keyNode.Value == ruleHasTags {
			return HasTags(keys...), nil
		}
		return HasFeatures(keys...), nil

	case ruleHas:
		path, err := decodePath(value)
		if err != nil {
			return nil, ruleError(value, "has: %v", err)
		}
		return Has(path), nil

	case ruleAs, ruleAsRoot:
		var body struct {
			Path yaml.Node `yaml:"path"`
			Rule yaml.Node `yaml:"rule"`
		}
		if err := value.Decode(&body); err != nil {
			return nil, ruleError(value, "%s: %v", keyNode.Value, err)
		}
		if body.Rule.Kind == 0 {
			return nil, ruleError(value, "%s: missing rule", keyNode.Value)
		}
		path, err := decodePath(&body.Path)
		if err != nil {
			return nil, ruleError(value, "%s: %v", keyNode.Value, err)
		}
		inner, err := DecodeRule(&body.Rule)
		if err != nil {
			return nil, err
		}
		if keyNode.Value == ruleAs {
			return As(path, inner), nil
		}
		return AsRoot(path, inner), nil
	}

	return nil, ruleError(keyNode, "unknown rule %q", keyNode.Value)
}

// decodeStrings accepts a scalar or a list of scalars.
func decodeStrings(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}, nil
	}
	var keys []string
	if err := node.Decode(&keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// decodePath accepts "a/b", [a, b] or an absent node (the empty path).
func decodePath(node *yaml.Node) (NodePath, error) {
	switch node.Kind {
	case 0:
		return EmptyPath, nil
	case yaml.ScalarNode:
		return ParsePath(node.Value), nil
	}
	var segments []string
	if err := node.Decode(&segments); err != nil {
		return EmptyPath, err
	}
	return PathOf(segments...), nil
}

func ruleError(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", node.Line, ErrInvalidRule, fmt.Sprintf(format, args...))
}

// MarshalYAML implements yaml.Marshaler.
func (r constRule) MarshalYAML() (any, error) { return bool(r), nil }

// MarshalYAML implements yaml.Marshaler.
func (r HasTagsRule) MarshalYAML() (any, error) {
	return map[string]any{ruleHasTags: r.Keys}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r HasFeaturesRule) MarshalYAML() (any, error) {
	return map[string]any{ruleHasFeatures: r.Keys}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (IsCompleteRule) MarshalYAML() (any, error) { return ruleIsComplete, nil }

// MarshalYAML implements yaml.Marshaler.
func (IsRootRule) MarshalYAML() (any, error) { return ruleIsRoot, nil }

// MarshalYAML implements yaml.Marshaler.
func (r NotRule) MarshalYAML() (any, error) {
	return map[string]any{ruleNot: r.Rule}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r AllRule) MarshalYAML() (any, error) {
	return map[string]any{ruleAll: nonNilRules(r.Rules)}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r AnyRule) MarshalYAML() (any, error) {
	return map[string]any{ruleAny: nonNilRules(r.Rules)}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r HasRule) MarshalYAML() (any, error) {
	return map[string]any{ruleHas: r.Path.Strings()}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r AsRule) MarshalYAML() (any, error) {
	return map[string]any{ruleAs: map[string]any{"path": r.Path.Strings(), "rule": r.Rule}}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r AsRootRule) MarshalYAML() (any, error) {
	return map[string]any{ruleAsRoot: map[string]any{"path": r.Path.Strings(), "rule": r.Rule}}, nil
}

func nonNilRules(rules []Rule) []Rule {
	if rules == nil {
		return []Rule{}
	}
	return rules
}
