package pico

// Rule is a predicate over a tree position.
//
// Rules are stateless and must not mutate the target or any node reachable
// from it. Navigation misses (unresolvable paths) evaluate to false rather
// than failing.
type Rule interface {
	Applies(target *Node) bool
}

// constRule is the True/False rule.
type constRule bool

func (r constRule) Applies(*Node) bool { return bool(r) }

// Constant rules.
var (
	True  Rule = constRule(true)
	False Rule = constRule(false)
)

// HasTagsRule applies if the target's component has any of Keys as a tag.
type HasTagsRule struct {
	Keys []string
}

// HasTags creates a HasTagsRule.
func HasTags(keys ...string) HasTagsRule {
	return HasTagsRule{Keys: keys}
}

func (r HasTagsRule) Applies(target *Node) bool {
	return target.component.HasAnyTag(r.Keys)
}

// HasFeaturesRule applies if the target has data for any of Keys instantiated.
type HasFeaturesRule struct {
	Keys []string
}

// HasFeatures creates a HasFeaturesRule.
func HasFeatures(keys ...string) HasFeaturesRule {
	return HasFeaturesRule{Keys: keys}
}

func (r HasFeaturesRule) Applies(target *Node) bool {
	for _, key := range r.Keys {
		if target.HasFeature(key) {
			return true
		}
	}
	return false
}

// IsCompleteRule applies if no node in the target's subtree has an empty
// required slot.
type IsCompleteRule struct{}

// IsComplete is the IsCompleteRule.
var IsComplete = IsCompleteRule{}

func (IsCompleteRule) Applies(target *Node) bool {
	return target.Walk(func(n *Node, _ NodePath) WalkResult {
		for _, slot := range n.component.slots {
			if slot.Required && !n.Has(slot.Key) {
				return StopAll
			}
		}
		return Continue
	})
}

// NotRule negates Rule.
type NotRule struct {
	Rule Rule
}

// Not creates a NotRule.
func Not(r Rule) NotRule {
	return NotRule{Rule: r}
}

func (r NotRule) Applies(target *Node) bool {
	return !r.Rule.Applies(target)
}

// AllRule applies if every rule applies. An empty AllRule applies.
type AllRule struct {
	Rules []Rule
}

// All creates an AllRule.
func All(rules ...Rule) AllRule {
	return AllRule{Rules: rules}
}

func (r AllRule) Applies(target *Node) bool {
	for _, rule := range r.Rules {
		if !rule.Applies(target) {
			return false
		}
	}
	return true
}

// AnyRule applies if at least one rule applies. An empty AnyRule does not apply.
type AnyRule struct {
	Rules []Rule
}

// Any creates an AnyRule.
func Any(rules ...Rule) AnyRule {
	return AnyRule{Rules: rules}
}

func (r AnyRule) Applies(target *Node) bool {
	for _, rule := range r.Rules {
		if rule.Applies(target) {
			return true
		}
	}
	return false
}

// HasRule applies if Path resolves relative to the target.
type HasRule struct {
	Path NodePath
}

// Has creates a HasRule.
func Has(path NodePath) HasRule {
	return HasRule{Path: path}
}

func (r HasRule) Applies(target *Node) bool {
	return target.HasPath(r.Path)
}

// AsRule evaluates Rule at Path relative to the target.
type AsRule struct {
	Path NodePath
	Rule Rule
}

// As creates an AsRule.
func As(path NodePath, r Rule) AsRule {
	return AsRule{Path: path, Rule: r}
}

func (r AsRule) Applies(target *Node) bool {
	n := target.Get(r.Path)
	if n == nil {
		return false
	}
	return r.Rule.Applies(n)
}

// AsRootRule evaluates Rule at Path relative to the root of the target's tree.
type AsRootRule struct {
	Path NodePath
	Rule Rule
}

// AsRoot creates an AsRootRule.
func AsRoot(path NodePath, r Rule) AsRootRule {
	return AsRootRule{Path: path, Rule: r}
}

func (r AsRootRule) Applies(target *Node) bool {
	n := target.Root().Get(r.Path)
	if n == nil {
		return false
	}
	return r.Rule.Applies(n)
}

// IsRootRule applies if the target has no parent.
type IsRootRule struct{}

// IsRoot is the IsRootRule.
var IsRoot = IsRootRule{}

func (IsRootRule) Applies(target *Node) bool {
	return target.IsRoot()
}
