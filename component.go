package pico

import (
	"slices"
)

// Component is the shared definition of a class of nodes: its tags, the
// slots children may be attached at, the features instantiated on every node,
// and the stat contributions it makes to the tree it is part of.
//
// Components are assembled with the With* methods and must not be changed
// once registered; nodes and blueprints share them read-only.
type Component struct {
	id string

	tags    map[string]struct{}
	tagList []string

	slots     []*Slot
	slotIndex map[string]*Slot

	features     []FeatureProfile
	featureIndex map[string]FeatureProfile

	stats []ApplicableStats
}

// NewComponent creates an empty component definition.
func NewComponent(id string) *Component {
	return &Component{
		id:           id,
		tags:         make(map[string]struct{}),
		slotIndex:    make(map[string]*Slot),
		featureIndex: make(map[string]FeatureProfile),
	}
}

// WithTags adds tags to the component.
func (c *Component) WithTags(tags ...string) *Component {
	for _, tag := range tags {
		if _, ok := c.tags[tag]; ok {
			continue
		}
		c.tags[tag] = struct{}{}
		c.tagList = append(c.tagList, tag)
	}
	return c
}

// WithSlot declares a slot. A slot with the same key replaces the old one.
func (c *Component) WithSlot(s *Slot) *Component {
	if _, ok := c.slotIndex[s.Key]; ok {
		c.slots = slices.DeleteFunc(c.slots, func(o *Slot) bool { return o.Key == s.Key })
	}
	c.slots = append(c.slots, s)
	c.slotIndex[s.Key] = s
	return c
}

// WithFeature declares a feature profile. A profile for the same feature
// replaces the old one.
func (c *Component) WithFeature(p FeatureProfile) *Component {
	id := p.FeatureID()
	if _, ok := c.featureIndex[id]; ok {
		c.features = slices.DeleteFunc(c.features, func(o FeatureProfile) bool { return o.FeatureID() == id })
	}
	c.features = append(c.features, p)
	c.featureIndex[id] = p
	return c
}

// WithStats adds a stat contribution. Declaration order is the tie-break
// between contributions of equal priority.
func (c *Component) WithStats(s ApplicableStats) *Component {
	c.stats = append(c.stats, s)
	return c
}

// ID returns the component id.
func (c *Component) ID() string {
	return c.id
}

// Tags returns the tags in declaration order.
func (c *Component) Tags() []string {
	return slices.Clone(c.tagList)
}

// HasTag checks if the component has tag.
func (c *Component) HasTag(tag string) bool {
	_, ok := c.tags[tag]
	return ok
}

// HasAnyTag checks if any of keys is a tag of the component.
func (c *Component) HasAnyTag(keys []string) bool {
	for _, key := range keys {
		if _, ok := c.tags[key]; ok {
			return true
		}
	}
	return false
}

// Slots returns the slots in declaration order.
func (c *Component) Slots() []*Slot {
	return slices.Clone(c.slots)
}

// Slot returns the slot declared at key.
func (c *Component) Slot(key string) (*Slot, bool) {
	s, ok := c.slotIndex[key]
	return s, ok
}

// Features returns the feature profiles in declaration order.
func (c *Component) Features() []FeatureProfile {
	return slices.Clone(c.features)
}

// FeatureProfile returns the profile declared for feature id.
func (c *Component) FeatureProfile(id string) (FeatureProfile, bool) {
	p, ok := c.featureIndex[id]
	return p, ok
}

// Stats returns the stat contributions in declaration order.
func (c *Component) Stats() []ApplicableStats {
	return slices.Clone(c.stats)
}

// NewNode creates a detached node for the component.
func (c *Component) NewNode() *Node {
	return NewNode(c)
}

// orderKeys orders child keys by slot declaration order, followed by any
// keys that are not slots in lexical order.
func (c *Component) orderKeys(keys []string) []string {
	ordered := make([]string, 0, len(keys))
	rest := make([]string, 0)
	present := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		present[key] = struct{}{}
	}
	for _, s := range c.slots {
		if _, ok := present[s.Key]; ok {
			ordered = append(ordered, s.Key)
			delete(present, s.Key)
		}
	}
	for key := range present {
		rest = append(rest, key)
	}
	slices.Sort(rest)
	return append(ordered, rest...)
}

// Slot is a named attachment point on a component.
type Slot struct {
	// Key is the child key the slot occupies.
	Key string

	// Required slots must be filled for the tree to be complete.
	Required bool

	// Rule decides whether a candidate child may be attached. Nil accepts anything.
	Rule Rule
}

// NewSlot creates a slot definition.
func NewSlot(key string, required bool, rule Rule) *Slot {
	return &Slot{Key: key, Required: required, Rule: rule}
}

// Compatible evaluates the slot rule against the candidate child.
func (s *Slot) Compatible(child *Node) bool {
	if s.Rule == nil {
		return true
	}
	return s.Rule.Applies(child)
}
