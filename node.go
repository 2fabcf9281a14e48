package pico

import (
	"fmt"
	"slices"
)

// Node is a component instance placed in a tree.
//
// A node exclusively owns its children. The link back to the parent is a
// non-owning reference used only for upward navigation; it is never followed
// by Copy and is kept consistent with the parent's child map by Attach,
// Detach and Remove, which are the only mutators of tree shape.
//
// Concurrency:
// A tree must only be mutated from one goroutine at a time. Nodes provide no
// internal synchronization.
type Node struct {
	// component is the shared, read-only definition of this node
	component *Component

	// features holds per-node feature data keyed by feature id
	features map[string]FeatureData

	// parent is the back-reference to the owning node, nil for roots
	parent *parentRef

	// children maps slot key -> child node
	children map[string]*Node

	// keys holds child keys in insertion order
	keys []string
}

// parentRef identifies where a node is attached.
type parentRef struct {
	node *Node
	key  string
}

// NewNode creates a detached node for the component with default data for
// every feature the component declares.
func NewNode(c *Component) *Node {
	n := &Node{
		component: c,
		features:  make(map[string]FeatureData, len(c.features)),
		children:  make(map[string]*Node),
	}
	for _, profile := range c.features {
		n.features[profile.FeatureID()] = profile.NewData()
	}
	return n
}

// Component returns the node's component definition.
func (n *Node) Component() *Component {
	return n.component
}

// Feature returns the feature data for id.
func (n *Node) Feature(id string) (FeatureData, bool) {
	data, ok := n.features[id]
	return data, ok
}

// HasFeature checks if feature data for id is instantiated on the node.
func (n *Node) HasFeature(id string) bool {
	_, ok := n.features[id]
	return ok
}

// Features returns the instantiated feature data in component declaration order.
func (n *Node) Features() []FeatureData {
	result := make([]FeatureData, 0, len(n.features))
	for _, profile := range n.component.features {
		if data, ok := n.features[profile.FeatureID()]; ok {
			result = append(result, data)
		}
	}
	return result
}

// SetFeature stores feature data on the node, replacing any existing data
// for the same feature. The component must declare the feature.
func (n *Node) SetFeature(data FeatureData) error {
	id := data.Profile().FeatureID()
	if _, ok := n.component.FeatureProfile(id); !ok {
		return fmt.Errorf("component %s: %w %q", n.component.ID(), ErrUnknownFeature, id)
	}
	n.features[id] = data
	return nil
}

// RemoveFeature removes the feature data for id, if present.
func (n *Node) RemoveFeature(id string) {
	delete(n.features, id)
}

// Child returns the direct child at key, or nil.
func (n *Node) Child(key string) *Node {
	return n.children[key]
}

// Get resolves path relative to n. Returns nil as soon as any step is missing.
func (n *Node) Get(path NodePath) *Node {
	cur := n
	for _, key := range path.segments {
		cur = cur.children[key]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Has checks if a direct child exists at key.
func (n *Node) Has(key string) bool {
	_, ok := n.children[key]
	return ok
}

// HasPath checks if path resolves relative to n.
func (n *Node) HasPath(path NodePath) bool {
	return n.Get(path) != nil
}

// Keys returns the child keys in insertion order.
func (n *Node) Keys() []string {
	return slices.Clone(n.keys)
}

// Children returns the direct children in insertion order.
func (n *Node) Children() []*Node {
	result := make([]*Node, len(n.keys))
	for i, key := range n.keys {
		result[i] = n.children[key]
	}
	return result
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.keys)
}

// Attach places child under n at key. Both the forward edge and the child's
// back-reference are set in one step. If child is attached elsewhere it is
// detached first; a node already present at key is detached and dropped.
// Attaching a child at the key it already occupies changes nothing.
func (n *Node) Attach(key string, child *Node) error {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == child {
			return fmt.Errorf("attach %s at %q: %w", child.component.ID(), n.Path().Plus(key), ErrCycle)
		}
	}

	if p := child.parent; p != nil && p.node == n && p.key == key {
		return nil
	}
	child.Detach()
	if old := n.children[key]; old != nil {
		old.parent = nil
	} else {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
	child.parent = &parentRef{node: n, key: key}
	return nil
}

// Insert is Attach guarded by the component's slot definitions: key must be a
// declared slot and child must satisfy the slot's rule.
func (n *Node) Insert(key string, child *Node) error {
	slot, ok := n.component.Slot(key)
	if !ok {
		return fmt.Errorf("component %s: %w %q", n.component.ID(), ErrUnknownSlot, key)
	}
	if !slot.Compatible(child) {
		return fmt.Errorf("component %s slot %q: %w %s", n.component.ID(), key, ErrIncompatible, child.component.ID())
	}
	return n.Attach(key, child)
}

// Detach removes n from its parent. The node itself and its subtree are kept.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	n.parent.node.Remove(n.parent.key)
}

// Remove detaches and returns the child at key, or nil.
func (n *Node) Remove(key string) *Node {
	child, ok := n.children[key]
	if !ok {
		return nil
	}
	delete(n.children, key)
	if i := slices.Index(n.keys, key); i >= 0 {
		n.keys = slices.Delete(n.keys, i, i+1)
	}
	child.parent = nil
	return child
}

// RemoveChildren detaches all children.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = make(map[string]*Node)
	n.keys = nil
}

// Parent returns the node n is attached to, or nil for roots.
func (n *Node) Parent() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.node
}

// Key returns the key n is attached under, and false for roots.
func (n *Node) Key() (string, bool) {
	if n.parent == nil {
		return "", false
	}
	return n.parent.key, true
}

// IsRoot returns true if n has no parent.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Root walks parent references up to the root of the tree.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent.node
	}
	return cur
}

// Path returns the path of n relative to its root.
func (n *Node) Path() NodePath {
	var segments []string
	for cur := n; cur.parent != nil; cur = cur.parent.node {
		segments = append(segments, cur.parent.key)
	}
	slices.Reverse(segments)
	return NodePath{segments: segments}
}

// Copy returns a detached deep copy of the subtree rooted at n. Feature data
// is copied; the component definition is shared.
func (n *Node) Copy() *Node {
	c := &Node{
		component: n.component,
		features:  make(map[string]FeatureData, len(n.features)),
		children:  make(map[string]*Node, len(n.children)),
		keys:      slices.Clone(n.keys),
	}
	for id, data := range n.features {
		c.features[id] = data.Copy()
	}
	for _, key := range n.keys {
		child := n.children[key].Copy()
		child.parent = &parentRef{node: c, key: key}
		c.children[key] = child
	}
	return c
}

// AsRoot returns a detached deep copy of n, suitable as the root of a new tree.
func (n *Node) AsRoot() *Node {
	return n.Copy()
}
