package pico

// Blueprint is a named tree template. Every Create returns an independent copy.
type Blueprint struct {
	id       string
	template *Node
}

// NewBlueprint creates a blueprint from a copy of template, detached from any parent.
func NewBlueprint(id string, template *Node) *Blueprint {
	return &Blueprint{id: id, template: template.AsRoot()}
}

// ID returns the blueprint id.
func (b *Blueprint) ID() string {
	return b.id
}

// Create instantiates a fresh tree.
func (b *Blueprint) Create() *Node {
	return b.template.Copy()
}
