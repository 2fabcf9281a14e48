package pico

// WalkResult directs a tree walk after visiting a node.
type WalkResult int

const (
	// Continue descends into the node's children.
	Continue WalkResult = iota

	// StopBranch skips the node's children but continues with the rest of the tree.
	StopBranch

	// StopAll aborts the whole walk.
	StopAll
)

// String returns the string representation of the walk result.
func (r WalkResult) String() string {
	switch r {
	case Continue:
		return "Continue"
	case StopBranch:
		return "StopBranch"
	case StopAll:
		return "StopAll"
	default:
		return "Unknown"
	}
}

// WalkFunc is called for every visited node with its path relative to the
// node the walk started at.
type WalkFunc func(n *Node, path NodePath) WalkResult

// Walk visits n and its descendants depth-first in pre-order, children in
// insertion order. Returns false if fn returned StopAll.
//
// The tree must not be mutated during the walk.
func (n *Node) Walk(fn WalkFunc) bool {
	return n.walk(EmptyPath, fn)
}

func (n *Node) walk(path NodePath, fn WalkFunc) bool {
	switch fn(n, path) {
	case StopAll:
		return false
	case StopBranch:
		return true
	}
	for _, key := range n.keys {
		if !n.children[key].walk(path.Plus(key), fn) {
			return false
		}
	}
	return true
}
