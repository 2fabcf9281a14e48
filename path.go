package pico

import (
	"slices"
	"strings"
)

// PathSeparator separates segments in the string form of a NodePath.
const PathSeparator = "/"

// NodePath identifies a node relative to some root as an ordered list of
// child keys. The empty path denotes the root itself.
//
// NodePath is an immutable value: every operation returns a new path.
type NodePath struct {
	segments []string
}

// EmptyPath is the path of a root node.
var EmptyPath = NodePath{}

// PathOf creates a path from the given segments.
func PathOf(segments ...string) NodePath {
	return NodePath{segments: slices.Clone(segments)}
}

// ParsePath parses a PathSeparator-delimited path. Empty segments are dropped,
// so "", "/" and "a//b" parse to the empty path, the empty path and [a b].
func ParsePath(s string) NodePath {
	var segments []string
	for part := range strings.SplitSeq(s, PathSeparator) {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return NodePath{segments: segments}
}

// Plus returns a new path with segment appended.
func (p NodePath) Plus(segment string) NodePath {
	segments := make([]string, len(p.segments)+1)
	copy(segments, p.segments)
	segments[len(p.segments)] = segment
	return NodePath{segments: segments}
}

// Join returns a new path with all segments of other appended.
func (p NodePath) Join(other NodePath) NodePath {
	if len(other.segments) == 0 {
		return p
	}
	segments := make([]string, 0, len(p.segments)+len(other.segments))
	segments = append(segments, p.segments...)
	segments = append(segments, other.segments...)
	return NodePath{segments: segments}
}

// Strings returns the segments in traversal order.
func (p NodePath) Strings() []string {
	return slices.Clone(p.segments)
}

// Len returns the number of segments.
func (p NodePath) Len() int {
	return len(p.segments)
}

// IsEmpty returns true for the root path.
func (p NodePath) IsEmpty() bool {
	return len(p.segments) == 0
}

// Segment returns the segment at index i.
func (p NodePath) Segment(i int) string {
	return p.segments[i]
}

// HasPrefix returns true if prefix is an ancestor-or-self of p.
func (p NodePath) HasPrefix(prefix NodePath) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	return slices.Equal(p.segments[:len(prefix.segments)], prefix.segments)
}

// Equal compares two paths segment by segment.
func (p NodePath) Equal(other NodePath) bool {
	return slices.Equal(p.segments, other.segments)
}

// String returns the PathSeparator-delimited form of the path.
func (p NodePath) String() string {
	return strings.Join(p.segments, PathSeparator)
}
