package pico

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// NBT tag names of a persisted tree.
const (
	tagID       = "id"
	tagUUID     = "uuid"
	tagFeatures = "features"
	tagChildren = "children"
)

// Instance is a live tree with a stable identity. The id survives
// persistence, so compiled stats can be cached per instance.
type Instance struct {
	ID   uuid.UUID
	Tree *Node
}

// NewInstance wraps tree with a fresh id.
func NewInstance(tree *Node) *Instance {
	return &Instance{ID: uuid.New(), Tree: tree}
}

// NewInstance creates an instance of the blueprint registered under id.
func (r *Registry) NewInstance(blueprintID string) (*Instance, error) {
	tree, err := r.Create(blueprintID)
	if err != nil {
		return nil, err
	}
	return NewInstance(tree), nil
}

// EncodeTree encodes the tree rooted at n as little endian NBT.
func EncodeTree(n *Node) ([]byte, error) {
	return nbt.MarshalEncoding(treeTag(n), nbt.LittleEndian)
}

// EncodeInstance encodes an instance as little endian NBT. The root compound
// additionally carries the instance id.
func EncodeInstance(inst *Instance) ([]byte, error) {
	tag := treeTag(inst.Tree)
	tag[tagUUID] = inst.ID.String()
	return nbt.MarshalEncoding(tag, nbt.LittleEndian)
}

func treeTag(n *Node) map[string]any {
	features := make(map[string]any)
	for _, data := range n.Features() {
		features[data.Profile().FeatureID()] = data.Encode()
	}
	children := make(map[string]any, n.Len())
	for _, key := range n.Keys() {
		children[key] = treeTag(n.Child(key))
	}
	return map[string]any{
		tagID:       n.Component().ID(),
		tagFeatures: features,
		tagChildren: children,
	}
}

// DecodeTree decodes a tree encoded with EncodeTree or EncodeInstance.
//
// Persisted trees are restored as saved: children are attached without slot
// checks, and feature data for features the component no longer declares is
// logged and dropped. Unknown component ids are errors.
func (r *Registry) DecodeTree(data []byte) (*Node, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	return r.treeFromTag(tag, EmptyPath)
}

// DecodeInstance decodes an instance encoded with EncodeInstance.
func (r *Registry) DecodeInstance(data []byte) (*Instance, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	raw, _ := tag[tagUUID].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("instance id: %w", err)
	}
	tree, err := r.treeFromTag(tag, EmptyPath)
	if err != nil {
		return nil, err
	}
	return &Instance{ID: id, Tree: tree}, nil
}

func decodeTag(data []byte) (map[string]any, error) {
	var tag map[string]any
	if err := nbt.UnmarshalEncoding(data, &tag, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return tag, nil
}

func (r *Registry) treeFromTag(tag map[string]any, path NodePath) (*Node, error) {
	id, _ := tag[tagID].(string)
	c, ok := r.Component(id)
	if !ok {
		return nil, fmt.Errorf("tree %q: %w: %q", path, ErrUnknownComponent, id)
	}
	n := NewNode(c)

	features, _ := tag[tagFeatures].(map[string]any)
	for _, fid := range sortedKeys(features) {
		profile, ok := c.FeatureProfile(fid)
		if !ok {
			r.log.Warn("pico: dropping data of undeclared feature",
				"component", id,
				"feature", fid,
				"path", path.String(),
			)
			continue
		}
		ft, ok := features[fid].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tree %q: feature %s: expected a compound, got %T", path, fid, features[fid])
		}
		data, err := profile.DecodeData(ft)
		if err != nil {
			return nil, fmt.Errorf("tree %q: feature %s: %w", path, fid, err)
		}
		if err := n.SetFeature(data); err != nil {
			return nil, fmt.Errorf("tree %q: %w", path, err)
		}
	}

	children, _ := tag[tagChildren].(map[string]any)
	for _, key := range c.orderKeys(sortedKeys(children)) {
		ct, ok := children[key].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tree %q: expected a compound, got %T", path.Plus(key), children[key])
		}
		child, err := r.treeFromTag(ct, path.Plus(key))
		if err != nil {
			return nil, err
		}
		if err := n.Attach(key, child); err != nil {
			return nil, fmt.Errorf("tree %q: %w", path.Plus(key), err)
		}
	}
	return n, nil
}
