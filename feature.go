package pico

import (
	"fmt"
)

// Feature is a pluggable node behavior. A feature is registered once per
// registry and moves through three stages:
//
//	Feature        -> decodes a FeatureProfile from a component definition
//	FeatureProfile -> per component, immutable, creates FeatureData
//	FeatureData    -> per node, mutable, copied with the tree
//	FeatureState   -> optional runtime view built from data and compiled stats
type Feature interface {
	// ID returns the unique feature id.
	ID() string

	// DecodeProfile decodes the profile declared on a component. decode
	// fills a value from the underlying configuration.
	DecodeProfile(decode func(v any) error) (FeatureProfile, error)
}

// FeatureProfile is the per-component configuration of a feature.
type FeatureProfile interface {
	// FeatureID returns the id of the feature this profile belongs to.
	FeatureID() string

	// NewData creates default data for a new node.
	NewData() FeatureData

	// DecodeData restores data from its encoded form.
	DecodeData(tag map[string]any) (FeatureData, error)
}

// FeatureData is the per-node state of a feature.
type FeatureData interface {
	// Profile returns the profile the data was created from.
	Profile() FeatureProfile

	// Copy returns an independent copy.
	Copy() FeatureData

	// Encode returns the data as a map of NBT-compatible values.
	Encode() map[string]any
}

// FeatureState is the runtime view of feature data on a live tree.
type FeatureState interface {
	Data() FeatureData
}

// Stateful is implemented by feature data that builds a runtime state.
type Stateful interface {
	NewState(n *Node, stats *CompiledStatMap) (FeatureState, error)
}

// States builds the runtime states of every stateful feature on n.
func States(n *Node, stats *CompiledStatMap) ([]FeatureState, error) {
	var states []FeatureState
	for _, data := range n.Features() {
		s, ok := data.(Stateful)
		if !ok {
			continue
		}
		state, err := s.NewState(n, stats)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", data.Profile().FeatureID(), err)
		}
		states = append(states, state)
	}
	return states, nil
}

// DurabilityFeatureID is the id of the built-in durability feature.
const DurabilityFeatureID = "durability"

// DurabilityFeature tracks accumulated damage against a maximum read from a stat.
//
//	features:
//	  durability: {stat: durability}
type DurabilityFeature struct{}

// ID implements Feature.
func (DurabilityFeature) ID() string {
	return DurabilityFeatureID
}

// DecodeProfile implements Feature.
func (DurabilityFeature) DecodeProfile(decode func(v any) error) (FeatureProfile, error) {
	var cfg struct {
		Stat string `yaml:"stat"`
	}
	if err := decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.Stat == "" {
		cfg.Stat = DurabilityFeatureID
	}
	return NewDurabilityProfile(cfg.Stat), nil
}

// DurabilityProfile names the stat holding the maximum durability.
type DurabilityProfile struct {
	StatKey string
}

// NewDurabilityProfile creates a durability profile.
func NewDurabilityProfile(statKey string) *DurabilityProfile {
	return &DurabilityProfile{StatKey: statKey}
}

// FeatureID implements FeatureProfile.
func (p *DurabilityProfile) FeatureID() string {
	return DurabilityFeatureID
}

// NewData implements FeatureProfile.
func (p *DurabilityProfile) NewData() FeatureData {
	return &DurabilityData{profile: p}
}

// DecodeData implements FeatureProfile.
func (p *DurabilityProfile) DecodeData(tag map[string]any) (FeatureData, error) {
	d := &DurabilityData{profile: p}
	if raw, ok := tag["damage"]; ok {
		damage, err := toNumber[int64](raw)
		if err != nil {
			return nil, fmt.Errorf("durability damage: %w", err)
		}
		d.damage = damage
	}
	return d, nil
}

// DurabilityData is the damage taken by a node.
type DurabilityData struct {
	profile *DurabilityProfile
	damage  int64
}

// Profile implements FeatureData.
func (d *DurabilityData) Profile() FeatureProfile {
	return d.profile
}

// Damage returns the accumulated damage.
func (d *DurabilityData) Damage() int64 {
	return d.damage
}

// AddDamage adds to the accumulated damage. Negative amounts repair, down to zero.
func (d *DurabilityData) AddDamage(amount int64) {
	d.damage = max(d.damage+amount, 0)
}

// Copy implements FeatureData.
func (d *DurabilityData) Copy() FeatureData {
	c := *d
	return &c
}

// Encode implements FeatureData.
func (d *DurabilityData) Encode() map[string]any {
	return map[string]any{"damage": d.damage}
}

// NewState implements Stateful.
func (d *DurabilityData) NewState(_ *Node, stats *CompiledStatMap) (FeatureState, error) {
	raw, ok := stats.Lookup(d.profile.StatKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStat, d.profile.StatKey)
	}
	maximum, err := toNumber[int64](raw)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", d.profile.StatKey, err)
	}
	return &DurabilityState{data: d, Max: maximum}, nil
}

// DurabilityState is the durability of a node on a live tree.
type DurabilityState struct {
	data *DurabilityData

	// Max is the maximum durability computed for the tree.
	Max int64
}

// Data implements FeatureState.
func (s *DurabilityState) Data() FeatureData {
	return s.data
}

// Remaining returns the durability left, never below zero.
func (s *DurabilityState) Remaining() int64 {
	return max(s.Max-s.data.damage, 0)
}

// Broken reports whether no durability is left.
func (s *DurabilityState) Broken() bool {
	return s.Remaining() == 0
}
