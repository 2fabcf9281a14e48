package pico

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestIsComplete(t *testing.T) {
	defs := newTestDefs()

	root := defs.newSword(t)
	assert.True(t, IsComplete.Applies(root), "optional gem slot may stay empty")

	for _, path := range []NodePath{PathOf("blade"), PathOf("handle"), PathOf("blade", "tip")} {
		t.Run(path.String(), func(t *testing.T) {
			tree := defs.newSword(t)
			tree.Get(path).Detach()
			assert.False(t, IsComplete.Applies(tree))
		})
	}

	// Completeness only looks at the target's subtree.
	tree := defs.newSword(t)
	tree.Get(PathOf("blade", "tip")).Detach()
	assert.True(t, IsComplete.Applies(tree.Child("handle")))
}

func TestRuleComposition(t *testing.T) {
	rule := All(HasTags("metal"), Not(HasFeatures("broken")))

	tests := []struct {
		name      string
		component *Component
		want      bool
	}{
		{"metal", NewComponent("m").WithTags("metal"), true},
		{"metal broken", NewComponent("mb").WithTags("metal").WithFeature(markerProfile{id: "broken"}), false},
		{"wood", NewComponent("w").WithTags("wood"), false},
		{"wood broken", NewComponent("wb").WithTags("wood").WithFeature(markerProfile{id: "broken"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Applies(NewNode(tt.component)))
		})
	}

	// Feature presence is per node, not per component.
	n := NewNode(tests[1].component)
	n.RemoveFeature("broken")
	assert.True(t, rule.Applies(n))
}

func TestAsRootResolvesFromRoot(t *testing.T) {
	c := NewComponent("n")
	root := NewNode(c)
	a := NewNode(c)
	b := NewNode(c)
	require.NoError(t, root.Attach("a", a))
	require.NoError(t, a.Attach("b", b))

	rule := AsRoot(PathOf("a", "b"), Not(IsRoot))
	assert.True(t, rule.Applies(b))
	assert.True(t, rule.Applies(a))
	assert.True(t, rule.Applies(root))

	assert.True(t, AsRoot(EmptyPath, IsRoot).Applies(b))
	assert.False(t, AsRoot(PathOf("missing"), True).Applies(b))

	// As resolves relative to the target instead.
	assert.False(t, As(PathOf("a", "b"), True).Applies(b))
	assert.True(t, As(PathOf("a", "b"), True).Applies(root))
	assert.True(t, As(PathOf("b"), Not(IsRoot)).Applies(a))
}

func TestRuleBasics(t *testing.T) {
	defs := newTestDefs()
	root := defs.newSword(t)
	blade := root.Child("blade")

	assert.True(t, True.Applies(root))
	assert.False(t, False.Applies(root))
	assert.True(t, All().Applies(root))
	assert.False(t, Any().Applies(root))
	assert.True(t, Any(False, True).Applies(root))

	assert.True(t, HasTags("wood", "metal").Applies(blade))
	assert.False(t, HasTags().Applies(blade))
	assert.True(t, HasFeatures("engraving").Applies(blade))

	assert.True(t, Has(PathOf("blade", "tip")).Applies(root))
	assert.False(t, Has(PathOf("tip")).Applies(root))
	assert.True(t, Has(EmptyPath).Applies(root))

	assert.True(t, IsRoot.Applies(root))
	assert.False(t, IsRoot.Applies(blade))
}

func TestParseRule(t *testing.T) {
	defs := newTestDefs()
	root := defs.newSword(t)
	blade := root.Child("blade")

	tests := []struct {
		name   string
		src    string
		target *Node
		want   bool
	}{
		{"true", "true", root, true},
		{"is_root", "is_root", blade, false},
		{"is_complete", "is_complete", root, true},
		{"has_tags scalar", "{has_tags: metal}", blade, true},
		{"has_tags list", "{has_tags: [wood, stone]}", blade, false},
		{"has path string", "{has: blade/tip}", root, true},
		{"has path list", "{has: [blade, tip]}", root, true},
		{"not", "{not: is_root}", blade, true},
		{"all", "{all: [{has_tags: [metal]}, {not: {has_features: [broken]}}]}", blade, true},
		{"any empty", "{any: []}", root, false},
		{"as", "{as: {path: blade, rule: {has_tags: [blade]}}}", root, true},
		{"as_root", "{as_root: {path: [handle], rule: {has_tags: [wood]}}}", blade, true},
		{"as_root no path", "{as_root: {rule: is_root}}", blade, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRule([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Applies(tt.target))
		})
	}
}

func TestParseRuleErrors(t *testing.T) {
	tests := []string{
		"maybe",
		"{nope: true}",
		"{not: is_root, all: []}",
		"{all: is_root}",
		"{as: {path: a}}",
		"{not: {bogus: 1}}",
		"[true]",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := ParseRule([]byte(src))
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestRuleYAMLRoundTrip(t *testing.T) {
	defs := newTestDefs()
	root := defs.newSword(t)

	rules := []Rule{
		True,
		IsComplete,
		Not(IsRoot),
		All(HasTags("metal"), Not(HasFeatures("broken"))),
		Any(),
		Has(PathOf("blade", "tip")),
		As(PathOf("blade"), HasTags("blade")),
		AsRoot(EmptyPath, IsRoot),
	}
	for _, r := range rules {
		data, err := yaml.Marshal(RuleConfig{Rule: r})
		require.NoError(t, err)

		decoded, err := ParseRule(data)
		require.NoError(t, err, string(data))
		assert.Equal(t, r.Applies(root), decoded.Applies(root), string(data))
	}
}

func TestRuleConfigInStruct(t *testing.T) {
	var cfg struct {
		Rule *RuleConfig `yaml:"rule"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("rule: {has_tags: [gem]}"), &cfg))
	require.NotNil(t, cfg.Rule)
	assert.Equal(t, HasTags("gem"), cfg.Rule.Rule)
}
