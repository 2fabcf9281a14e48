// Package pico provides a data-driven item component framework for Dragonfly servers.
//
// PICO models an item (or any other in-world host) as a tree of composable nodes:
//   - Components describe a class of node: tags, slots, feature profiles and stats
//   - Nodes are component instances with per-instance feature data and child nodes
//   - Stats are typed properties computed by folding ordered operations
//   - Rules are predicates over tree positions, used for slots and stat gating
//   - Blueprints instantiate fresh trees on demand
//
// # Quick Start
//
// Declare definitions in code or YAML and build a registry:
//
//	bundle := pico.NewBundle("weapons").
//	    Stat(pico.DecimalStat("damage")).
//	    ConfigFile("weapons.yml")
//
//	reg := pico.NewBuilder().
//	    Bundle(bundle.Build()).
//	    Init()
//
//	sword, _ := reg.Create("iron_sword")
//	stats, _ := reg.Evaluate(sword)
//	damage, _ := pico.Get(stats, pico.DecimalStat("damage"))
//
// # Stats
//
// A stat chain is a linked list of operations. The head must be able to
// produce a value without input (a First value such as "= 5" or "+ 5");
// the rest fold over the running value:
//
//	damage: [["=", 10.0], ["*", 2.0], ["-", 3.0]]   # 17.0
//
// # Rules
//
//	rule: {all: [{has_tags: [metal]}, {not: {has_features: [broken]}}]}
//
// # Rule Reference
//
//	true / false          constant
//	is_root               target has no parent
//	is_complete           every required slot in the subtree is filled
//	{has_tags: [...]}     component tags intersect keys
//	{has_features: [...]} instantiated features intersect keys
//	{has: path}           path resolves from target
//	{not: rule}
//	{all: [rules]}
//	{any: [rules]}
//	{as: {path, rule}}      evaluate rule at path relative to target
//	{as_root: {path, rule}} evaluate rule at path relative to the root
package pico

// Version is the PICO version.
const Version = "1.0.0"
