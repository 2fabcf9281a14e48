package pico

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
)

// NewCommand creates the /pico command for r.
//
//	reg := pico.NewBuilder().
//	    Bundle(func(r *pico.Registry) *pico.Bundle {
//	        return pico.NewBundle("debug").Command(pico.NewCommand(r))
//	    }).
//	    Init()
func NewCommand(r *Registry) cmd.Command {
	return cmd.New("pico", "Inspects pico items.", nil, StatsCommand{registry: r})
}

// StatsCommand prints the compiled stats of the item in the player's main hand.
type StatsCommand struct {
	Sub cmd.SubCommand `cmd:"stats"`

	registry *Registry
}

// Run implements cmd.Runnable.
func (c StatsCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := src.(*player.Player)
	if !ok {
		o.Error("Player-only command")
		return
	}

	inst, ok, err := c.registry.HeldInstance(p)
	if err != nil {
		o.Errorf("Unreadable item: %v", err)
		return
	}
	if !ok {
		o.Error("You are not holding a pico item")
		return
	}

	stats, err := c.registry.InstanceStats(inst)
	if err != nil {
		o.Errorf("Failed to compute stats: %v", err)
		return
	}
	o.Printf("%s (%s)", inst.Tree.Component().ID(), inst.ID)
	for key, v := range stats.All() {
		o.Printf("  %s: %v", key, v)
	}
}
