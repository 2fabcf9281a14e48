package pico

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/item"
)

// WriteStack returns a copy of stack carrying inst. The instance is stored
// as NBT bytes so it survives the stack's own persistence. Cached stats for
// the instance are invalidated.
func (r *Registry) WriteStack(stack item.Stack, inst *Instance) (item.Stack, error) {
	data, err := EncodeInstance(inst)
	if err != nil {
		return stack, fmt.Errorf("encode instance %s: %w", inst.ID, err)
	}
	r.cache.Invalidate(inst.ID)
	return stack.WithValue(r.opts.StackKey, data), nil
}

// ReadStack returns the instance stored on stack. Returns (nil, false, nil)
// if the stack carries none.
func (r *Registry) ReadStack(stack item.Stack) (*Instance, bool, error) {
	v, ok := stack.Value(r.opts.StackKey)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("stack value %q: expected bytes, got %T", r.opts.StackKey, v)
	}
	inst, err := r.DecodeInstance(data)
	if err != nil {
		return nil, false, err
	}
	return inst, true, nil
}

// HeldInstance returns the instance on the carrier's main hand item.
//
// Usage:
//
//	func (h MyHandler) HandleItemUse(ctx *player.Context) {
//	    inst, ok, err := reg.HeldInstance(ctx.Val())
//	    if err != nil || !ok {
//	        return
//	    }
//	    stats, _ := reg.InstanceStats(inst)
//	    // ...
//	}
func (r *Registry) HeldInstance(c item.Carrier) (*Instance, bool, error) {
	mainHand, _ := c.HeldItems()
	return r.ReadStack(mainHand)
}

// WriteHeld stores inst on the user's main hand item.
func (r *Registry) WriteHeld(u item.User, inst *Instance) error {
	mainHand, offHand := u.HeldItems()
	stack, err := r.WriteStack(mainHand, inst)
	if err != nil {
		return err
	}
	u.SetHeldItems(stack, offHand)
	return nil
}

// InstanceStats returns the compiled stats of inst through the stat cache.
func (r *Registry) InstanceStats(inst *Instance) (*CompiledStatMap, error) {
	return r.cache.Get(inst)
}
