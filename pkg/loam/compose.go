package loam

import (
	"context"
	"fmt"
)

// SpecializeAction returns an action wrapping target with some arguments
// pre-supplied by name. Fulfillment copies the partial values through
// without consuming anything; dispatch rewrites the call to the target and
// issues a checked Redo, so the partial values pass the target's typecheck
// before its dispatcher ever runs.
func SpecializeAction(name string, target *Action, partial map[Word]Value) (*Action, error) {
	for k := range partial {
		if _, ok := target.ParamNamed(k); !ok {
			return nil, UnknownRefinementError{
				Action: target.Name,
				Name:   k,
			}
		}
	}

	return &Action{
		Name:       name,
		Params:     target.Params,
		Dispatcher: &specialized{target: target},
		Operator:   target.Operator,
		Partial:    partial,
		Source:     fmt.Sprintf("specialize %s", target.Name),
	}, nil
}

type specialized struct {
	target *Action
}

func (d *specialized) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	call.action = d.target
	return Redo{Checked: true}, nil
}

// AdaptAction returns an action that rewrites the fulfilled arguments with
// tweak and re-dispatches the target. With checked set the rewritten
// arguments are re-typechecked first.
func AdaptAction(name string, target *Action, checked bool, tweak func(call *Call)) *Action {
	return &Action{
		Name:       name,
		Params:     target.Params,
		Dispatcher: &adapted{target: target, checked: checked, tweak: tweak},
		Operator:   target.Operator,
		Source:     fmt.Sprintf("adapt %s", target.Name),
	}
}

type adapted struct {
	target  *Action
	checked bool
	tweak   func(call *Call)
}

func (d *adapted) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	if d.tweak != nil {
		d.tweak(call)
	}

	call.action = d.target
	return Redo{Checked: d.checked}, nil
}
