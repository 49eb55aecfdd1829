package loam

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Action executor states. Each begins a phase of the application state
// machine; the Level re-enters at its current state after every child
// evaluation, so no phase ever holds a native stack frame across a step.
const (
	actInitial uint8 = iota
	actFulfill
	actAwaitArg
	actTypecheck
	actDispatch
	actReturn
)

// Call is the function-application state machine: one Level's worth of
// fulfilling a callee's parameters and invoking its Dispatcher. It is also
// the surface a Dispatcher programs against.
type Call struct {
	action *Action
	lvl    *Level

	state    uint8
	args     []*Slot
	paramIdx int

	// refinement names consumed at this callsite, to reject duplicates
	pickups map[Word]bool

	awaiting *Slot

	leftGiven bool
	leftVal   Value

	varargs []*Varargs

	// dispatcher-owned scratch
	dstate uint8
	dstash any
	sub    *Slot

	resumed   bool
	resumeVal Value
	resumeErr error
}

// NewCall builds an action Level that will consume arguments from the feed
// and leave its result in out. The feed may be nil when every argument is
// pre-supplied.
func NewCall(action *Action, out *Slot, feed *Feed, scope *Scope) *Call {
	call := &Call{
		action:  action,
		pickups: map[Word]bool{},
	}

	call.lvl = NewLevel(call, out, feed, scope)

	return call
}

// NewInfixCall builds an action Level entered in operator position, seeded
// with the value to its left.
func NewInfixCall(action *Action, out *Slot, feed *Feed, scope *Scope, left Value) *Call {
	call := NewCall(action, out, feed, scope)
	call.leftGiven = true
	call.leftVal = left
	call.lvl.SetFlags(FlagInfix)

	return call
}

func (call *Call) Level() *Level {
	return call.lvl
}

func (call *Call) Action() *Action {
	return call.action
}

func (call *Call) Scope() *Scope {
	return call.lvl.scope
}

var _ Executor = (*Call)(nil)

func (call *Call) Step(ctx context.Context, lvl *Level) (Bounce, error) {
	for {
		switch call.state {
		case actInitial:
			if err := call.enter(lvl); err != nil {
				return nil, err
			}

			call.state = actFulfill

		case actFulfill:
			bounce, done, err := call.fulfill(ctx, lvl)
			if err != nil {
				return nil, err
			}

			if !done {
				return bounce, nil
			}

			call.state = actTypecheck

		case actAwaitArg:
			// the child either filled the slot or evaluated to nothing
			if _, ok := call.awaiting.Value(); !ok {
				call.awaiting.Fill(Unset{})
			}

			call.awaiting = nil
			call.state = actFulfill

		case actTypecheck:
			if err := call.typecheck(); err != nil {
				return nil, err
			}

			call.state = actDispatch

		case actDispatch:
			if call.resumed && call.resumeErr != nil {
				err := call.resumeErr
				call.resumed = false
				call.resumeErr = nil
				return nil, err
			}

			return call.action.Dispatcher.Dispatch(ctx, call)

		case actReturn:
			return Finished{}, nil

		default:
			return nil, fmt.Errorf("%s: corrupt executor state %d", call.action.Name, call.state)
		}
	}
}

// enter allocates argument storage, copies partially-applied values through,
// and claims the left operand on infix entry.
func (call *Call) enter(lvl *Level) error {
	params := call.action.Params

	call.args = make([]*Slot, len(params))
	for i := range call.args {
		call.args[i] = &Slot{state: SlotPoisoned}
	}

	for i, p := range params {
		if v, ok := call.action.Partial[p.Name]; ok {
			call.args[i].Fill(v)
		}
	}

	if lvl.flags.Has(FlagInfix) {
		if len(params) == 0 {
			return BadSpecError{
				Action: call.action.Name,
				Reason: "operator with no parameters",
			}
		}

		slot := call.args[0]
		if slot.State() != SlotFilled {
			slot.Erase()

			switch {
			case call.leftGiven && call.leftVal != nil:
				slot.Fill(call.leftVal)
			case params[0].Opt:
				slot.MarkAbsent()
			default:
				return NoLeftOperandError{
					Action: call.action.Name,
					Param:  params[0].Name,
				}
			}
		}

		call.paramIdx = 1
	}

	return nil
}

// fulfill walks the declared parameters in order, consuming from the feed
// per each one's convention. Returns done=true once every slot is visited;
// otherwise the bounce to yield with.
func (call *Call) fulfill(ctx context.Context, lvl *Level) (Bounce, bool, error) {
	params := call.action.Params

	for call.paramIdx < len(params) {
		i := call.paramIdx
		slot := call.args[i]

		if slot.State() == SlotFilled || slot.State() == SlotAbsent {
			call.paramIdx++
			continue
		}

		if slot.State() == SlotPoisoned {
			slot.Erase()
		}

		// a named argument at the callsite claims its parameter before the
		// current one consumes positionally
		if lvl.feed != nil {
			bounce, handled, err := call.maybePickup(ctx, lvl)
			if err != nil {
				return nil, false, err
			}

			if handled {
				if bounce != nil {
					return bounce, false, nil
				}

				continue
			}
		}

		// optional parameters never consume positionally; they are filled
		// by name, by partial application, or not at all
		if params[i].Opt {
			slot.MarkAbsent()
			call.paramIdx++
			continue
		}

		bounce, yield, err := call.consume(ctx, lvl, i)
		if err != nil {
			return nil, false, err
		}

		if yield {
			return bounce, false, nil
		}

		call.paramIdx++
	}

	if err := call.resolvePickups(); err != nil {
		return nil, false, err
	}

	return nil, true, nil
}

// maybePickup consumes a leading refinement term, fulfilling the named
// parameter out of declaration order. handled=true if a refinement was
// seen; bounce is non-nil if fulfillment pushed a child.
func (call *Call) maybePickup(ctx context.Context, lvl *Level) (Bounce, bool, error) {
	t, ok := lvl.feed.Peek()
	if !ok {
		return nil, false, nil
	}

	ref, isRef := t.(Refinement)
	if !isRef {
		return nil, false, nil
	}

	lvl.feed.Next()

	name := ref.Word()

	j, found := call.action.ParamNamed(name)
	if !found {
		return nil, false, UnknownRefinementError{
			Action: call.action.Name,
			Name:   name,
		}
	}

	if call.pickups[name] || call.args[j].State() == SlotFilled {
		return nil, false, DuplicateRefinementError{
			Action: call.action.Name,
			Name:   name,
		}
	}

	call.pickups[name] = true

	if call.args[j].State() == SlotPoisoned {
		call.args[j].Erase()
	}

	bounce, yield, err := call.consume(ctx, lvl, j)
	if err != nil {
		return nil, true, err
	}

	if yield {
		return bounce, true, nil
	}

	return nil, true, nil
}

// consume fulfills parameter j from the feed per its convention. yield=true
// means a child Level was pushed into the slot and the executor must wait.
func (call *Call) consume(ctx context.Context, lvl *Level, j int) (Bounce, bool, error) {
	p := call.action.Params[j]
	slot := call.args[j]

	switch p.Class {
	case ParamNormal, ParamOpLeft:
		// op-left reached here only on prefix entry, where it gathers like
		// a normal argument
		if lvl.feed == nil || !lvl.feed.More() {
			slot.Fill(Unset{})
			return nil, false, nil
		}

		call.awaiting = slot
		call.state = actAwaitArg

		child := NewLevel(newStepper(stepOne), slot, lvl.feed, lvl.scope)

		// an operator's argument must not extend the expression; the next
		// operator binds to this call's own result instead
		if call.action.Operator {
			child.SetFlags(FlagNoLookahead)
		}

		return Continuation{child}, true, nil

	case ParamLiteral, ParamLiteralUnbound:
		t, ok := call.peekConsumable(lvl)
		if !ok {
			slot.Fill(Unset{})
			return nil, false, nil
		}

		lvl.feed.Next()

		if p.Class == ParamLiteral {
			if w, isWord := t.(Word); isWord {
				slot.Fill(Bound{Term: w, Scope: lvl.scope})
				return nil, false, nil
			}
		}

		slot.Fill(t)
		return nil, false, nil

	case ParamSoft:
		t, ok := call.peekConsumable(lvl)
		if !ok {
			slot.Fill(Unset{})
			return nil, false, nil
		}

		lvl.feed.Next()

		switch t := t.(type) {
		case Group:
			call.awaiting = slot
			call.state = actAwaitArg

			child := NewLevel(newStepper(stepAll), slot, FeedOf(t...), lvl.scope)
			return Continuation{child}, true, nil

		case GetWord:
			v, found := lvl.scope.Get(t.Word())
			if !found {
				return nil, false, UnboundError{t.Word(), lvl.scope}
			}

			slot.Fill(v)
			return nil, false, nil

		default:
			slot.Fill(t)
			return nil, false, nil
		}

	case ParamVariadic:
		va := newVarargs(lvl.feed, p)
		call.varargs = append(call.varargs, va)
		slot.Fill(va)
		return nil, false, nil

	default:
		return nil, false, fmt.Errorf("%s: unknown parameter convention %s", call.action.Name, p.Class)
	}
}

// peekConsumable returns the next feed term for a literal-class parameter,
// or false if the feed is exhausted or the term is an operator that should
// bind tighter to what follows it (the single-step lookahead defer).
//
// Soft-literal parameters currently share this check. Strictly only an
// operator whose own first parameter is literal should win the term from a
// soft parameter; no such operator exists in the ground scope yet, so the
// two cases collapse. TODO: distinguish right-binding literal operators here
// once one is defined.
func (call *Call) peekConsumable(lvl *Level) (Value, bool) {
	if lvl.feed == nil {
		return nil, false
	}

	t, ok := lvl.feed.Peek()
	if !ok {
		return nil, false
	}

	if w, isWord := t.(Word); isWord {
		if v, found := lvl.scope.Get(w); found {
			if act, isAct := v.(*Action); isAct && act.Operator {
				return nil, false
			}
		}
	}

	return t, true
}

// resolvePickups verifies every out-of-order name seen at the callsite ended
// with its parameter filled.
func (call *Call) resolvePickups() error {
	for name := range call.pickups {
		j, found := call.action.ParamNamed(name)
		if !found {
			continue
		}

		if call.args[j].State() != SlotFilled {
			return MissingArgError{
				Action: call.action.Name,
				Param:  name,
			}
		}
	}

	return nil
}

// typecheck re-walks every argument slot exactly once. Unset passes only for
// optional parameters; variadic slots are tagged with their declared types
// for the callee's lazy pulls instead of being checked here.
func (call *Call) typecheck() error {
	var merr *multierror.Error

	for i, p := range call.action.Params {
		slot := call.args[i]

		if slot.State() == SlotAbsent {
			if !p.Opt {
				merr = multierror.Append(merr, MissingArgError{
					Action: call.action.Name,
					Param:  p.Name,
				})
			}

			continue
		}

		v, ok := slot.Value()
		if !ok {
			merr = multierror.Append(merr, MissingArgError{
				Action: call.action.Name,
				Param:  p.Name,
			})

			continue
		}

		if _, isUnset := v.(Unset); isUnset {
			if !p.Opt {
				merr = multierror.Append(merr, MissingArgError{
					Action: call.action.Name,
					Param:  p.Name,
				})
			}

			continue
		}

		if va, isVa := v.(*Varargs); isVa {
			va.types = p.Types
			continue
		}

		if !p.Types.Accepts(v.Kind()) {
			merr = multierror.Append(merr, ArgTypeError{
				Action: call.action.Name,
				Param:  p.Name,
				Want:   p.Types,
				Have:   v.Kind(),
			})
		}
	}

	return merr.ErrorOrNil()
}

func (call *Call) Cleanup(lvl *Level) {
	for _, va := range call.varargs {
		va.close()
	}

	for _, slot := range call.args {
		if slot != nil {
			slot.Poison()
		}
	}
}

// Redo re-enters dispatch, re-running the typecheck pass first when checked.
func (call *Call) Redo(checked bool) {
	if checked {
		call.state = actTypecheck
	} else {
		call.state = actDispatch
	}
}

// Downshifted recomputes cursors after the call's identity was rewritten by
// Downshift and resumes at typecheck.
func (call *Call) Downshifted() {
	call.paramIdx = len(call.action.Params)
	call.state = actTypecheck
}

// Catch offers a propagating signal to the Dispatcher if the action declared
// the catches capability.
func (call *Call) Catch(ctx context.Context, lvl *Level, cause error) bool {
	if !call.action.Catches {
		return false
	}

	if thrown, isThrow := cause.(ThrownError); isThrow {
		tc, ok := call.action.Dispatcher.(ThrowCatcher)
		if !ok {
			return false
		}

		v, caught := tc.CatchThrow(call, thrown)
		if !caught {
			return false
		}

		lvl.out.Fill(v)
		call.state = actReturn
		return true
	}

	fc, ok := call.action.Dispatcher.(FailureCatcher)
	if !ok {
		return false
	}

	v, caught := fc.CatchFailure(call, cause)
	if !caught {
		return false
	}

	lvl.out.Fill(v)
	call.state = actReturn
	return true
}
