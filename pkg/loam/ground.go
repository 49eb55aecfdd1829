package loam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/loam-lang/loam/pkg/ioctx"
)

// Ground is the scope providing the standard library.
var Ground = NewEmptyScope()

// Clock is used by time-based natives. Tests substitute a fake clock.
var Clock = clockwork.NewRealClock()

// NewStandardScope returns a new empty scope with Ground as its sole parent.
func NewStandardScope() *Scope {
	return NewEmptyScope(Ground)
}

func init() {
	Ground.Name = "ground"

	for _, act := range []*Action{
		Operator("+", "a:int b:int", func(a, b Int) Int { return a + b }),
		Operator("-", "a:int b:int", func(a, b Int) Int { return a - b }),
		Operator("*", "a:int b:int", func(a, b Int) Int { return a * b }),
		Operator("/", "a:int b:int", func(a, b Int) (Int, error) {
			if b == 0 {
				return 0, errors.New("division by zero")
			}

			return a / b, nil
		}),
		Operator("=", "a b", func(a, b Value) Bool { return Bool(a.Equal(b)) }),
		Operator("<", "a:int b:int", func(a, b Int) Bool { return Bool(a < b) }),
		Operator(">", "a:int b:int", func(a, b Int) Bool { return Bool(a > b) }),

		Native("not", "val", func(val Value) Bool { return Bool(!Truthy(val)) }),
		Native("length", "val:block|group|text", lengthOf),

		Native("do", "body", doBody),
		Native("if", "cond then:block", ifThen),
		Native("either", "cond then:block else:block", eitherBranch),

		Native("fn", "params:block body:block", makeFn),
		Native("op", "params:block body:block", makeOp),

		Native("quote", "^term", func(term Value) Value { return term }),
		Native("the", "'term", func(term Value) Value { return term }),

		Native("throw", "label:word val", func(label Word, val Value) error {
			return ThrownError{Label: label, Val: val}
		}),
		Native("fail", "cause:text|failure", escalate),

		Native("print", "val", printVal),
		Native("sleep", "ms:int", sleepFor),
		Native("sum", "ns...:int", sumInts),

		Native("apply", "target:action args:block", applyArgs),
		Native("specialize", "^name target:action partial:block", specializePartial),
	} {
		Ground.Def(Word(act.Name), act)
	}

	catch := Native("catch", "label:word body:block", catchDispatcher{})
	catch.Catches = true
	Ground.Def("catch", catch)

	try := Native("try", "body:block", tryDispatcher{})
	try.Catches = true
	Ground.Def("try", try)
}

func lengthOf(val Value) (Int, error) {
	switch x := val.(type) {
	case Block:
		return Int(len(x)), nil
	case Group:
		return Int(len(x)), nil
	case Text:
		return Int(len(x)), nil
	default:
		return 0, fmt.Errorf("length: cannot measure %s", val.Kind())
	}
}

// doBody evaluates a body where it stands: blocks and groups in the current
// scope, bound terms in the scope they were captured from, text by reading
// it first. Anything else is already a value.
func doBody(ctx context.Context, call *Call) (Bounce, error) {
	switch body := call.Arg(0).(type) {
	case Block:
		return call.TailEval(body, call.Scope()), nil

	case Group:
		return call.TailEval(body, call.Scope()), nil

	case Bound:
		if blk, ok := body.Term.(Block); ok {
			return call.TailEval(blk, body.Scope), nil
		}

		return call.TailEval([]Value{body.Term}, body.Scope), nil

	case Text:
		blk, err := NewReader(strings.NewReader(string(body)), "do").ReadAll()
		if err != nil {
			return nil, err
		}

		return call.TailEval(blk, call.Scope()), nil

	default:
		return call.Return(body)
	}
}

func ifThen(ctx context.Context, call *Call) (Bounce, error) {
	var then Block
	if err := call.Arg(1).Decode(&then); err != nil {
		return nil, err
	}

	if Truthy(call.Arg(0)) {
		return call.TailEval(then, call.Scope()), nil
	}

	return call.Return(Unset{})
}

func eitherBranch(ctx context.Context, call *Call) (Bounce, error) {
	branch := 2
	if Truthy(call.Arg(0)) {
		branch = 1
	}

	var body Block
	if err := call.Arg(branch).Decode(&body); err != nil {
		return nil, err
	}

	return call.TailEval(body, call.Scope()), nil
}

// fnDispatcher runs a user-defined function: bind the fulfilled arguments
// into a fresh child of the closure scope and tail-evaluate the body there.
type fnDispatcher struct {
	body    Block
	closure *Scope
}

func (d *fnDispatcher) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	scope := NewEmptyScope(d.closure)
	for i, p := range call.Action().Params {
		scope.Def(p.Name, call.Arg(i))
	}

	return call.TailEval(d.body, scope), nil
}

func makeFn(ctx context.Context, call *Call) (Bounce, error) {
	return makeFunction(call, false)
}

func makeOp(ctx context.Context, call *Call) (Bounce, error) {
	return makeFunction(call, true)
}

func makeFunction(call *Call, operator bool) (Bounce, error) {
	var spec, body Block
	if err := call.Arg(0).Decode(&spec); err != nil {
		return nil, err
	}
	if err := call.Arg(1).Decode(&body); err != nil {
		return nil, err
	}

	params, err := parseFnParams(spec)
	if err != nil {
		return nil, err
	}

	if operator {
		if len(params) == 0 {
			return nil, BadSpecError{
				Action: "op",
				Spec:   spec.String(),
				Reason: "operator needs a left parameter",
			}
		}

		if params[0].Class == ParamNormal {
			params[0].Class = ParamOpLeft
		}
	}

	name := "fn"
	if operator {
		name = "op"
	}

	return call.Return(&Action{
		Name:       name,
		Params:     params,
		Dispatcher: &fnDispatcher{body: body, closure: call.Scope()},
		Operator:   operator,
		Source:     spec.String(),
	})
}

// parseFnParams maps a parameter block's terms onto conventions: words are
// normal, lit-words literal, get-words soft, refinements optional, a
// trailing ... marks variadic.
func parseFnParams(spec Block) ([]Param, error) {
	var params []Param

	for _, t := range spec {
		var p Param

		switch t := t.(type) {
		case Word:
			name := string(t)
			if strings.HasSuffix(name, "...") {
				p = Param{Name: Word(strings.TrimSuffix(name, "...")), Class: ParamVariadic}
			} else {
				p = Param{Name: t}
			}

		case LitWord:
			p = Param{Name: t.Word(), Class: ParamLiteral}

		case GetWord:
			p = Param{Name: t.Word(), Class: ParamSoft}

		case Refinement:
			p = Param{Name: t.Word(), Opt: true}

		default:
			return nil, BadSpecError{
				Action: "fn",
				Spec:   spec.String(),
				Reason: fmt.Sprintf("unexpected %s in parameter block", t.Kind()),
			}
		}

		params = append(params, p)
	}

	return params, nil
}

func escalate(val Value) error {
	switch x := val.(type) {
	case Failure:
		return x.Err
	case Text:
		return errors.New(string(x))
	default:
		return fmt.Errorf("fail: cannot escalate %s", val.Kind())
	}
}

func printVal(ctx context.Context, call *Call) (Bounce, error) {
	w := ioctx.StdoutFromContext(ctx)

	val := call.Arg(0)
	if s, ok := val.(Text); ok {
		fmt.Fprintln(w, string(s))
	} else {
		fmt.Fprintln(w, val)
	}

	return call.Return(Unset{})
}

// sleepFor pauses the whole Level chain without blocking the host: it
// suspends, arms a timer, and lets the scheduler resume the chain when the
// timer delivers the wake.
func sleepFor(ctx context.Context, call *Call) (Bounce, error) {
	if _, ok := call.Resumption(); ok {
		return call.Return(Unset{})
	}

	var ms Int
	if err := call.Arg(0).Decode(&ms); err != nil {
		return nil, err
	}

	sched, ok := SchedulerFromContext(ctx)
	if !ok {
		return nil, errors.New("sleep: no scheduler to resume on")
	}

	susp, bounce := call.Suspend()

	timer := Clock.After(time.Duration(ms) * time.Millisecond)
	go func() {
		<-timer
		sched.Wake(susp, Unset{}, nil)
	}()

	return bounce, nil
}

func sumInts(ctx context.Context, call *Call) (Bounce, error) {
	var ns *Varargs
	if err := call.Arg(0).Decode(&ns); err != nil {
		return nil, err
	}

	var total Int
	for {
		t, ok, err := ns.Pull()
		if err != nil {
			return nil, err
		}

		if !ok {
			return call.Return(total)
		}

		var n Int
		if err := t.Decode(&n); err != nil {
			return nil, err
		}

		total += n
	}
}

// applyArgs invokes an action with pre-assembled positional arguments by
// exchanging the current call's identity for the target's.
func applyArgs(ctx context.Context, call *Call) (Bounce, error) {
	var target *Action
	if err := call.Arg(0).Decode(&target); err != nil {
		return nil, err
	}

	var args Block
	if err := call.Arg(1).Decode(&args); err != nil {
		return nil, err
	}

	slots := make([]*Slot, len(target.Params))
	for i := range slots {
		slots[i] = NewSlot()
		if i < len(args) {
			slots[i].Fill(args[i])
		} else {
			slots[i].MarkAbsent()
		}
	}

	return call.Downshift(target, slots), nil
}

// specializePartial evaluates the partial block in a scratch scope and
// captures every binding it defines as a pre-supplied argument.
func specializePartial(ctx context.Context, call *Call) (Bounce, error) {
	switch call.DState() {
	case 0:
		var partial Block
		if err := call.Arg(2).Decode(&partial); err != nil {
			return nil, err
		}

		scratch := NewEmptyScope(call.Scope())
		call.SetDStash(scratch)
		call.SetDState(1)

		return call.Eval(partial, scratch), nil

	default:
		var name Word
		if err := call.Arg(0).Decode(&name); err != nil {
			return nil, err
		}

		var target *Action
		if err := call.Arg(1).Decode(&target); err != nil {
			return nil, err
		}

		scratch := call.DStash().(*Scope)

		vals := map[Word]Value{}
		for _, bound := range scratch.Order {
			vals[bound] = scratch.Bindings[bound]
		}

		spec, err := SpecializeAction(string(name), target, vals)
		if err != nil {
			return nil, err
		}

		return call.Return(spec)
	}
}

// catchDispatcher waits on a labeled throw while its body evaluates.
type catchDispatcher struct{}

func (catchDispatcher) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	switch call.DState() {
	case 0:
		var body Block
		if err := call.Arg(1).Decode(&body); err != nil {
			return nil, err
		}

		call.SetDState(1)
		return call.Eval(body, call.Scope()), nil

	default:
		return call.Return(call.SubResult())
	}
}

func (catchDispatcher) CatchThrow(call *Call, thrown ThrownError) (Value, bool) {
	if call.DState() != 1 {
		return nil, false
	}

	var label Word
	if call.Arg(0).Decode(&label) != nil {
		return nil, false
	}

	if thrown.Label != label {
		return nil, false
	}

	return thrown.Val, true
}

// tryDispatcher converts an abrupt failure in its body to a Failure value.
// Throws and halts pass through untouched.
type tryDispatcher struct{}

func (tryDispatcher) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	switch call.DState() {
	case 0:
		var body Block
		if err := call.Arg(0).Decode(&body); err != nil {
			return nil, err
		}

		call.SetDState(1)
		return call.Eval(body, call.Scope()), nil

	default:
		return call.Return(call.SubResult())
	}
}

func (tryDispatcher) CatchFailure(call *Call, cause error) (Value, bool) {
	if call.DState() != 1 {
		return nil, false
	}

	return Failure{Err: cause}, true
}
