package loam

// The dispatcher-facing surface of a Call: everything a native needs to read
// its typechecked arguments, run sub-evaluations, suspend across an
// asynchronous boundary, or rewrite the call for another callee.

// NumArgs returns the number of declared parameters.
func (call *Call) NumArgs() int {
	return len(call.args)
}

// Arg returns the fulfilled argument at declaration position i. Absent
// optional arguments read as Unset.
func (call *Call) Arg(i int) Value {
	return call.args[i].Or(Unset{})
}

// ArgNamed returns the argument for the named parameter.
func (call *Call) ArgNamed(name Word) Value {
	if i, ok := call.action.ParamNamed(name); ok {
		return call.Arg(i)
	}

	return Unset{}
}

// SetArg overwrites an argument slot. Used by adapter dispatchers before
// issuing Redo; a checked Redo re-typechecks whatever was written.
func (call *Call) SetArg(i int, val Value) {
	call.args[i].Fill(val)
}

// Return fills the call's out slot and finishes the Level.
func (call *Call) Return(val Value) (Bounce, error) {
	call.finish()
	call.lvl.out.Fill(val)
	return Finished{}, nil
}

// finish closes out per-call resources once the call's result is decided.
// A closed varargs rejects further pulls.
func (call *Call) finish() {
	for _, va := range call.varargs {
		va.close()
	}

	call.varargs = nil
}

// DState is a small state code owned entirely by the Dispatcher, for natives
// that re-enter across sub-evaluations.
func (call *Call) DState() uint8 {
	return call.dstate
}

func (call *Call) SetDState(state uint8) {
	call.dstate = state
}

// DStash holds arbitrary dispatcher-owned scratch alongside DState, for
// natives that need more than a state code across re-entries.
func (call *Call) DStash() any {
	return call.dstash
}

func (call *Call) SetDStash(v any) {
	call.dstash = v
}

// Eval pushes a child Level evaluating the given terms in the given scope.
// The Dispatcher is re-entered afterward; the result is read with SubResult.
func (call *Call) Eval(terms []Value, scope *Scope) Bounce {
	call.sub = NewSlot()

	child := NewLevel(newStepper(stepAll), call.sub, FeedOf(terms...), scope)
	return Continuation{child}
}

// SubResult returns the result of the last Eval.
func (call *Call) SubResult() Value {
	if call.sub == nil {
		return Unset{}
	}

	return call.sub.Or(Unset{})
}

// TailEval hands the call's remaining responsibility to a child evaluating
// the given terms; the child fills this call's out slot and this Level is
// never re-entered.
func (call *Call) TailEval(terms []Value, scope *Scope) Bounce {
	call.finish()

	child := NewLevel(newStepper(stepAll), call.lvl.out, FeedOf(terms...), scope)
	return Delegation{child}
}

// TailCall hands the call's remaining responsibility to a synthesized call
// of another action with pre-assembled positional arguments. The child Level
// has no feed; fulfillment copies the supplied values through.
func (call *Call) TailCall(action *Action, args []Value) Bounce {
	partial := map[Word]Value{}
	for k, v := range action.Partial {
		partial[k] = v
	}

	for i, p := range action.Params {
		if i < len(args) {
			partial[p.Name] = args[i]
		}
	}

	seeded := *action
	seeded.Partial = partial

	call.finish()

	next := NewCall(&seeded, call.lvl.out, nil, call.lvl.scope)
	return Delegation{next.lvl}
}

// Downshift exchanges the call's callee and argument storage in place. The
// executor recomputes its cursors and resumes dispatch on the new identity.
func (call *Call) Downshift(action *Action, args []*Slot) Bounce {
	call.finish()

	call.action = action
	call.args = args
	call.pickups = map[Word]bool{}
	call.dstate = 0
	call.dstash = nil

	return Downshifted{}
}

// Suspend pauses this call across an asynchronous host boundary. The native
// returns the bounce; the host later settles the Suspension, which re-enters
// the trampoline at exactly this Level.
func (call *Call) Suspend() (*Suspension, Bounce) {
	return call.lvl.machine.suspend(call), Suspend{}
}

// Resumption consumes the value delivered by Suspension.Resolve. ok is false
// on the call's first dispatch, before any suspension.
func (call *Call) Resumption() (Value, bool) {
	if !call.resumed {
		return nil, false
	}

	call.resumed = false
	v := call.resumeVal
	call.resumeVal = nil

	return v, true
}
