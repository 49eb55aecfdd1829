package loam

import "context"

// SlotState tracks the lifecycle of an output or argument cell.
type SlotState uint8

const (
	// SlotPoisoned marks a cell not yet visited by fulfillment; reading it
	// is a bug.
	SlotPoisoned SlotState = iota

	// SlotErased marks a visited cell with no value yet.
	SlotErased

	// SlotFilled marks a cell holding exactly one fully-formed value.
	SlotFilled

	// SlotAbsent marks an optional argument cell deliberately left empty.
	SlotAbsent
)

// Slot is a single value cell. A Level's out slot and an action call's
// argument cells are Slots; callers copy values out of them rather than
// aliasing into them across steps.
type Slot struct {
	state SlotState
	val   Value
}

// NewSlot returns an erased slot, ready to be filled.
func NewSlot() *Slot {
	return &Slot{state: SlotErased}
}

func (slot *Slot) State() SlotState {
	return slot.state
}

func (slot *Slot) Fill(val Value) {
	slot.state = SlotFilled
	slot.val = val
}

func (slot *Slot) Erase() {
	slot.state = SlotErased
	slot.val = nil
}

func (slot *Slot) Poison() {
	slot.state = SlotPoisoned
	slot.val = nil
}

func (slot *Slot) MarkAbsent() {
	slot.state = SlotAbsent
	slot.val = nil
}

// Value returns the held value, or false if the slot is not filled.
func (slot *Slot) Value() (Value, bool) {
	if slot.state != SlotFilled {
		return nil, false
	}

	return slot.val, true
}

// Or returns the held value, or the fallback if the slot is not filled.
func (slot *Slot) Or(fallback Value) Value {
	if v, ok := slot.Value(); ok {
		return v
	}

	return fallback
}

type LevelFlags uint8

const (
	// FlagInfix marks a Level entered in operator position: its first
	// parameter comes from the previous step's output, not the feed.
	FlagInfix LevelFlags = 1 << iota

	// FlagNoLookahead suppresses operator lookahead; set on steppers
	// gathering an operator's argument, which must not extend the
	// expression past the operator's own result.
	FlagNoLookahead

	// FlagUninterruptible exempts a Level's turns from the halt check.
	FlagUninterruptible
)

func (flags LevelFlags) Has(f LevelFlags) bool {
	return flags&f != 0
}

// Executor is a state machine driving a Level one step at a time. Each Step
// runs in a single native stack frame and reports what should happen next as
// a Bounce; abrupt signals (throws, failures, halt) travel on the error.
type Executor interface {
	Step(ctx context.Context, lvl *Level) (Bounce, error)

	// Cleanup releases any partially-fulfilled state when the Level is
	// popped during an unwind.
	Cleanup(lvl *Level)
}

// catcher is implemented by executors willing to observe a propagating
// signal during unwind.
type catcher interface {
	Catch(ctx context.Context, lvl *Level, cause error) bool
}

// redoer re-enters dispatch on the same Level, optionally re-typechecking.
type redoer interface {
	Redo(checked bool)
}

// downshifter is notified that the Level's backing argument storage was
// exchanged and local cursors must be recomputed.
type downshifter interface {
	Downshifted()
}

// Level is one activation record of the evaluator. The call stack is the
// chain of prior links, not the native stack, which is what lets a chain
// survive a suspension.
type Level struct {
	exec  Executor
	out   *Slot
	flags LevelFlags
	feed  *Feed
	scope *Scope

	prior   *Level
	machine *Machine

	suspended bool
}

// NewLevel constructs a Level whose result lands in out. The feed may be nil
// for Levels synthesized to run an already-assembled call.
func NewLevel(exec Executor, out *Slot, feed *Feed, scope *Scope) *Level {
	return &Level{
		exec:  exec,
		out:   out,
		feed:  feed,
		scope: scope,
	}
}

func (lvl *Level) Out() *Slot {
	return lvl.out
}

func (lvl *Level) Feed() *Feed {
	return lvl.feed
}

func (lvl *Level) Scope() *Scope {
	return lvl.scope
}

func (lvl *Level) Flags() LevelFlags {
	return lvl.flags
}

func (lvl *Level) SetFlags(flags LevelFlags) *Level {
	lvl.flags |= flags
	return lvl
}

func (lvl *Level) Machine() *Machine {
	return lvl.machine
}

// Suspended reports whether the Level is paused on an asynchronous native.
func (lvl *Level) Suspended() bool {
	return lvl.suspended
}
