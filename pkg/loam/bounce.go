package loam

// Bounce is the result of running a Level one step. The set is closed: the
// trampoline dispatches exhaustively on these types. Thrown signals are the
// seventh arm of the protocol and travel on the step's error return instead,
// matching how this codebase propagates all abrupt outcomes.
type Bounce interface {
	isBounce()
}

// Finished reports that the Level is done and its own out slot holds the
// answer. Carrying no payload makes the "result aliases out" rule hold by
// construction: there is nothing to re-copy.
type Finished struct{}

// Continuation asks the trampoline to push a child Level and re-enter this
// one after the child reaches a terminal bounce.
type Continuation struct {
	Child *Level
}

// Delegation hands the Level's remaining responsibility to a fresh Level;
// the current one is popped without re-entry. The child must have been
// constructed to fill the same out slot.
type Delegation struct {
	Child *Level
}

// Suspend stops the trampoline without finishing the Level. The Level chain
// stays intact in memory; an explicit Suspension resolve or reject re-enters
// it later.
type Suspend struct{}

// Redo re-runs dispatch on the same action Level, re-typechecking the
// arguments first when Checked is set.
type Redo struct {
	Checked bool
}

// Downshifted reports that the Level's backing argument storage was
// exchanged out from under its dispatcher; cursors are recomputed and
// dispatch resumes.
type Downshifted struct{}

func (Finished) isBounce()     {}
func (Continuation) isBounce() {}
func (Delegation) isBounce()   {}
func (Suspend) isBounce()      {}
func (Redo) isBounce()         {}
func (Downshifted) isBounce()  {}
