package loam

import (
	"context"
	"fmt"
)

type stepperMode uint8

const (
	// stepOne evaluates a single expression.
	stepOne stepperMode = iota

	// stepAll evaluates expressions until the feed is exhausted, keeping
	// the last result.
	stepAll
)

// Stepper executor states.
const (
	stFetch uint8 = iota
	stAwaitSet
	stLookahead
)

// stepper drives ordinary expression-by-expression evaluation over a feed,
// including the one-term operator lookahead.
type stepper struct {
	mode  stepperMode
	state uint8

	// scratch for a set-word's pending value
	scratch *Slot
	setName Word
}

func newStepper(mode stepperMode) *stepper {
	return &stepper{mode: mode}
}

var _ Executor = (*stepper)(nil)

func (s *stepper) Step(ctx context.Context, lvl *Level) (Bounce, error) {
	for {
		switch s.state {
		case stFetch:
			term, ok := lvl.feed.Next()
			if !ok {
				// end of input is the ghost outcome
				if _, filled := lvl.out.Value(); !filled {
					lvl.out.Fill(Unset{})
				}

				return Finished{}, nil
			}

			bounce, err := s.evalTerm(lvl, term)
			if err != nil {
				return nil, err
			}

			if bounce != nil {
				return bounce, nil
			}

		case stAwaitSet:
			val := s.scratch.Or(Unset{})

			if loc, found := lvl.scope.Resolve(s.setName); found {
				loc.Write(val)
			} else {
				lvl.scope.Def(s.setName, val)
			}

			lvl.out.Fill(val)
			s.scratch = nil
			s.state = stLookahead

		case stLookahead:
			if !lvl.flags.Has(FlagNoLookahead) {
				op, found, err := s.peekOperator(lvl)
				if err != nil {
					return nil, err
				}

				if found {
					lvl.feed.Next() // claim the operator word

					left := lvl.out.Or(Unset{})
					lvl.out.Erase()

					call := NewInfixCall(op, lvl.out, lvl.feed, lvl.scope, left)

					// stay in lookahead: another operator may follow
					return Continuation{call.Level()}, nil
				}
			}

			if s.mode == stepAll && lvl.feed.More() {
				s.state = stFetch
				continue
			}

			return Finished{}, nil

		default:
			return nil, fmt.Errorf("corrupt stepper state %d", s.state)
		}
	}
}

// evalTerm evaluates a single fetched term. A nil bounce means the term was
// handled synchronously and stepping continues in the new state.
func (s *stepper) evalTerm(lvl *Level, term Value) (Bounce, error) {
	switch t := term.(type) {
	case Word:
		val, found := lvl.scope.Get(t)
		if !found {
			return nil, UnboundError{t, lvl.scope}
		}

		if act, isAct := val.(*Action); isAct {
			s.state = stLookahead
			call := NewCall(act, lvl.out, lvl.feed, lvl.scope)
			return Continuation{call.Level()}, nil
		}

		lvl.out.Fill(val)
		s.state = stLookahead
		return nil, nil

	case SetWord:
		s.setName = t.Word()
		s.scratch = NewSlot()
		s.state = stAwaitSet

		child := NewLevel(newStepper(stepOne), s.scratch, lvl.feed, lvl.scope)

		return Continuation{child}, nil

	case GetWord:
		val, found := lvl.scope.Get(t.Word())
		if !found {
			return nil, UnboundError{t.Word(), lvl.scope}
		}

		lvl.out.Fill(val)
		s.state = stLookahead
		return nil, nil

	case LitWord:
		lvl.out.Fill(t.Word())
		s.state = stLookahead
		return nil, nil

	case Group:
		s.state = stLookahead
		child := NewLevel(newStepper(stepAll), lvl.out, FeedOf(t...), lvl.scope)
		return Continuation{child}, nil

	case Refinement:
		return nil, fmt.Errorf("refinement %s outside a call", t)

	default:
		// self-evaluating datum
		lvl.out.Fill(term)
		s.state = stLookahead
		return nil, nil
	}
}

// peekOperator reports whether the next unconsumed term denotes an infix
// action, without consuming it.
func (s *stepper) peekOperator(lvl *Level) (*Action, bool, error) {
	if lvl.feed == nil {
		return nil, false, nil
	}

	term, ok := lvl.feed.Peek()
	if !ok {
		return nil, false, nil
	}

	w, isWord := term.(Word)
	if !isWord {
		return nil, false, nil
	}

	val, found := lvl.scope.Get(w)
	if !found {
		// leave the unbound word for whatever fetches it next
		return nil, false, nil
	}

	act, isAct := val.(*Action)
	if !isAct || !act.Operator {
		return nil, false, nil
	}

	return act, true, nil
}

func (s *stepper) Cleanup(lvl *Level) {
	s.scratch = nil
}
