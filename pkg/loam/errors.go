package loam

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
)

// ErrHalted is the cancellation signal. It unwinds like any abrupt failure
// but is never caught by catch or try, so a host can tell "interrupted" from
// "program bug" at its boundary.
var ErrHalted = errors.New("halted")

// ErrSuspended is returned by a Machine run whose Level stack is paused on
// an asynchronous native. The stack stays intact; resume through the
// Suspension handle.
var ErrSuspended = errors.New("evaluation suspended")

// ErrNotSuspended is returned when resuming a Level that is not suspended,
// including resuming the same Suspension twice.
var ErrNotSuspended = errors.New("level is not suspended")

type DecodeError struct {
	Source      any
	Destination any
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s (%T) into %T", err.Source, err.Source, err.Destination)
}

type UnboundError struct {
	Word  Word
	Scope *Scope
}

func (err UnboundError) Error() string {
	msg := fmt.Sprintf("unbound word: %s", err.Word)

	if err.Scope != nil {
		similar := err.Scope.Similar(err.Word)
		if len(similar) > 0 {
			strs := make([]string, len(similar))
			for i, w := range similar {
				strs[i] = string(w)
			}

			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(strs, ", "))
		}
	}

	return msg
}

// ThrownError is a user-level non-local control transfer. It propagates up
// the Level stack until a catch waiting on the same label claims it.
type ThrownError struct {
	Label Word
	Val   Value
}

func (err ThrownError) Error() string {
	return fmt.Sprintf("no catch for throw: %s %s", err.Label, err.Val)
}

type MissingArgError struct {
	Action string
	Param  Word
}

func (err MissingArgError) Error() string {
	return fmt.Sprintf("%s: missing required argument %s", err.Action, err.Param)
}

type ArgTypeError struct {
	Action string
	Param  Word
	Want   TypeSet
	Have   Kind
}

func (err ArgTypeError) Error() string {
	return fmt.Sprintf("%s: argument %s: want %s, have %s", err.Action, err.Param, err.Want, err.Have)
}

type UnknownRefinementError struct {
	Action string
	Name   Word
}

func (err UnknownRefinementError) Error() string {
	return fmt.Sprintf("%s: unknown refinement /%s", err.Action, err.Name)
}

type DuplicateRefinementError struct {
	Action string
	Name   Word
}

func (err DuplicateRefinementError) Error() string {
	return fmt.Sprintf("%s: refinement /%s supplied twice", err.Action, err.Name)
}

type NoLeftOperandError struct {
	Action string
	Param  Word
}

func (err NoLeftOperandError) Error() string {
	return fmt.Sprintf("%s: no value to the left for %s", err.Action, err.Param)
}

type NotCallableError struct {
	Have Value
}

func (err NotCallableError) Error() string {
	return fmt.Sprintf("cannot call %s (%s)", err.Have, err.Have.Kind())
}

type BadSpecError struct {
	Action string
	Spec   string
	Reason string
}

func (err BadSpecError) Error() string {
	return fmt.Sprintf("%s: malformed parameter spec %q: %s", err.Action, err.Spec, err.Reason)
}

// suggestDistance is the levenshtein budget for unbound-word suggestions.
const suggestDistance = 2

func similarWords(name Word, candidates []Word) []Word {
	var similar []Word
	for _, w := range candidates {
		if levenshtein.Distance(string(name), string(w), nil) <= suggestDistance {
			similar = append(similar, w)
		}
	}

	return similar
}
