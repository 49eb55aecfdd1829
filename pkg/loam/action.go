package loam

import (
	"context"
	"fmt"
)

// ParamClass is a parameter's argument-fulfillment convention.
type ParamClass uint8

const (
	// ParamNormal takes one fully evaluated expression from the feed.
	ParamNormal ParamClass = iota

	// ParamOpLeft takes the previous step's output; this is how an infix
	// operator sees its left operand. On prefix entry it falls back to
	// normal consumption.
	ParamOpLeft

	// ParamLiteral takes the next term unevaluated, preserving its binding:
	// words arrive wrapped in a Bound carrying the callsite scope.
	ParamLiteral

	// ParamLiteralUnbound takes the next term unevaluated with no binding
	// attached.
	ParamLiteralUnbound

	// ParamSoft takes the next term unevaluated unless it is a group or
	// get-word, which are evaluated first.
	ParamSoft

	// ParamVariadic consumes nothing at fulfillment time; the callee
	// receives a Varargs handle and pulls terms itself.
	ParamVariadic
)

func (class ParamClass) String() string {
	switch class {
	case ParamNormal:
		return "normal"
	case ParamOpLeft:
		return "op-left"
	case ParamLiteral:
		return "literal"
	case ParamLiteralUnbound:
		return "literal-unbound"
	case ParamSoft:
		return "soft"
	case ParamVariadic:
		return "variadic"
	default:
		return fmt.Sprintf("class(%d)", uint8(class))
	}
}

// Param describes one declared parameter of an action.
type Param struct {
	Name  Word
	Class ParamClass

	// Types constrains accepted argument kinds; the zero TypeSet accepts
	// anything.
	Types TypeSet

	// Opt marks the parameter as optional: it may be absent or unset
	// without failing typecheck.
	Opt bool
}

// Dispatcher is the type-erased native implementation backing an action. Its
// return is mapped onto the bounce protocol verbatim.
type Dispatcher interface {
	Dispatch(ctx context.Context, call *Call) (Bounce, error)
}

// DispatcherFunc adapts a function into a Dispatcher.
type DispatcherFunc func(ctx context.Context, call *Call) (Bounce, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	return f(ctx, call)
}

// ThrowCatcher is a Dispatcher that may claim a throw passing through its
// call, converting it to an ordinary value. Only consulted when the action
// declares Catches.
type ThrowCatcher interface {
	CatchThrow(call *Call, thrown ThrownError) (Value, bool)
}

// FailureCatcher is a Dispatcher that may claim an abrupt failure passing
// through its call. Halts are never offered.
type FailureCatcher interface {
	CatchFailure(call *Call, cause error) (Value, bool)
}

// Action is a callable: declared parameters plus the Dispatcher that
// implements it. The struct doubles as the querier for introspection:
// parameter list, source text, and operator status are readable without
// knowing anything about the Dispatcher's internals.
type Action struct {
	Name       string
	Params     []Param
	Dispatcher Dispatcher

	// Operator marks the action as infix: it is invoked by lookahead and
	// its first parameter consumes the pending output to its left.
	Operator bool

	// Catches opts the Dispatcher into observing throws and failures
	// propagating through its call.
	Catches bool

	// Partial holds arguments pre-supplied by specialization, keyed by
	// parameter name; fulfillment copies them through without consuming
	// anything.
	Partial map[Word]Value

	// Source is the surface text the action was built from, if any.
	Source string
}

var _ Value = (*Action)(nil)

func (value *Action) Kind() Kind {
	return KindAction
}

func (value *Action) String() string {
	if value.Operator {
		return fmt.Sprintf("<operator: %s>", value.Name)
	}

	return fmt.Sprintf("<action: %s>", value.Name)
}

func (value *Action) Equal(other Value) bool {
	var o *Action
	return other.Decode(&o) == nil && value == o
}

func (value *Action) Decode(dest any) error {
	switch x := dest.(type) {
	case **Action:
		*x = value
		return nil
	case *Value:
		*x = value
		return nil
	default:
		return DecodeError{
			Source:      value,
			Destination: dest,
		}
	}
}

// ParamNamed returns the declaration position of the named parameter.
func (value *Action) ParamNamed(name Word) (int, bool) {
	for i, p := range value.Params {
		if p.Name == name {
			return i, true
		}
	}

	return 0, false
}
