package loam_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/loam-lang/loam/pkg/loam"
	"github.com/vito/is"
)

func TestEvalLiterals(t *testing.T) {
	scope := loam.NewStandardScope()

	for _, test := range []struct {
		Source string
		Result loam.Value
	}{
		{"42", loam.Int(42)},
		{`"hi"`, loam.Text("hi")},
		{"true", loam.Bool(true)},
		{"~", loam.Unset{}},
		{"[1 2 3]", loam.NewBlock(loam.Int(1), loam.Int(2), loam.Int(3))},
		{"'foo", loam.Word("foo")},
	} {
		test := test
		t.Run(test.Source, func(t *testing.T) {
			is := is.New(t)
			is.True(mustEval(t, scope, test.Source).Equal(test.Result))
		})
	}
}

func TestEvalEmptyInput(t *testing.T) {
	is := is.New(t)

	res := mustEval(t, loam.NewStandardScope(), "")
	is.Equal(res, loam.Unset{})
}

func TestEvalSetWord(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	res := mustEval(t, scope, "x: 41 x + 1")
	is.Equal(res, loam.Int(42))

	val, found := scope.Get("x")
	is.True(found)
	is.Equal(val, loam.Int(41))
}

func TestEvalSetWordRebindsOuter(t *testing.T) {
	is := is.New(t)

	outer := loam.NewStandardScope()
	outer.Def("x", loam.Int(1))

	inner := loam.NewEmptyScope(outer)

	_, err := loam.EvalString(context.Background(), t.Name(), "x: 2", inner)
	is.NoErr(err)

	// assignment writes through to the binding's home scope
	val, found := outer.Get("x")
	is.True(found)
	is.Equal(val, loam.Int(2))
	is.Equal(len(inner.Bindings), 0)
}

func TestEvalSetWordAtEndOfInput(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	res := mustEval(t, scope, "x:")
	is.Equal(res, loam.Unset{})

	val, found := scope.Get("x")
	is.True(found)
	is.Equal(val, loam.Unset{})
}

func TestEvalGetWord(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	// fetching an action does not invoke it
	res := mustEval(t, scope, ":not")
	is.Equal(res.Kind(), loam.KindAction)
}

func TestEvalGroups(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	is.Equal(mustEval(t, scope, "2 * (3 + 4)"), loam.Int(14))
	is.Equal(mustEval(t, scope, "(1 2 3)"), loam.Int(3))
	is.Equal(mustEval(t, scope, "()"), loam.Unset{})
}

func TestEvalInfixSingleStep(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	// operators bind one step at a time, left to right; an operator's right
	// argument never extends past the next value
	is.Equal(mustEval(t, scope, "1 + 2 * 3"), loam.Int(9))
	is.Equal(mustEval(t, scope, "10 - 2 - 3"), loam.Int(5))
	is.Equal(mustEval(t, scope, "1 + 2 = 3"), loam.Bool(true))
}

func TestEvalInfixAfterCall(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	// lookahead continues after a prefix call's result
	is.Equal(mustEval(t, scope, "sum 1 2"), loam.Int(3))
	is.Equal(mustEval(t, scope, "(sum 1 2) * 2"), loam.Int(6))
}

func TestEvalUnboundWord(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()
	scope.Def("lengthy", loam.Int(1))

	_, err := eval(t, scope, "lengthz")
	is.True(err != nil)

	var unbound loam.UnboundError
	is.True(errors.As(err, &unbound))
	is.Equal(unbound.Word, loam.Word("lengthz"))

	// suggestions name nearby bindings
	is.True(strings.Contains(err.Error(), "lengthy"))
}

func TestEvalRefinementOutsideCall(t *testing.T) {
	is := is.New(t)

	_, err := eval(t, loam.NewStandardScope(), "/wat")
	is.True(err != nil)
}

func TestEvalMultipleExpressions(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()

	// the last expression's value wins
	is.Equal(mustEval(t, scope, "1 2 3"), loam.Int(3))
	is.Equal(mustEval(t, scope, "a: 1 b: 2 a + b"), loam.Int(3))
}
