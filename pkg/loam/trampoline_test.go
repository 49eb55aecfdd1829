package loam_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/loam-lang/loam/pkg/loam"
	"github.com/vito/is"
)

func TestMachineStackDiscipline(t *testing.T) {
	is := is.New(t)

	m := loam.NewMachine()
	scope := loam.NewStandardScope()

	var depths []int
	scope.Def("d", loam.Native("d", "x", func(ctx context.Context, call *loam.Call) (loam.Bounce, error) {
		depths = append(depths, call.Level().Machine().Depth())
		return call.Return(call.Arg(0))
	}))

	block, err := readAll(t, "d (d (d 1))")
	is.NoErr(err)

	res, err := m.RunBlock(context.Background(), block, scope)
	is.NoErr(err)
	is.Equal(res, loam.Int(1))

	// the stack returns to its pre-call depth
	is.Equal(m.Depth(), 0)

	// the innermost call dispatches first, at the greatest depth
	is.Equal(len(depths), 3)
	is.True(depths[0] > depths[1])
	is.True(depths[1] > depths[2])
}

func TestMachineHalt(t *testing.T) {
	is := is.New(t)

	m := loam.NewMachine()
	m.Halt()

	block, err := readAll(t, "1 + 1")
	is.NoErr(err)

	_, err = m.RunBlock(context.Background(), block, loam.NewStandardScope())
	is.True(errors.Is(err, loam.ErrHalted))
	is.Equal(m.Depth(), 0)
}

func TestHaltIsNeverCaught(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()
	scope.Def("stop", loam.Native("stop", "", func(ctx context.Context, call *loam.Call) (loam.Bounce, error) {
		call.Level().Machine().Halt()
		return call.Return(loam.Unset{})
	}))

	// neither catch nor try claims a halt
	_, err := eval(t, scope, "catch 'x [stop]")
	is.True(errors.Is(err, loam.ErrHalted))

	_, err = eval(t, scope, "try [stop]")
	is.True(errors.Is(err, loam.ErrHalted))
}

func TestMachineContextCancellation(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block, err := readAll(t, "1 + 1")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, loam.NewStandardScope())
	is.True(errors.Is(err, loam.ErrHalted))
}

func TestBareSuspendBounceFails(t *testing.T) {
	is := is.New(t)

	scope := loam.NewStandardScope()
	scope.Def("rogue", loam.Native("rogue", "", func(ctx context.Context, call *loam.Call) (loam.Bounce, error) {
		return loam.Suspend{}, nil
	}))

	block, err := readAll(t, "rogue")
	is.NoErr(err)

	// suspending without a handle would leave nothing able to resume, so it
	// unwinds with an error instead
	m := loam.NewMachine()
	_, err = m.RunBlock(context.Background(), block, scope)
	is.True(err != nil)
	is.True(!errors.Is(err, loam.ErrSuspended))
	is.True(strings.Contains(err.Error(), "suspension"))
	is.Equal(m.Depth(), 0)

	// the machine is still usable
	more, err := readAll(t, "1 + 1")
	is.NoErr(err)

	res, err := m.RunBlock(context.Background(), more, scope)
	is.NoErr(err)
	is.Equal(res, loam.Int(2))
}

// waitNative returns a suspending native and a pointer that receives its
// Suspension handle.
func waitNative() (*loam.Action, **loam.Suspension) {
	var susp *loam.Suspension

	act := loam.Native("wait", "", func(ctx context.Context, call *loam.Call) (loam.Bounce, error) {
		if v, ok := call.Resumption(); ok {
			return call.Return(v)
		}

		s, bounce := call.Suspend()
		susp = s
		return bounce, nil
	})

	return act, &susp
}

func TestSuspendResumeTransparency(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	block, err := readAll(t, "wait + 32")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, scope)
	is.True(errors.Is(err, loam.ErrSuspended))
	is.True(*susp != nil)

	res, err := (*susp).Resolve(ctx, loam.Int(10))
	is.NoErr(err)
	is.Equal(res, loam.Int(42))
	is.Equal(m.Depth(), 0)

	// the same program with a synchronous native agrees
	syncScope := loam.NewStandardScope()
	syncScope.Def("wait", loam.Native("wait", "", func() loam.Value {
		return loam.Int(10)
	}))
	is.Equal(mustEval(t, syncScope, "wait + 32"), loam.Int(42))
}

func TestSuspensionSettlesOnce(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	block, err := readAll(t, "wait")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, scope)
	is.True(errors.Is(err, loam.ErrSuspended))

	_, err = (*susp).Resolve(ctx, loam.Int(1))
	is.NoErr(err)

	_, err = (*susp).Resolve(ctx, loam.Int(2))
	is.True(errors.Is(err, loam.ErrNotSuspended))

	_, err = (*susp).Reject(ctx, fmt.Errorf("late"))
	is.True(errors.Is(err, loam.ErrNotSuspended))
}

func TestSuspensionReject(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	// the rejection surfaces at the suspending native, so try claims it
	block, err := readAll(t, "try [wait]")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, scope)
	is.True(errors.Is(err, loam.ErrSuspended))

	res, err := (*susp).Reject(ctx, fmt.Errorf("boom"))
	is.NoErr(err)
	is.Equal(res.Kind(), loam.KindFailure)
}

func TestRejectWithHaltHaltsMachine(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	// a halt is explicit, and no catch can claim it
	block, err := readAll(t, "catch 'x [try [wait]]")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, scope)
	is.True(errors.Is(err, loam.ErrSuspended))

	_, err = (*susp).Reject(ctx, loam.ErrHalted)
	is.True(errors.Is(err, loam.ErrHalted))
	is.True(m.Halted())
	is.Equal(m.Depth(), 0)
}

func TestRunWhileSuspendedFails(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	block, err := readAll(t, "wait")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, scope)
	is.True(errors.Is(err, loam.ErrSuspended))

	// the machine refuses new work while a chain is paused
	more, err := readAll(t, "1 + 1")
	is.NoErr(err)

	_, err = m.RunBlock(ctx, more, scope)
	is.True(err != nil)

	res, err := (*susp).Resolve(ctx, loam.Int(9))
	is.NoErr(err)
	is.Equal(res, loam.Int(9))
}

func TestFeedMonotonicAcrossSuspension(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	// terms before the suspension are never re-delivered after resume
	var seen []loam.Value
	scope.Def("note", loam.Native("note", "v", func(v loam.Value) loam.Value {
		seen = append(seen, v)
		return v
	}))

	block, err := readAll(t, "note 1 wait note 2")
	is.NoErr(err)

	m := loam.NewMachine()
	_, err = m.RunBlock(ctx, block, scope)
	is.True(errors.Is(err, loam.ErrSuspended))
	is.Equal(len(seen), 1)

	res, err := (*susp).Resolve(ctx, loam.Unset{})
	is.NoErr(err)
	is.Equal(res, loam.Int(2))

	is.Equal(len(seen), 2)
	is.Equal(seen[0], loam.Int(1))
	is.Equal(seen[1], loam.Int(2))
}
