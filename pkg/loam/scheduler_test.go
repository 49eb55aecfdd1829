package loam_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/loam-lang/loam/pkg/loam"
	"github.com/vito/is"
)

func TestSchedulerSleepResume(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx := loam.WithScheduler(context.Background(), sched)

	scope := loam.NewStandardScope()

	block, err := readAll(t, "x: 1 sleep 10 x + 1")
	is.NoErr(err)

	p := sched.QueueBlock("sleeper", block, scope)

	// the first tick runs up to the suspension
	is.True(sched.Tick(ctx))
	is.True(!p.Done())

	fakeClock.Advance(10 * time.Millisecond)

	is.NoErr(sched.Drain(ctx))
	is.True(p.Done())

	res, err := p.Result()
	is.NoErr(err)
	is.Equal(res, loam.Int(2))
}

func TestSchedulerSleepWithoutScheduler(t *testing.T) {
	is := is.New(t)

	// sleep needs a host loop to hand its wake to
	_, err := eval(t, loam.NewStandardScope(), "sleep 1")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "scheduler"))
}

func TestSchedulerStartsNewestFirst(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx := loam.WithScheduler(context.Background(), sched)

	var order []loam.Int
	scope := loam.NewStandardScope()
	scope.Def("record", loam.Native("record", "n:int", func(n loam.Int) loam.Int {
		order = append(order, n)
		return n
	}))

	for _, src := range []string{"record 1", "record 2", "record 3"} {
		block, err := readAll(t, src)
		is.NoErr(err)
		sched.QueueBlock(src, block, scope)
	}

	is.NoErr(sched.Drain(ctx))
	is.Equal(order, []loam.Int{3, 2, 1})
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx := loam.WithScheduler(context.Background(), sched)

	scope := loam.NewStandardScope()

	good, err := readAll(t, "1 + 1")
	is.NoErr(err)

	bad, err := readAll(t, "1 / 0")
	is.NoErr(err)

	pGood := sched.QueueBlock("good", good, scope)
	pBad := sched.QueueBlock("bad", bad, scope)

	// the failing run is reported without stopping the other
	err = sched.Drain(ctx)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "division by zero"))

	is.True(pGood.Done())
	res, err := pGood.Result()
	is.NoErr(err)
	is.Equal(res, loam.Int(2))

	is.True(pBad.Done())
	_, err = pBad.Result()
	is.True(err != nil)
}

func TestSchedulerHaltDistinctFromFailure(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx := loam.WithScheduler(context.Background(), sched)

	scope := loam.NewStandardScope()

	block, err := readAll(t, "try [catch 'x [sleep 10]]")
	is.NoErr(err)

	p := sched.QueueBlock("halted", block, scope)

	is.True(sched.Tick(ctx))
	is.True(!p.Done())

	p.Halt()
	fakeClock.Advance(10 * time.Millisecond)

	err = sched.Drain(ctx)
	is.True(errors.Is(err, loam.ErrHalted))

	// neither try nor catch converted the halt into a value
	is.True(p.Done())
	_, err = p.Result()
	is.True(errors.Is(err, loam.ErrHalted))
}

func TestSchedulerIgnoresDuplicateWake(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx, cancel := context.WithTimeout(loam.WithScheduler(context.Background(), sched), time.Second)
	defer cancel()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	block, err := readAll(t, "wait + 1")
	is.NoErr(err)

	p := sched.QueueBlock("waiter", block, scope)

	is.True(sched.Tick(ctx))
	is.True(!p.Done())

	// only the first wake settles the suspension; the duplicate is stale
	sched.Wake(*susp, loam.Int(41), nil)
	sched.Wake(*susp, loam.Int(99), nil)

	is.NoErr(sched.Drain(ctx))

	res, err := p.Result()
	is.NoErr(err)
	is.Equal(res, loam.Int(42))
}

func TestSchedulerStaleWakeLeavesLiveSuspension(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx, cancel := context.WithTimeout(loam.WithScheduler(context.Background(), sched), time.Second)
	defer cancel()

	wait, susp := waitNative()

	scope := loam.NewStandardScope()
	scope.Def("wait", wait)

	block, err := readAll(t, "wait + wait")
	is.NoErr(err)

	p := sched.QueueBlock("waiter", block, scope)

	is.True(sched.Tick(ctx))

	// resume directly; the chain advances to its second suspension
	first := *susp
	_, err = first.Resolve(ctx, loam.Int(1))
	is.True(errors.Is(err, loam.ErrSuspended))

	second := *susp
	is.True(second != first)

	// a stale wake for the settled first suspension must not settle the
	// chain still paused at the second
	sched.Wake(first, loam.Int(99), nil)
	sched.Wake(second, loam.Int(2), nil)

	is.NoErr(sched.Drain(ctx))

	is.True(p.Done())
	res, err := p.Result()
	is.NoErr(err)
	is.Equal(res, loam.Int(3))
}

func TestSchedulerInterleavedRuns(t *testing.T) {
	is := is.New(t)

	sched := loam.NewScheduler()
	ctx := loam.WithScheduler(context.Background(), sched)

	scope := loam.NewStandardScope()

	slow, err := readAll(t, "sleep 20 10")
	is.NoErr(err)

	fast, err := readAll(t, "sleep 5 20")
	is.NoErr(err)

	pSlow := sched.QueueBlock("slow", slow, scope)
	pFast := sched.QueueBlock("fast", fast, scope)

	// both suspend; each resumes when its own timer fires
	is.True(sched.Tick(ctx))
	is.True(sched.Tick(ctx))
	is.True(!sched.Tick(ctx))

	fakeClock.Advance(30 * time.Millisecond)

	is.NoErr(sched.Drain(ctx))

	res, err := pSlow.Result()
	is.NoErr(err)
	is.Equal(res, loam.Int(10))

	res, err = pFast.Result()
	is.NoErr(err)
	is.Equal(res, loam.Int(20))
}
