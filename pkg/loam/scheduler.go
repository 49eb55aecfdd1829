package loam

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/loam-lang/loam/pkg/zapctx"
	"go.uber.org/zap"
)

// Pending is one queued evaluation: a block plus the scope to run it in.
// Each gets its own Machine, so a failing or suspended evaluation can never
// disturb the Level stack of another.
type Pending struct {
	Name  string
	Block Block
	Scope *Scope

	machine *Machine

	done   bool
	result Value
	err    error
}

// Done reports whether the evaluation reached a terminal result.
func (p *Pending) Done() bool {
	return p.done
}

// Result returns the terminal result. Meaningless before Done.
func (p *Pending) Result() (Value, error) {
	return p.result, p.err
}

// Halt cancels the evaluation; it unwinds with ErrHalted at its next turn
// or resume.
func (p *Pending) Halt() {
	p.machine.Halt()
}

type wake struct {
	susp   *Suspension
	val    Value
	reject error
}

// Scheduler queues not-yet-started evaluations and serializes resumption of
// suspended ones. Exactly one Level chain runs at a time; host goroutines
// hand outcomes over with Wake and the scheduler's own loop re-enters the
// trampoline.
//
// Queued evaluations start most-recently-queued first (LIFO). The policy is
// deliberate and stable; callers must not assume FIFO fairness.
type Scheduler struct {
	mu      sync.Mutex
	pending []*Pending

	runs map[*Machine]*Pending

	// suspended counts runs paused on an asynchronous native
	suspended int

	wakes chan wake
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		runs:  map[*Machine]*Pending{},
		wakes: make(chan wake, 64),
	}
}

// Queue adds an evaluation to be started by a later Tick or Drain.
func (sched *Scheduler) Queue(p *Pending) *Pending {
	p.machine = NewMachine()

	sched.mu.Lock()
	sched.pending = append(sched.pending, p)
	sched.runs[p.machine] = p
	sched.mu.Unlock()

	return p
}

// QueueBlock is shorthand for queueing a named block evaluation.
func (sched *Scheduler) QueueBlock(name string, block Block, scope *Scope) *Pending {
	return sched.Queue(&Pending{
		Name:  name,
		Block: block,
		Scope: scope,
	})
}

// Wake hands a suspension outcome to the scheduler. Safe to call from any
// goroutine; the outcome is applied by the scheduler's loop, keeping all
// trampoline turns on one thread.
func (sched *Scheduler) Wake(susp *Suspension, val Value, reject error) {
	sched.wakes <- wake{susp: susp, val: val, reject: reject}
}

// Tick starts the most recently queued evaluation and drives it to its
// first suspension or terminal result. Returns false if nothing was
// pending.
func (sched *Scheduler) Tick(ctx context.Context) bool {
	return sched.tick(ctx) != nil
}

func (sched *Scheduler) tick(ctx context.Context) *Pending {
	sched.mu.Lock()
	n := len(sched.pending)
	if n == 0 {
		sched.mu.Unlock()
		return nil
	}

	p := sched.pending[n-1]
	sched.pending = sched.pending[:n-1]
	sched.mu.Unlock()

	logger := zapctx.FromContext(ctx).With(zap.String("pending", p.Name))
	logger.Debug("starting")

	val, err := p.machine.RunBlock(ctx, p.Block, p.Scope)
	sched.settle(ctx, p, val, err)

	return p
}

func (sched *Scheduler) settle(ctx context.Context, p *Pending, val Value, err error) {
	if errors.Is(err, ErrSuspended) {
		sched.suspended++
		zapctx.FromContext(ctx).Debug("suspended", zap.String("pending", p.Name))
		return
	}

	p.done = true
	p.result = val
	p.err = err

	sched.mu.Lock()
	delete(sched.runs, p.machine)
	sched.mu.Unlock()

	zapctx.FromContext(ctx).Debug("finished",
		zap.String("pending", p.Name),
		zap.Bool("failed", err != nil))
}

func (sched *Scheduler) applyWake(ctx context.Context, w wake) {
	var val Value
	var err error
	if w.reject != nil {
		val, err = w.susp.Reject(ctx, w.reject)
	} else {
		val, err = w.susp.Resolve(ctx, w.val)
	}

	if errors.Is(err, ErrNotSuspended) {
		// a duplicate or stale wake; the suspension already settled and the
		// chain may have moved on, so there is nothing to account for
		zapctx.FromContext(ctx).Debug("ignoring stale wake")
		return
	}

	sched.mu.Lock()
	p := sched.runs[w.susp.m]
	sched.mu.Unlock()

	if p == nil {
		// the machine is not one of ours; nothing to record
		return
	}

	sched.suspended--
	sched.settle(ctx, p, val, err)
}

// Drain runs until every queued evaluation reaches a terminal result,
// waiting on asynchronous wakes in between. Per-run failures are aggregated
// and returned; they do not stop other runs.
func (sched *Scheduler) Drain(ctx context.Context) error {
	var merr *multierror.Error

	record := func(p *Pending) {
		if p == nil || !p.done || p.err == nil {
			return
		}

		merr = multierror.Append(merr, p.err)
	}

	for {
		// apply any outcomes that arrived while running
		for {
			select {
			case w := <-sched.wakes:
				p := sched.lookup(w.susp)
				sched.applyWake(ctx, w)
				record(p)
				continue
			default:
			}

			break
		}

		if p := sched.tick(ctx); p != nil {
			record(p)
			continue
		}

		if sched.suspended == 0 {
			break
		}

		select {
		case w := <-sched.wakes:
			p := sched.lookup(w.susp)
			sched.applyWake(ctx, w)
			record(p)

		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return merr.ErrorOrNil()
}

func (sched *Scheduler) lookup(susp *Suspension) *Pending {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return sched.runs[susp.m]
}

type schedulerKey struct{}

// WithScheduler attaches the scheduler to the context so suspending natives
// can find their way back to the host loop.
func WithScheduler(ctx context.Context, sched *Scheduler) context.Context {
	return context.WithValue(ctx, schedulerKey{}, sched)
}

func SchedulerFromContext(ctx context.Context) (*Scheduler, bool) {
	sched, ok := ctx.Value(schedulerKey{}).(*Scheduler)
	return sched, ok
}
