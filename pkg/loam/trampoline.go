package loam

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/loam-lang/loam/pkg/zapctx"
	"go.uber.org/zap"
)

// Machine drives one evaluation: it exclusively owns the Level stack, runs
// the Level on top one step at a time, and interprets the resulting Bounce.
// A Machine is single-threaded; concurrency exists only as multiple
// independently suspended Machines queued on a Scheduler.
type Machine struct {
	top   *Level
	depth int

	runBase int
	running bool

	halted atomic.Bool

	// suspensions holds every Level chain paused across an async boundary,
	// keeping it reachable until the host resumes it.
	suspensions map[*Level]*Suspension
}

func NewMachine() *Machine {
	return &Machine{
		suspensions: map[*Level]*Suspension{},
	}
}

// Depth returns the current Level stack depth.
func (m *Machine) Depth() int {
	return m.depth
}

// Halt requests cancellation. It is safe to call from any goroutine; the
// machine notices before its next turn and unwinds with ErrHalted.
func (m *Machine) Halt() {
	m.halted.Store(true)
}

func (m *Machine) Halted() bool {
	return m.halted.Load()
}

func (m *Machine) push(lvl *Level) {
	lvl.prior = m.top
	lvl.machine = m
	m.top = lvl
	m.depth++
}

func (m *Machine) pop() *Level {
	lvl := m.top
	m.top = lvl.prior
	lvl.prior = nil
	m.depth--
	return lvl
}

// RunFeed evaluates every expression in the feed and returns the last
// result, or ErrSuspended if a native suspended the chain.
func (m *Machine) RunFeed(ctx context.Context, feed *Feed, scope *Scope) (Value, error) {
	lvl := NewLevel(newStepper(stepAll), NewSlot(), feed, scope)
	return m.Run(ctx, lvl)
}

// RunBlock evaluates the contents of a block in the given scope.
func (m *Machine) RunBlock(ctx context.Context, block Block, scope *Scope) (Value, error) {
	return m.RunFeed(ctx, FeedOf(block...), scope)
}

// Run pushes the Level and drives the stack until it returns to its
// pre-call depth or suspends.
func (m *Machine) Run(ctx context.Context, lvl *Level) (Value, error) {
	if m.running {
		return nil, fmt.Errorf("machine is already running")
	}

	if len(m.suspensions) > 0 {
		return nil, fmt.Errorf("machine has a suspended chain: %w", ErrSuspended)
	}

	m.running = true
	m.runBase = m.depth
	m.push(lvl)

	return m.loop(ctx)
}

func (m *Machine) loop(ctx context.Context) (Value, error) {
	for {
		lvl := m.top

		if !lvl.flags.Has(FlagUninterruptible) {
			if ctx.Err() != nil {
				m.halted.Store(true)
			}

			if m.halted.Load() {
				m.unwindAll()
				m.running = false
				return nil, ErrHalted
			}
		}

		bounce, err := lvl.exec.Step(ctx, lvl)
		if err != nil {
			if m.unwind(ctx, err) {
				continue
			}

			m.running = false
			return nil, err
		}

		switch b := bounce.(type) {
		case Finished:
			fin := m.pop()
			if m.depth == m.runBase {
				m.running = false
				return fin.out.Or(Unset{}), nil
			}

		case Continuation:
			m.push(b.Child)

		case Delegation:
			m.pop()
			m.push(b.Child)

		case Suspend:
			// only (*Call).Suspend registers a handle; a bare Suspend bounce
			// would wedge the machine with nothing to resume it
			if _, ok := m.suspensions[lvl]; !ok {
				m.unwindAll()
				m.running = false
				return nil, fmt.Errorf("suspend from %T without a suspension handle", lvl.exec)
			}

			zapctx.FromContext(ctx).Debug("suspending", zap.Int("depth", m.depth))
			return nil, ErrSuspended

		case Redo:
			r, ok := lvl.exec.(redoer)
			if !ok {
				m.unwindAll()
				m.running = false
				return nil, fmt.Errorf("redo bounce from non-action executor %T", lvl.exec)
			}

			r.Redo(b.Checked)

		case Downshifted:
			d, ok := lvl.exec.(downshifter)
			if !ok {
				m.unwindAll()
				m.running = false
				return nil, fmt.Errorf("downshift bounce from non-action executor %T", lvl.exec)
			}

			d.Downshifted()

		default:
			m.unwindAll()
			m.running = false
			return nil, fmt.Errorf("unknown bounce %T", bounce)
		}
	}
}

// unwind pops Levels until one claims the propagating signal, running each
// popped Level's cleanup. Halts are never claimed. Returns whether the
// signal was caught.
func (m *Machine) unwind(ctx context.Context, cause error) bool {
	for m.depth > m.runBase {
		lvl := m.top

		if !errors.Is(cause, ErrHalted) {
			if c, ok := lvl.exec.(catcher); ok && c.Catch(ctx, lvl, cause) {
				return true
			}
		}

		m.pop()
		lvl.exec.Cleanup(lvl)
	}

	return false
}

func (m *Machine) unwindAll() {
	for m.depth > m.runBase {
		lvl := m.pop()
		lvl.exec.Cleanup(lvl)
	}
}

// Suspension is the stable handle identifying one suspended Level. The host
// side of an asynchronous native holds it and must settle it exactly once.
type Suspension struct {
	m    *Machine
	lvl  *Level
	call *Call
	done bool
}

func (m *Machine) suspend(call *Call) *Suspension {
	s := &Suspension{
		m:    m,
		lvl:  call.lvl,
		call: call,
	}

	call.lvl.suspended = true
	m.suspensions[call.lvl] = s

	return s
}

// Resolve delivers a success value to the suspended Level and drives the
// machine to its next suspension or terminal result. The value surfaces from
// the suspending native exactly as if it had been returned synchronously.
func (s *Suspension) Resolve(ctx context.Context, val Value) (Value, error) {
	return s.settle(ctx, val, nil)
}

// Reject delivers a failure to the suspended Level; it surfaces there as if
// the native had failed synchronously. Rejecting with ErrHalted explicitly
// halts the machine; a halt is never inferred from any other outcome.
func (s *Suspension) Reject(ctx context.Context, cause error) (Value, error) {
	if errors.Is(cause, ErrHalted) {
		s.m.Halt()
	}

	return s.settle(ctx, nil, cause)
}

func (s *Suspension) settle(ctx context.Context, val Value, cause error) (Value, error) {
	if s.done || !s.lvl.suspended || s.m.suspensions[s.lvl] != s {
		return nil, ErrNotSuspended
	}

	s.done = true
	s.lvl.suspended = false
	delete(s.m.suspensions, s.lvl)

	s.call.resumed = true
	s.call.resumeVal = val
	s.call.resumeErr = cause

	zapctx.FromContext(ctx).Debug("resuming", zap.Int("depth", s.m.depth), zap.Bool("rejected", cause != nil))

	return s.m.loop(ctx)
}
