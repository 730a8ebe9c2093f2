// Package requestthread serialises every game request of a session on one
// worker goroutine and provides the nested sequence brackets that group
// related requests under a single continuation decision.
package requestthread

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"loathing_assistant/internal/request"

	"go.uber.org/zap"
)

// Predefined errors returned by the thread.
var (
	// ErrUnbalancedSequence is returned by a close without a matching open.
	ErrUnbalancedSequence = errors.New("requestthread: close without open sequence")
	// ErrSequenceHalted is returned for requests made inside a sequence after
	// it entered the ERROR or ABORT state.
	ErrSequenceHalted = errors.New("requestthread: sequence halted")
	// ErrHandlerPanic wraps a panic recovered from a handler.
	ErrHandlerPanic = errors.New("requestthread: handler panicked")
	// ErrStopped is returned when the worker is not running.
	ErrStopped = errors.New("requestthread: not running")
)

type job struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// Thread runs the requests of one session.
type Thread struct {
	env  *request.Env
	jobs chan job

	mu           sync.Mutex
	depth        int
	inFlight     bool
	forcePending bool

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
	running   bool
}

// New creates a thread running handlers against env.
func New(env *request.Env) *Thread {
	return &Thread{
		env:  env,
		jobs: make(chan job),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Env returns the environment handlers run with.
func (t *Thread) Env() *request.Env {
	return t.env
}

// Start launches the worker. It stops when ctx is done or Stop is called.
func (t *Thread) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		t.mu.Lock()
		t.running = true
		t.mu.Unlock()
		go t.loop(ctx)
	})
}

// Stop ends the worker and waits for the request in flight to finish.
func (t *Thread) Stop() {
	t.stopOnce.Do(func() { close(t.quit) })

	t.mu.Lock()
	running := t.running
	t.mu.Unlock()
	if running {
		<-t.done
	}
}

func (t *Thread) loop(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.quit:
			return
		case j := <-t.jobs:
			j.result <- t.dispatch(j)
		}
	}
}

func (t *Thread) dispatch(j job) (err error) {
	t.mu.Lock()
	t.inFlight = true
	t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			t.env.Log.Error("handler panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}

		t.mu.Lock()
		t.inFlight = false
		if t.depth == 0 && t.forcePending {
			t.forcePending = false
			t.env.Display.ForceContinue()
		}
		t.mu.Unlock()
	}()

	return j.fn(j.ctx)
}

// Do runs fn on the worker and returns its error. Inside a halted sequence
// fn is skipped and ErrSequenceHalted returned. Do must not be called from
// the worker itself.
func (t *Thread) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return ErrStopped
	}
	if t.depth > 0 && t.env.Display.State().Halting() {
		t.mu.Unlock()
		return ErrSequenceHalted
	}
	t.mu.Unlock()

	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case t.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrStopped
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MakeRequest runs h through the request pipeline on the worker.
func (t *Thread) MakeRequest(ctx context.Context, h request.Handler) error {
	return t.Do(ctx, func(ctx context.Context) error {
		return request.Run(ctx, t.env, h)
	})
}

// OpenRequestSequence opens a sequence bracket. Brackets nest; display
// updates made inside the outermost bracket reach subscribers when it closes.
// Opening the outermost bracket clears an ERROR or ABORT left by an earlier
// sequence, so a halt only skips the rest of the sequence it happened in.
func (t *Thread) OpenRequestSequence() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depth++
	if t.depth > 1 {
		return
	}
	if t.env.Display.State().Halting() {
		t.forcePending = false
		t.env.Display.ForceContinue()
	}
	t.env.Display.Hold()
}

// CloseRequestSequence closes the innermost bracket.
func (t *Thread) CloseRequestSequence() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.depth == 0 {
		return ErrUnbalancedSequence
	}
	t.depth--
	if t.depth > 0 {
		return nil
	}

	t.env.Display.Release()
	if t.forcePending && !t.inFlight {
		t.forcePending = false
		t.env.Display.ForceContinue()
	}
	return nil
}

// SequenceDepth returns how many brackets are open.
func (t *Thread) SequenceDepth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.depth
}

// ForceContinue resets the continuation state to CONTINUE at the next
// sequence boundary: now when no sequence is open and nothing is in flight,
// otherwise when the outermost sequence closes.
func (t *Thread) ForceContinue() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.depth == 0 && !t.inFlight {
		t.env.Display.ForceContinue()
		return
	}
	t.forcePending = true
}

// Sequence runs fn inside one sequence bracket.
func (t *Thread) Sequence(fn func() error) error {
	t.OpenRequestSequence()
	err := fn()
	if cerr := t.CloseRequestSequence(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
