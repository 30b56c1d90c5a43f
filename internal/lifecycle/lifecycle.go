// Package lifecycle enforces the start-then-attach ordering of the server
// kit and coordinates graceful shutdown across attached adapters.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
)

// State is a lifecycle phase of the controller.
type State string

const (
	StateCreated  State = "created"
	StateStarted  State = "started"
	StateAttached State = "attached"
	StateDraining State = "draining"
	StateStopped  State = "stopped"
)

// Ordering violations. Compare with errors.Is.
var (
	ErrAlreadyStarted = errors.New("already started")
	ErrNotStarted     = errors.New("not started")
	ErrStopped        = errors.New("already draining or stopped")
)

// Error is a lifecycle ordering violation. It is returned synchronously and
// is fatal to the caller: startup must be aborted, not retried.
type Error struct {
	Op    string
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("lifecycle: %s in state %q: %v", e.Op, e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DrainHook releases one resource during graceful shutdown. Hooks run in
// registration order; a failing hook does not stop the ones after it.
type DrainHook func(ctx context.Context) error

type namedHook struct {
	name string
	hook DrainHook
}

// Controller is the lifecycle state machine. Start must complete before any
// Attach; violating the ordering fails fast instead of queuing.
type Controller struct {
	mu    sync.Mutex
	state State
	hooks []namedHook
}

// New creates a Controller in the Created state.
func New() *Controller {
	return &Controller{state: StateCreated}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start transitions Created to Started. A second call fails with
// ErrAlreadyStarted.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCreated {
		return &Error{Op: "start", State: c.state, Err: ErrAlreadyStarted}
	}
	c.transition(StateStarted)
	return nil
}

// Attach mounts a on its host framework with the given options and registers
// its drain hook. It fails with ErrNotStarted when called before Start.
// Multiple adapters may be attached; the controller stays in Attached.
func (c *Controller) Attach(a adapter.Adapter, opts ...adapter.Option) error {
	c.mu.Lock()
	switch c.state {
	case StateStarted, StateAttached:
	case StateCreated:
		c.mu.Unlock()
		return &Error{Op: "attach", State: StateCreated, Err: ErrNotStarted}
	default:
		state := c.state
		c.mu.Unlock()
		return &Error{Op: "attach", State: state, Err: ErrStopped}
	}
	c.mu.Unlock()

	o := adapter.BuildOptions(opts...)
	if err := a.Attach(o); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == StateStarted {
		c.transition(StateAttached)
	}
	c.hooks = append(c.hooks, namedHook{name: a.Name(), hook: a.Drain})
	c.mu.Unlock()

	eventbus.Publish(context.Background(), events.AdapterAttached{
		Adapter:    a.Name(),
		Path:       o.Path,
		HealthPath: o.HealthPath,
	})
	return nil
}

// OnDrain registers an additional drain hook, run after the hooks of
// adapters attached so far.
func (c *Controller) OnDrain(name string, hook DrainHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, namedHook{name: name, hook: hook})
}

// Drain transitions to Draining, runs every registered hook exactly once in
// registration order, and reports Stopped only after all hooks completed.
// Hook failures are collected, not short-circuited. There is no built-in
// timeout; bound the wait through ctx.
func (c *Controller) Drain(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateStarted, StateAttached:
	default:
		state := c.state
		c.mu.Unlock()
		if state == StateCreated {
			return &Error{Op: "drain", State: state, Err: ErrNotStarted}
		}
		return &Error{Op: "drain", State: state, Err: ErrStopped}
	}
	c.transition(StateDraining)
	hooks := append([]namedHook(nil), c.hooks...)
	c.mu.Unlock()

	start := time.Now()
	eventbus.Publish(ctx, events.DrainStart{Hooks: len(hooks)})

	var errs []error
	for _, h := range hooks {
		hookStart := time.Now()
		err := h.hook(ctx)
		eventbus.Publish(ctx, events.DrainHookDone{Name: h.name, Err: err, Duration: time.Since(hookStart)})
		if err != nil {
			errs = append(errs, fmt.Errorf("drain %s: %w", h.name, err))
		}
	}

	c.mu.Lock()
	c.transition(StateStopped)
	c.mu.Unlock()

	err := errors.Join(errs...)
	eventbus.Publish(ctx, events.DrainFinish{Err: err, Duration: time.Since(start)})
	return err
}

// transition must be called with the mutex held.
func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	eventbus.Publish(context.Background(), events.LifecycleTransition{From: string(from), To: string(to)})
}
