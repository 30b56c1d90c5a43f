package events

import "time"

// LifecycleTransition is emitted on every lifecycle state change.
type LifecycleTransition struct {
	From string
	To   string
}

// AdapterAttached is emitted after an adapter is mounted.
type AdapterAttached struct {
	Adapter    string
	Path       string
	HealthPath string
}

// DrainStart is emitted when graceful shutdown begins.
type DrainStart struct {
	Hooks int
}

// DrainHookDone is emitted after each drain hook completes or fails.
type DrainHookDone struct {
	Name     string
	Err      error
	Duration time.Duration
}

// DrainFinish is emitted once all hooks have run and the controller stopped.
type DrainFinish struct {
	Err      error
	Duration time.Duration
}
