package events

import "time"

// HTTPStart is emitted when a transport request reaches an adapter.
// Context carries the request context.
type HTTPStart struct {
	Adapter string
	Method  string
	Path    string
}

// HTTPFinish is emitted after the adapter finishes serving a request.
type HTTPFinish struct {
	Adapter  string
	Method   string
	Path     string
	Status   int
	Duration time.Duration
}
