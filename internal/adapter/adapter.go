// Package adapter defines the contract between the execution engine and
// host HTTP frameworks, plus the transport-neutral request/response
// translation shared by every framework variant.
package adapter

import (
	"context"

	engine "github.com/graphmount/graphmount/internal/engine"
)

// Adapter mounts one engine onto one host framework. Implementations share
// the Core translation layer and differ only in how they hook into the
// host's routing and shutdown machinery.
//
// Adapters hold a non-owning reference to the engine; they never mutate its
// schema or resolvers. Attach is driven by the lifecycle controller, which
// enforces start-before-attach ordering.
type Adapter interface {
	// Name identifies the adapter variant in logs, metrics, and traces.
	Name() string

	// NormalizeRequest translates a transport request into engine requests.
	// A non-nil error means the body was unparseable; the engine must not
	// be invoked for such requests.
	NormalizeRequest(raw RawRequest) (single engine.Request, batch []engine.Request, err *engine.Error)

	// SerializeResponse renders an execution result into the transport
	// payload, mapping error kinds to an HTTP status.
	SerializeResponse(result *engine.Result) Response

	// Attach mounts the GraphQL endpoint and, unless disabled, the health
	// endpoint onto the host framework using the given options.
	Attach(opts Options) error

	// Drain gracefully stops this adapter's intake of new work and waits
	// for in-flight requests, bounded only by ctx.
	Drain(ctx context.Context) error
}
