// Package chiadapter attaches the engine to a chi router.
package chiadapter

import (
	"context"

	"github.com/go-chi/chi/v5"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	engine "github.com/graphmount/graphmount/internal/engine"
)

// DefaultPath is the conventional mount point for framework attachments.
const DefaultPath = "/graphql"

// Adapter mounts the engine on a chi.Router.
type Adapter struct {
	*adapter.Core
	router chi.Router
}

func New(eng *engine.Engine, router chi.Router) *Adapter {
	return &Adapter{Core: adapter.NewCore("chi", eng), router: router}
}

// Attach registers the GraphQL and health routes on the host router.
func (a *Adapter) Attach(opts adapter.Options) error {
	a.Configure(opts)
	a.router.Handle(opts.PathOrDefault(DefaultPath), a.Handler())
	a.router.Method("GET", opts.HealthPath, opts.HealthResponder())
	return nil
}

// Drain is a no-op: the host application owns the listener.
func (a *Adapter) Drain(ctx context.Context) error { return nil }

var _ adapter.Adapter = (*Adapter)(nil)
