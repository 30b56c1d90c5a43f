// Package muxadapter attaches the engine to a gorilla/mux router.
package muxadapter

import (
	"context"

	"github.com/gorilla/mux"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	engine "github.com/graphmount/graphmount/internal/engine"
)

// DefaultPath is the conventional mount point for framework attachments.
const DefaultPath = "/graphql"

// Adapter mounts the engine on a *mux.Router.
type Adapter struct {
	*adapter.Core
	router *mux.Router
}

func New(eng *engine.Engine, router *mux.Router) *Adapter {
	return &Adapter{Core: adapter.NewCore("mux", eng), router: router}
}

// Attach registers the GraphQL and health routes on the host router.
func (a *Adapter) Attach(opts adapter.Options) error {
	a.Configure(opts)
	a.router.Handle(opts.PathOrDefault(DefaultPath), a.Handler())
	a.router.Handle(opts.HealthPath, opts.HealthResponder()).Methods("GET")
	return nil
}

// Drain is a no-op: the host application owns the listener.
func (a *Adapter) Drain(ctx context.Context) error { return nil }

var _ adapter.Adapter = (*Adapter)(nil)
