// Package httpadapter is the batteries-included standalone variant: it owns
// a net/http listener and serves GraphQL without any host framework.
package httpadapter

import (
	"context"
	"net"
	"net/http"
	"sync"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	engine "github.com/graphmount/graphmount/internal/engine"
)

// DefaultPath is the standalone mount point. Framework attachments default
// to /graphql instead; callers swapping adapters must reconcile this.
const DefaultPath = "/"

// Adapter serves the engine on its own HTTP listener.
type Adapter struct {
	*adapter.Core

	addr string

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// New creates a standalone adapter that will listen on addr when attached.
func New(eng *engine.Engine, addr string) *Adapter {
	return &Adapter{Core: adapter.NewCore("http", eng), addr: addr}
}

// Attach mounts the GraphQL and health endpoints, binds the listener, and
// begins serving. The listener is bound synchronously so address errors
// surface from Attach rather than from a background goroutine.
func (a *Adapter) Attach(opts adapter.Options) error {
	a.Configure(opts)

	mux := http.NewServeMux()
	mux.Handle(opts.PathOrDefault(DefaultPath), a.Handler())
	mux.Handle(opts.HealthPath, opts.HealthResponder())

	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.ln = ln
	a.srv = &http.Server{Handler: mux}
	srv := a.srv
	a.mu.Unlock()

	go func() { _ = srv.Serve(ln) }()
	return nil
}

// Addr returns the bound listen address, useful when attaching on ":0".
func (a *Adapter) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln == nil {
		return a.addr
	}
	return a.ln.Addr().String()
}

// Drain stops accepting connections and waits for in-flight requests,
// bounded by ctx.
func (a *Adapter) Drain(ctx context.Context) error {
	a.mu.Lock()
	srv := a.srv
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

var _ adapter.Adapter = (*Adapter)(nil)
