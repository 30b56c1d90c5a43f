// Package ginadapter attaches the engine to a gin router. The host
// application owns the listener and gin's concurrency model; draining the
// attachment is therefore a no-op.
package ginadapter

import (
	"context"

	"github.com/gin-gonic/gin"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	engine "github.com/graphmount/graphmount/internal/engine"
)

// DefaultPath is the conventional mount point for framework attachments.
const DefaultPath = "/graphql"

// Adapter mounts the engine on a *gin.Engine.
type Adapter struct {
	*adapter.Core
	router *gin.Engine
}

func New(eng *engine.Engine, router *gin.Engine) *Adapter {
	return &Adapter{Core: adapter.NewCore("gin", eng), router: router}
}

// Attach registers the GraphQL and health routes on the host router.
func (a *Adapter) Attach(opts adapter.Options) error {
	a.Configure(opts)
	a.router.Any(opts.PathOrDefault(DefaultPath), gin.WrapH(a.Handler()))
	a.router.GET(opts.HealthPath, gin.WrapH(opts.HealthResponder()))
	return nil
}

// Drain is a no-op: the host application owns the listener.
func (a *Adapter) Drain(ctx context.Context) error { return nil }

var _ adapter.Adapter = (*Adapter)(nil)
