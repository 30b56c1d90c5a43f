package adapter

import (
	"time"

	health "github.com/graphmount/graphmount/internal/health"
)

const defaultHealthPath = "/healthz"

// Options configures one attachment of an adapter. Options are owned by the
// caller and copied at attach time; mutating them afterwards has no effect.
type Options struct {
	// Path is the mount point of the GraphQL endpoint. Empty selects the
	// adapter's default: "/" for the standalone listener, "/graphql" for
	// framework attachments. Callers swapping adapters must reconcile this
	// divergence explicitly.
	Path string

	// HealthPath is the mount point of the health endpoint (default /healthz).
	HealthPath string

	// CORS policy, applied before engine invocation. Nil disables CORS.
	CORS *CORSOptions

	// OnHealthCheck overrides the default always-healthy check.
	OnHealthCheck health.CheckFunc

	// DisableHealthCheck makes the health path answer 404 instead of a
	// healthy default.
	DisableHealthCheck bool

	// MaxBodyBytes limits the request body size. 0 means unlimited.
	MaxBodyBytes int64

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// Timeout sets a default timeout when the incoming request context has
	// none. 0 means no default timeout.
	Timeout time.Duration
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

type Option func(*Options)

func WithPath(path string) Option          { return func(o *Options) { o.Path = path } }
func WithHealthPath(path string) Option    { return func(o *Options) { o.HealthPath = path } }
func WithPretty() Option                   { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option      { return func(o *Options) { o.MaxBodyBytes = n } }
func WithTimeout(d time.Duration) Option   { return func(o *Options) { o.Timeout = d } }
func WithoutHealthCheck() Option           { return func(o *Options) { o.DisableHealthCheck = true } }
func WithHealthCheck(fn health.CheckFunc) Option {
	return func(o *Options) { o.OnHealthCheck = fn }
}
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS = &CORSOptions{AllowedOrigins: origins} }
}

// BuildOptions applies opts over defaults and returns a caller-independent
// copy.
func BuildOptions(opts ...Option) Options {
	o := Options{HealthPath: defaultHealthPath}
	for _, f := range opts {
		f(&o)
	}
	if o.CORS != nil {
		origins := append([]string(nil), o.CORS.AllowedOrigins...)
		o.CORS = &CORSOptions{AllowedOrigins: origins}
	}
	return o
}

// HealthResponder builds the responder this attachment should expose.
func (o Options) HealthResponder() *health.Responder {
	if o.DisableHealthCheck {
		return health.Disabled()
	}
	return health.NewResponder(o.OnHealthCheck)
}

// PathOrDefault resolves the mount path against the adapter's default.
func (o Options) PathOrDefault(def string) string {
	if o.Path != "" {
		return o.Path
	}
	return def
}
